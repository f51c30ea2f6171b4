package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stats struct {
	TotalItems int64 `json:"total_items"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		SetClient(nil)
		mr.Close()
	})
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *stats) func() error {
		return func() error {
			calls++
			dest.TotalItems = 7
			return nil
		}
	}

	var first stats
	require.NoError(t, Aside(ctx, "stats", UserStatsKey(1), &first, UserStatsTTL, fetch(&first)))
	assert.Equal(t, int64(7), first.TotalItems)
	assert.True(t, mr.Exists(UserStatsKey(1)))

	var second stats
	require.NoError(t, Aside(ctx, "stats", UserStatsKey(1), &second, UserStatsTTL, fetch(&second)))
	assert.Equal(t, int64(7), second.TotalItems)
	assert.Equal(t, 1, calls)

	mr.FastForward(UserStatsTTL + time.Second)
	var third stats
	require.NoError(t, Aside(ctx, "stats", UserStatsKey(1), &third, UserStatsTTL, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := withMiniredis(t)
	boom := errors.New("db down")

	var dest stats
	err := Aside(context.Background(), "stats", UserStatsKey(2), &dest, UserStatsTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(UserStatsKey(2)))
}

func TestAside_NoClientAlwaysFetches(t *testing.T) {
	SetClient(nil)
	calls := 0
	var dest stats
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), "stats", UserStatsKey(3), &dest, UserStatsTTL, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
}

func TestAside_CorruptEntryFallsThrough(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set(CategoriesKey, "{not json"))

	var dest []string
	err := Aside(context.Background(), "categories", CategoriesKey, &dest, CategoriesTTL, func() error {
		dest = []string{"Tops"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tops"}, dest)
}

func TestInvalidateUserStats(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set(UserStatsKey(9), `{"total_items":1}`))
	InvalidateUserStats(context.Background(), 9)
	assert.False(t, mr.Exists(UserStatsKey(9)))
}
