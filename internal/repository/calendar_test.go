package repository

import (
	"context"
	"testing"
	"time"

	"drobeo/internal/models"
	"drobeo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(day int) time.Time {
	return time.Date(2024, time.December, day, 0, 0, 0, 0, time.UTC)
}

func TestCalendarRepository_Range(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)
	repo := NewCalendarRepository(db)
	ctx := context.Background()

	// Inserted out of order; one day has two entries.
	for _, day := range []int{19, 15, 17, 15} {
		require.NoError(t, repo.Create(ctx, &models.OutfitCalendarEntry{UserID: user.ID, Date: dec(day), Notes: "plan"}))
	}
	require.NoError(t, repo.Create(ctx, &models.OutfitCalendarEntry{UserID: user.ID, Date: dec(14)}))
	require.NoError(t, repo.Create(ctx, &models.OutfitCalendarEntry{UserID: other.ID, Date: dec(16)}))

	entries, err := repo.Range(ctx, user.ID, dec(15), dec(19))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	var days []int
	for _, e := range entries {
		assert.Equal(t, user.ID, e.UserID)
		days = append(days, e.Date.Day())
	}
	assert.Equal(t, []int{15, 15, 17, 19}, days)
	assert.Less(t, entries[0].ID, entries[1].ID)

	empty, err := repo.Range(ctx, user.ID, dec(20), dec(25))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCalendarRepository_StoresCalendarDay(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db)
	repo := NewCalendarRepository(db)
	ctx := context.Background()

	entry := &models.OutfitCalendarEntry{UserID: user.ID, Date: time.Date(2024, 12, 18, 21, 30, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(ctx, entry))

	entries, err := repo.Range(ctx, user.ID, dec(18), dec(18))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].Date.Hour())
}

func TestCalendarRepository_UpdateDelete(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db)
	intruder := testutil.CreateUser(t, db)
	repo := NewCalendarRepository(db)
	ctx := context.Background()

	entry := &models.OutfitCalendarEntry{UserID: user.ID, Date: dec(1), Occasion: models.OccasionWork}
	require.NoError(t, repo.Create(ctx, entry))

	entry.Notes = "bring umbrella"
	entry.WeatherCondition = models.WeatherRainy
	require.NoError(t, repo.Update(ctx, entry))

	got, err := repo.GetByID(ctx, user.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "bring umbrella", got.Notes)

	err = repo.Delete(ctx, intruder.ID, entry.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	require.NoError(t, repo.Delete(ctx, user.ID, entry.ID))
}
