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

func newOutfit(userID uint, name string, occasion models.Occasion, ids ...uint) *models.Outfit {
	return &models.Outfit{UserID: userID, Name: name, Occasion: occasion, ItemIDs: ids}
}

func TestOutfitRepository_CreateBatchIsAtomic(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db)
	repo := NewOutfitRepository(db)
	ctx := context.Background()

	existing := newOutfit(user.ID, "Existing", models.OccasionWork, 1)
	require.NoError(t, repo.Create(ctx, existing))

	first := newOutfit(user.ID, "First", models.OccasionWork, 1, 2)
	clash := newOutfit(user.ID, "Clash", models.OccasionWork, 3)
	clash.ID = existing.ID

	err := repo.CreateBatch(ctx, []*models.Outfit{first, clash})
	require.Error(t, err)
	assert.Zero(t, first.ID)

	all, err := repo.List(ctx, user.ID, models.OutfitFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	a := newOutfit(user.ID, "A", models.OccasionCasual, 1)
	a.AIGenerated = true
	a.SetSuggestion(models.AISuggestion{StyleDescription: "relaxed", Reasoning: "light layers"})
	b := newOutfit(user.ID, "B", models.OccasionCasual, 2)
	b.AIGenerated = true
	require.NoError(t, repo.CreateBatch(ctx, []*models.Outfit{a, b}))
	assert.NotZero(t, a.ID)
	assert.NotZero(t, b.ID)

	got, err := repo.GetByID(ctx, user.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AISuggestionData)
	assert.Equal(t, "relaxed", got.AISuggestionData.Data().StyleDescription)
	assert.Equal(t, []uint{1}, []uint(got.ItemIDs))
}

func TestOutfitRepository_ListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)
	repo := NewOutfitRepository(db)
	ctx := context.Background()

	manual := newOutfit(user.ID, "Manual", models.OccasionWork, 1)
	manual.WeatherCondition = models.WeatherRainy
	require.NoError(t, repo.Create(ctx, manual))
	ai := newOutfit(user.ID, "AI", models.OccasionParty, 2)
	ai.AIGenerated = true
	require.NoError(t, repo.Create(ctx, ai))
	require.NoError(t, repo.Create(ctx, newOutfit(other.ID, "Other", models.OccasionWork, 3)))

	yes := true
	no := false

	list := func(f models.OutfitFilter) []string {
		outfits, err := repo.List(ctx, user.ID, f)
		require.NoError(t, err)
		names := make([]string, 0, len(outfits))
		for _, o := range outfits {
			names = append(names, o.Name)
		}
		return names
	}

	assert.Equal(t, []string{"AI", "Manual"}, list(models.OutfitFilter{}))
	assert.Equal(t, []string{"Manual"}, list(models.OutfitFilter{Occasion: models.OccasionWork}))
	assert.Equal(t, []string{"Manual"}, list(models.OutfitFilter{WeatherCondition: models.WeatherRainy}))
	assert.Equal(t, []string{"AI"}, list(models.OutfitFilter{AIGenerated: &yes}))
	assert.Equal(t, []string{"Manual"}, list(models.OutfitFilter{AIGenerated: &no}))
}

func TestOutfitRepository_DeleteDetachesCalendar(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db)
	repo := NewOutfitRepository(db)
	calendar := NewCalendarRepository(db)
	ctx := context.Background()

	outfit := newOutfit(user.ID, "Date night", models.OccasionDate, 1)
	require.NoError(t, repo.Create(ctx, outfit))

	entry := &models.OutfitCalendarEntry{UserID: user.ID, OutfitID: &outfit.ID, Date: time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, calendar.Create(ctx, entry))

	require.NoError(t, repo.Delete(ctx, user.ID, outfit.ID))

	got, err := calendar.GetByID(ctx, user.ID, entry.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OutfitID)
	assert.Nil(t, got.Outfit)

	err = repo.Delete(ctx, user.ID, outfit.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestOutfitRepository_UpdateAndWear(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db)
	repo := NewOutfitRepository(db)
	ctx := context.Background()

	outfit := newOutfit(user.ID, "Office", models.OccasionWork, 1, 2)
	outfit.AIGenerated = true
	require.NoError(t, repo.Create(ctx, outfit))

	outfit.Name = "Office Monday"
	outfit.Rating = 5
	outfit.AIGenerated = false
	require.NoError(t, repo.Update(ctx, outfit))

	worn, err := repo.MarkWorn(ctx, user.ID, outfit.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, "Office Monday", worn.Name)
	assert.Equal(t, 5, worn.Rating)
	assert.True(t, worn.AIGenerated, "origin flag is immutable")
	assert.Equal(t, 1, worn.TimesWorn)
	assert.NotNil(t, worn.LastWorn)
}
