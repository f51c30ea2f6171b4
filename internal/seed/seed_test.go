package seed

import (
	"testing"

	"drobeo/internal/models"
	"drobeo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInCategories(t *testing.T) {
	t.Parallel()
	cats, err := BuiltInCategories()
	require.NoError(t, err)

	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Icon, c.Name)
		assert.Regexp(t, `^#[0-9a-f]{6}$`, c.Color, c.Name)
	}
	assert.Equal(t, testutil.SeedCategoryNames, names)
	assert.Equal(t, "fas fa-shoe-prints", cats[3].Icon)
}

func TestParseCatalog_Rejects(t *testing.T) {
	t.Parallel()
	for name, raw := range map[string]string{
		"empty":     "categories: []",
		"unnamed":   "categories:\n  - icon: x\n",
		"duplicate": "categories:\n  - name: Tops\n  - name: Tops\n",
		"malformed": "categories: [",
	} {
		_, err := parseCatalog([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestCategories_Idempotent(t *testing.T) {
	db := testutil.NewDB(t)

	first, err := Categories(db)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Category{}).Where("name = ?", "Shoes").Update("icon", "stale").Error)

	second, err := Categories(db)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.Equal(t, "fas fa-shoe-prints", second[3].Icon)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(len(first)), count)
}

func TestSeed_DemoWardrobes(t *testing.T) {
	db := testutil.NewDB(t)

	summary, err := Seed(db, Options{NumUsers: 2, ItemsPerUser: 8, SkipBcrypt: true, RandSeed: 42})
	require.NoError(t, err)
	assert.Equal(t, Summary{Categories: 6, Users: 2, Items: 16, Outfits: 4, Planned: 4, Wishlist: 2}, *summary)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 2)
	assert.True(t, users[0].OnboardingComplete)
	assert.NotEmpty(t, users[0].Preferences.Data().Styles)

	var outfits []models.Outfit
	require.NoError(t, db.Where("user_id = ?", users[0].ID).Find(&outfits).Error)
	require.Len(t, outfits, 2)
	assert.Len(t, outfits[0].ItemIDs, 3)

	var items []models.ClothingItem
	require.NoError(t, db.Where("id IN ?", []uint(outfits[0].ItemIDs)).Find(&items).Error)
	for _, item := range items {
		assert.Equal(t, users[0].ID, item.UserID)
		assert.True(t, item.Season.Valid())
	}

	// Reseeding with clean replaces the demo data but keeps categories.
	_, err = Seed(db, Options{NumUsers: 1, ItemsPerUser: 3, SkipBcrypt: true, ShouldClean: true})
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(6), count)
}

func TestFactory_DryRun(t *testing.T) {
	t.Parallel()
	f := NewFactory(nil, Options{DryRun: true, SkipBcrypt: true, RandSeed: 7})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, DemoPassword, user.Password)

	cats := []models.Category{{ID: 1, Name: "Tops"}, {ID: 4, Name: "Shoes"}}
	items, err := f.CreateItems(user, cats, 4)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, uint(4), items[1].CategoryID)
	for _, item := range items {
		assert.Contains(t, append(garmentNames["Tops"], garmentNames["Shoes"]...), item.Name)
		if item.TimesWorn == 0 {
			assert.Nil(t, item.LastWorn)
		}
	}
}
