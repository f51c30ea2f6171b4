// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"drobeo/internal/database"
	"drobeo/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SeedCategoryNames is the category catalog in seed order.
var SeedCategoryNames = []string{"Tops", "Bottoms", "Dresses", "Shoes", "Accessories", "Outerwear"}

// NewDB opens an isolated in-memory SQLite database with the full schema.
// Each call gets its own database, closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// SeedCategories inserts the standard catalog and returns it in seed order.
func SeedCategories(t testing.TB, db *gorm.DB) []models.Category {
	t.Helper()
	out := make([]models.Category, 0, len(SeedCategoryNames))
	for _, name := range SeedCategoryNames {
		c := models.Category{Name: name}
		require.NoError(t, db.Create(&c).Error)
		out = append(out, c)
	}
	return out
}

// CreateUser inserts a password user with a unique name.
func CreateUser(t testing.TB, db *gorm.DB) *models.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	email := "user_" + suffix + "@example.com"
	u := &models.User{
		Username: "user_" + suffix,
		Email:    &email,
		Password: "hash",
		Name:     "Test User",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// ItemOption customises a fixture clothing item.
type ItemOption func(*models.ClothingItem)

func WithSeason(s models.Season) ItemOption {
	return func(i *models.ClothingItem) { i.Season = s }
}

func WithColor(c string) ItemOption {
	return func(i *models.ClothingItem) { i.Color = c }
}

func WithTags(tags ...string) ItemOption {
	return func(i *models.ClothingItem) { i.Tags = tags }
}

func WithBrand(b string) ItemOption {
	return func(i *models.ClothingItem) { i.Brand = b }
}

func WithWorn(times int, last time.Time) ItemOption {
	return func(i *models.ClothingItem) {
		i.TimesWorn = times
		i.LastWorn = &last
	}
}

// CreateItem inserts a clothing item owned by userID.
func CreateItem(t testing.TB, db *gorm.DB, userID, categoryID uint, name string, opts ...ItemOption) *models.ClothingItem {
	t.Helper()
	item := &models.ClothingItem{
		UserID:     userID,
		CategoryID: categoryID,
		Name:       name,
		Color:      "black",
		Season:     models.SeasonAll,
		Tags:       []string{},
	}
	for _, opt := range opts {
		opt(item)
	}
	require.NoError(t, db.Omit("Category").Create(item).Error)
	return item
}
