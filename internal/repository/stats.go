package repository

import (
	"context"
	"math"

	"drobeo/internal/cache"
	"drobeo/internal/models"

	"gorm.io/gorm"
)

// StatsRepository computes dashboard counters.
type StatsRepository interface {
	GetUserStats(ctx context.Context, userID uint) (*models.UserStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository returns a new StatsRepository implementation.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// GetUserStats is cached per user for a short window. Writes through the
// other repositories invalidate the entry.
func (r *statsRepository) GetUserStats(ctx context.Context, userID uint) (*models.UserStats, error) {
	var stats models.UserStats
	err := cache.Aside(ctx, "stats", cache.UserStatsKey(userID), &stats, cache.UserStatsTTL, func() error {
		computed, err := r.compute(ctx, userID)
		if err != nil {
			return err
		}
		stats = *computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *statsRepository) compute(ctx context.Context, userID uint) (*models.UserStats, error) {
	db := readDB(r.db).WithContext(ctx)
	var stats models.UserStats
	var worn int64

	if err := db.Model(&models.ClothingItem{}).Where("user_id = ?", userID).Count(&stats.TotalItems).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.ClothingItem{}).Where("user_id = ? AND times_worn > 0", userID).Count(&worn).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Outfit{}).Where("user_id = ?", userID).Count(&stats.OutfitsCreated).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.WishlistItem{}).Where("user_id = ?", userID).Count(&stats.WishlistItems).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	stats.ItemsWornPercentage = WornPercentage(worn, stats.TotalItems)
	return &stats, nil
}

// WornPercentage is round(100*worn/total), or 0 for an empty wardrobe.
func WornPercentage(worn, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(worn) / float64(total)))
}
