package repository

import (
	"context"

	"drobeo/internal/cache"
	"drobeo/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistRepository defines persistence operations for wishlist items.
type WishlistRepository interface {
	List(ctx context.Context, userID uint) ([]models.WishlistItem, error)
	GetByID(ctx context.Context, userID, id uint) (*models.WishlistItem, error)
	Create(ctx context.Context, item *models.WishlistItem) error
	Update(ctx context.Context, item *models.WishlistItem) error
	Delete(ctx context.Context, userID, id uint) error
}

type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository returns a new WishlistRepository implementation.
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// List orders by priority, highest first; equal priorities list the newest first.
func (r *wishlistRepository) List(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	items := []models.WishlistItem{}
	if err := readDB(r.db).WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID).
		Order("priority DESC").Order("created_at DESC").Order("id DESC").
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *wishlistRepository) GetByID(ctx context.Context, userID, id uint) (*models.WishlistItem, error) {
	var item models.WishlistItem
	if err := r.db.WithContext(ctx).Preload("Category").Where("user_id = ?", userID).First(&item, id).Error; err != nil {
		return nil, notFoundOr(err, "Wishlist item", id)
	}
	return &item, nil
}

func (r *wishlistRepository) Create(ctx context.Context, item *models.WishlistItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUserStats(ctx, item.UserID)
	return nil
}

func (r *wishlistRepository) Update(ctx context.Context, item *models.WishlistItem) error {
	res := r.db.WithContext(ctx).Model(item).
		Where("user_id = ?", item.UserID).
		Select("*").
		Omit("id", "user_id", "created_at", clause.Associations).
		Updates(item)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Wishlist item", item.ID)
	}
	return nil
}

func (r *wishlistRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.WishlistItem{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Wishlist item", id)
	}
	cache.InvalidateUserStats(ctx, userID)
	return nil
}
