package repository

import (
	"context"
	"strings"
	"time"

	"drobeo/internal/cache"
	"drobeo/internal/models"
	"drobeo/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClothingItemRepository defines persistence operations for a user's wardrobe.
// Every method is scoped to the owning user.
type ClothingItemRepository interface {
	List(ctx context.Context, userID uint, filter models.ClothingItemFilter) ([]models.ClothingItem, error)
	GetByID(ctx context.Context, userID, id uint) (*models.ClothingItem, error)
	GetByIDs(ctx context.Context, userID uint, ids []uint) ([]models.ClothingItem, error)
	Recent(ctx context.Context, userID uint, limit int) ([]models.ClothingItem, error)
	Create(ctx context.Context, item *models.ClothingItem) error
	Update(ctx context.Context, item *models.ClothingItem) error
	Delete(ctx context.Context, userID, id uint) error
	MarkWorn(ctx context.Context, userID, id uint, at time.Time) (*models.ClothingItem, error)
	MarkManyWorn(ctx context.Context, userID uint, ids []uint, at time.Time) error
}

type clothingItemRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewClothingItemRepository returns a new ClothingItemRepository implementation.
func NewClothingItemRepository(db *gorm.DB) ClothingItemRepository {
	return &clothingItemRepository{db: db, log: observability.NewRepoLogger("clothing_items")}
}

func (r *clothingItemRepository) scoped(ctx context.Context, db *gorm.DB, userID uint) *gorm.DB {
	return db.WithContext(ctx).Preload("Category").Where("user_id = ?", userID)
}

// List returns the user's items newest first. Search matches name, brand or
// any tag and is applied after the SQL filters.
func (r *clothingItemRepository) List(ctx context.Context, userID uint, filter models.ClothingItemFilter) ([]models.ClothingItem, error) {
	defer observability.TrackQuery("list", "clothing_items")()
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "List", "clothing_items")
	defer span.End()

	q := r.scoped(ctx, readDB(r.db), userID)
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Season != "" {
		q = q.Where("season IN ?", []models.Season{filter.Season, models.SeasonAll})
	}
	if color := strings.TrimSpace(filter.Color); color != "" {
		q = q.Where("LOWER(color) LIKE ?", "%"+strings.ToLower(color)+"%")
	}

	items := []models.ClothingItem{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		span.RecordError(err)
		return nil, models.NewInternalError(err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search == "" {
		return items, nil
	}
	out := items[:0]
	for _, item := range items {
		if matchesSearch(item, search) {
			out = append(out, item)
		}
	}
	return out, nil
}

func matchesSearch(item models.ClothingItem, needle string) bool {
	if strings.Contains(strings.ToLower(item.Name), needle) ||
		strings.Contains(strings.ToLower(item.Brand), needle) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func (r *clothingItemRepository) GetByID(ctx context.Context, userID, id uint) (*models.ClothingItem, error) {
	defer observability.TrackQuery("get", "clothing_items")()
	var item models.ClothingItem
	if err := r.scoped(ctx, r.db, userID).First(&item, id).Error; err != nil {
		return nil, notFoundOr(err, "Clothing item", id)
	}
	return &item, nil
}

// GetByIDs returns the user's items among ids. Unknown or foreign ids are
// silently absent from the result.
func (r *clothingItemRepository) GetByIDs(ctx context.Context, userID uint, ids []uint) ([]models.ClothingItem, error) {
	items := []models.ClothingItem{}
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.scoped(ctx, readDB(r.db), userID).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *clothingItemRepository) Recent(ctx context.Context, userID uint, limit int) ([]models.ClothingItem, error) {
	if limit <= 0 {
		limit = 4
	}
	items := []models.ClothingItem{}
	if err := r.scoped(ctx, readDB(r.db), userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *clothingItemRepository) Create(ctx context.Context, item *models.ClothingItem) error {
	defer observability.TrackQuery("create", "clothing_items")()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	cache.InvalidateUserStats(ctx, item.UserID)
	r.log.LogCreate(ctx, map[string]interface{}{"item_id": item.ID, "user_id": item.UserID})
	return nil
}

// Update writes every mutable column of item. Ownership and server-assigned
// columns are never touched.
func (r *clothingItemRepository) Update(ctx context.Context, item *models.ClothingItem) error {
	defer observability.TrackQuery("update", "clothing_items")()
	res := r.db.WithContext(ctx).Model(item).
		Where("user_id = ?", item.UserID).
		Select("*").
		Omit("id", "user_id", "created_at", "times_worn", "last_worn", clause.Associations).
		Updates(item)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Clothing item", item.ID)
	}
	cache.InvalidateUserStats(ctx, item.UserID)
	r.log.LogUpdate(ctx, map[string]interface{}{"item_id": item.ID})
	return nil
}

func (r *clothingItemRepository) Delete(ctx context.Context, userID, id uint) error {
	defer observability.TrackQuery("delete", "clothing_items")()
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ClothingItem{}, id)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Clothing item", id)
	}
	cache.InvalidateUserStats(ctx, userID)
	r.log.LogDelete(ctx, map[string]interface{}{"item_id": id})
	return nil
}

func (r *clothingItemRepository) MarkWorn(ctx context.Context, userID, id uint, at time.Time) (*models.ClothingItem, error) {
	res := r.db.WithContext(ctx).Model(&models.ClothingItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"times_worn": gorm.Expr("times_worn + 1"),
			"last_worn":  at,
		})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Clothing item", id)
	}
	cache.InvalidateUserStats(ctx, userID)
	return r.GetByID(ctx, userID, id)
}

// MarkManyWorn bumps every listed item the user owns. Missing ids are ignored.
func (r *clothingItemRepository) MarkManyWorn(ctx context.Context, userID uint, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.ClothingItem{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(map[string]interface{}{
			"times_worn": gorm.Expr("times_worn + 1"),
			"last_worn":  at,
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUserStats(ctx, userID)
	return nil
}
