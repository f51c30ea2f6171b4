package repository

import (
	"context"
	"time"

	"drobeo/internal/cache"
	"drobeo/internal/models"
	"drobeo/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OutfitRepository defines persistence operations for outfits.
type OutfitRepository interface {
	List(ctx context.Context, userID uint, filter models.OutfitFilter) ([]models.Outfit, error)
	GetByID(ctx context.Context, userID, id uint) (*models.Outfit, error)
	Create(ctx context.Context, outfit *models.Outfit) error
	CreateBatch(ctx context.Context, outfits []*models.Outfit) error
	Update(ctx context.Context, outfit *models.Outfit) error
	Delete(ctx context.Context, userID, id uint) error
	MarkWorn(ctx context.Context, userID, id uint, at time.Time) (*models.Outfit, error)
}

type outfitRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewOutfitRepository returns a new OutfitRepository implementation.
func NewOutfitRepository(db *gorm.DB) OutfitRepository {
	return &outfitRepository{db: db, log: observability.NewRepoLogger("outfits")}
}

func (r *outfitRepository) List(ctx context.Context, userID uint, filter models.OutfitFilter) ([]models.Outfit, error) {
	defer observability.TrackQuery("list", "outfits")()
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "List", "outfits")
	defer span.End()

	q := readDB(r.db).WithContext(ctx).Where("user_id = ?", userID)
	if filter.Occasion != "" {
		q = q.Where("occasion = ?", filter.Occasion)
	}
	if filter.WeatherCondition != "" {
		q = q.Where("weather_condition = ?", filter.WeatherCondition)
	}
	if filter.AIGenerated != nil {
		q = q.Where("ai_generated = ?", *filter.AIGenerated)
	}

	outfits := []models.Outfit{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&outfits).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return outfits, nil
}

func (r *outfitRepository) GetByID(ctx context.Context, userID, id uint) (*models.Outfit, error) {
	var outfit models.Outfit
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&outfit, id).Error; err != nil {
		return nil, notFoundOr(err, "Outfit", id)
	}
	return &outfit, nil
}

func (r *outfitRepository) Create(ctx context.Context, outfit *models.Outfit) error {
	defer observability.TrackQuery("create", "outfits")()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(outfit).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	cache.InvalidateUserStats(ctx, outfit.UserID)
	r.log.LogCreate(ctx, map[string]interface{}{"outfit_id": outfit.ID})
	return nil
}

// CreateBatch inserts every outfit or none of them.
func (r *outfitRepository) CreateBatch(ctx context.Context, outfits []*models.Outfit) error {
	if len(outfits) == 0 {
		return nil
	}
	defer observability.TrackQuery("create_batch", "outfits")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, outfit := range outfits {
			if err := tx.Omit(clause.Associations).Create(outfit).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		for _, outfit := range outfits {
			outfit.ID = 0
		}
		r.log.LogError(ctx, err, "create_batch")
		return models.NewInternalError(err)
	}

	seen := make(map[uint]bool)
	for _, outfit := range outfits {
		if !seen[outfit.UserID] {
			cache.InvalidateUserStats(ctx, outfit.UserID)
			seen[outfit.UserID] = true
		}
	}
	r.log.LogCreate(ctx, map[string]interface{}{"count": len(outfits)})
	return nil
}

func (r *outfitRepository) Update(ctx context.Context, outfit *models.Outfit) error {
	res := r.db.WithContext(ctx).Model(outfit).
		Where("user_id = ?", outfit.UserID).
		Select("*").
		Omit("id", "user_id", "created_at", "times_worn", "last_worn", "ai_generated", clause.Associations).
		Updates(outfit)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Outfit", outfit.ID)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"outfit_id": outfit.ID})
	return nil
}

// Delete removes the outfit and detaches any calendar entries that pointed at it.
func (r *outfitRepository) Delete(ctx context.Context, userID, id uint) error {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OutfitCalendarEntry{}).
			Where("user_id = ? AND outfit_id = ?", userID, id).
			Update("outfit_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("user_id = ?", userID).Delete(&models.Outfit{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	if affected == 0 {
		return models.NewNotFoundError("Outfit", id)
	}
	cache.InvalidateUserStats(ctx, userID)
	r.log.LogDelete(ctx, map[string]interface{}{"outfit_id": id})
	return nil
}

func (r *outfitRepository) MarkWorn(ctx context.Context, userID, id uint, at time.Time) (*models.Outfit, error) {
	res := r.db.WithContext(ctx).Model(&models.Outfit{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"times_worn": gorm.Expr("times_worn + 1"),
			"last_worn":  at,
		})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Outfit", id)
	}
	return r.GetByID(ctx, userID, id)
}
