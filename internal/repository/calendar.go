package repository

import (
	"context"
	"time"

	"drobeo/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CalendarRepository defines persistence operations for planned outfits.
type CalendarRepository interface {
	Range(ctx context.Context, userID uint, start, end time.Time) ([]models.OutfitCalendarEntry, error)
	GetByID(ctx context.Context, userID, id uint) (*models.OutfitCalendarEntry, error)
	Create(ctx context.Context, entry *models.OutfitCalendarEntry) error
	Update(ctx context.Context, entry *models.OutfitCalendarEntry) error
	Delete(ctx context.Context, userID, id uint) error
}

type calendarRepository struct {
	db *gorm.DB
}

// NewCalendarRepository returns a new CalendarRepository implementation.
func NewCalendarRepository(db *gorm.DB) CalendarRepository {
	return &calendarRepository{db: db}
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Range returns entries whose date falls within [start, end], both days
// inclusive, ordered by date then id.
func (r *calendarRepository) Range(ctx context.Context, userID uint, start, end time.Time) ([]models.OutfitCalendarEntry, error) {
	entries := []models.OutfitCalendarEntry{}
	if err := readDB(r.db).WithContext(ctx).
		Preload("Outfit").
		Where("user_id = ? AND date >= ? AND date < ?", userID, Day(start), Day(end).AddDate(0, 0, 1)).
		Order("date ASC").Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *calendarRepository) GetByID(ctx context.Context, userID, id uint) (*models.OutfitCalendarEntry, error) {
	var entry models.OutfitCalendarEntry
	if err := r.db.WithContext(ctx).Preload("Outfit").Where("user_id = ?", userID).First(&entry, id).Error; err != nil {
		return nil, notFoundOr(err, "Calendar entry", id)
	}
	return &entry, nil
}

func (r *calendarRepository) Create(ctx context.Context, entry *models.OutfitCalendarEntry) error {
	entry.Date = Day(entry.Date)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *calendarRepository) Update(ctx context.Context, entry *models.OutfitCalendarEntry) error {
	entry.Date = Day(entry.Date)
	res := r.db.WithContext(ctx).Model(entry).
		Where("user_id = ?", entry.UserID).
		Select("*").
		Omit("id", "user_id", "created_at", clause.Associations).
		Updates(entry)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Calendar entry", entry.ID)
	}
	return nil
}

func (r *calendarRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.OutfitCalendarEntry{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Calendar entry", id)
	}
	return nil
}
