package repository

import (
	"context"
	"time"

	"drobeo/internal/models"

	"gorm.io/gorm"
)

// PhoneVerificationRepository stores issued verification codes.
type PhoneVerificationRepository interface {
	Create(ctx context.Context, v *models.PhoneVerification) error
	ActiveForPhone(ctx context.Context, phone string, now time.Time) ([]models.PhoneVerification, error)
	Consume(ctx context.Context, id uint, now time.Time) (bool, error)
}

type phoneVerificationRepository struct {
	db *gorm.DB
}

// NewPhoneVerificationRepository returns a new PhoneVerificationRepository implementation.
func NewPhoneVerificationRepository(db *gorm.DB) PhoneVerificationRepository {
	return &phoneVerificationRepository{db: db}
}

func (r *phoneVerificationRepository) Create(ctx context.Context, v *models.PhoneVerification) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ActiveForPhone lists unconsumed, unexpired records for phone, newest first.
// Always reads the primary.
func (r *phoneVerificationRepository) ActiveForPhone(ctx context.Context, phone string, now time.Time) ([]models.PhoneVerification, error) {
	records := []models.PhoneVerification{}
	if err := r.db.WithContext(ctx).
		Where("phone_number = ? AND consumed = ? AND expires_at > ?", phone, false, now).
		Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return records, nil
}

// Consume marks the record used if it is still unconsumed and unexpired.
// Returns false when another caller got there first or the record expired.
func (r *phoneVerificationRepository) Consume(ctx context.Context, id uint, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PhoneVerification{}).
		Where("id = ? AND consumed = ? AND expires_at > ?", id, false, now).
		Updates(map[string]interface{}{
			"consumed":    true,
			"consumed_at": now,
		})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}
