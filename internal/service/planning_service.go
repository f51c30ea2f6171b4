package service

import (
	"context"
	"strings"
	"time"

	"drobeo/internal/models"
	"drobeo/internal/repository"
	"drobeo/internal/validation"
)

// DateLayout is the wire format of calendar days.
const DateLayout = "2006-01-02"

// maxCalendarSpan bounds a single range query.
const maxCalendarSpan = 366 * 24 * time.Hour

// ParseDay parses a YYYY-MM-DD calendar day.
func ParseDay(field, raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, models.NewFieldValidationError(models.FieldError{Field: field, Message: "must be a date in YYYY-MM-DD format"})
	}
	return t, nil
}

type CalendarEntryInput struct {
	OutfitID         *uint           `json:"outfit_id"`
	Date             string          `json:"date"`
	Occasion         models.Occasion `json:"occasion"`
	WeatherCondition models.Weather  `json:"weather_condition"`
	Notes            string          `json:"notes"`
}

type CalendarService struct {
	entries repository.CalendarRepository
	outfits repository.OutfitRepository
}

func NewCalendarService(entries repository.CalendarRepository, outfits repository.OutfitRepository) *CalendarService {
	return &CalendarService{entries: entries, outfits: outfits}
}

// Range lists the entries planned between start and end, both days included.
func (s *CalendarService) Range(ctx context.Context, userID uint, start, end time.Time) ([]models.OutfitCalendarEntry, error) {
	if end.Before(start) {
		return nil, models.NewFieldValidationError(models.FieldError{Field: "end", Message: "must not be before start"})
	}
	if end.Sub(start) > maxCalendarSpan {
		return nil, models.NewFieldValidationError(models.FieldError{Field: "end", Message: "range must not exceed one year"})
	}
	return s.entries.Range(ctx, userID, start, end)
}

func (s *CalendarService) Create(ctx context.Context, userID uint, in CalendarEntryInput) (*models.OutfitCalendarEntry, error) {
	entry := &models.OutfitCalendarEntry{UserID: userID}
	if err := s.apply(ctx, userID, entry, in); err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update replaces every editable field of the entry.
func (s *CalendarService) Update(ctx context.Context, userID, id uint, in CalendarEntryInput) (*models.OutfitCalendarEntry, error) {
	entry, err := s.entries.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, userID, entry, in); err != nil {
		return nil, err
	}
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *CalendarService) Delete(ctx context.Context, userID, id uint) error {
	return s.entries.Delete(ctx, userID, id)
}

func (s *CalendarService) apply(ctx context.Context, userID uint, entry *models.OutfitCalendarEntry, in CalendarEntryInput) error {
	var v validation.Errors
	date, err := time.Parse(DateLayout, strings.TrimSpace(in.Date))
	v.Check(err == nil, "date", "must be a date in YYYY-MM-DD format")
	validation.OptionalOccasion(&v, "occasion", in.Occasion)
	validation.OptionalWeather(&v, "weather_condition", in.WeatherCondition)
	validation.Optional(&v, "notes", in.Notes, 1000)
	if err := v.Err(); err != nil {
		return err
	}

	entry.Outfit = nil
	entry.OutfitID = nil
	if in.OutfitID != nil && *in.OutfitID != 0 {
		outfit, err := s.outfits.GetByID(ctx, userID, *in.OutfitID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return models.NewFieldValidationError(models.FieldError{Field: "outfit_id", Message: "does not exist"})
			}
			return err
		}
		entry.OutfitID = &outfit.ID
		entry.Outfit = outfit
	}

	entry.Date = date
	entry.Occasion = in.Occasion
	entry.WeatherCondition = in.WeatherCondition
	entry.Notes = strings.TrimSpace(in.Notes)
	return nil
}

type WishlistInput struct {
	CategoryID uint   `json:"category_id"`
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	Price      *int   `json:"price"`
	StoreURL   string `json:"store_url"`
	ImageURL   string `json:"image_url"`
	Priority   *int   `json:"priority"`
	Notes      string `json:"notes"`
}

// DefaultWishlistPriority applies when a wishlist item is created without one.
const DefaultWishlistPriority = 3

type WishlistService struct {
	items      repository.WishlistRepository
	categories repository.CategoryRepository
}

func NewWishlistService(items repository.WishlistRepository, categories repository.CategoryRepository) *WishlistService {
	return &WishlistService{items: items, categories: categories}
}

func (s *WishlistService) List(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	return s.items.List(ctx, userID)
}

func (s *WishlistService) Create(ctx context.Context, userID uint, in WishlistInput) (*models.WishlistItem, error) {
	item := &models.WishlistItem{UserID: userID}
	if err := s.apply(ctx, item, in); err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update replaces every editable field of the item.
func (s *WishlistService) Update(ctx context.Context, userID, id uint, in WishlistInput) (*models.WishlistItem, error) {
	item, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, item, in); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *WishlistService) Delete(ctx context.Context, userID, id uint) error {
	return s.items.Delete(ctx, userID, id)
}

func (s *WishlistService) apply(ctx context.Context, item *models.WishlistItem, in WishlistInput) error {
	priority := DefaultWishlistPriority
	if in.Priority != nil {
		priority = *in.Priority
	}

	var v validation.Errors
	validation.Name(&v, "name", in.Name, 100)
	validation.Optional(&v, "brand", in.Brand, 100)
	validation.NonNegative(&v, "price", in.Price)
	validation.URL(&v, "store_url", in.StoreURL)
	validation.URL(&v, "image_url", in.ImageURL)
	validation.Range(&v, "priority", priority, 1, 5)
	validation.Optional(&v, "notes", in.Notes, 1000)
	v.Check(in.CategoryID != 0, "category_id", "is required")
	if err := v.Err(); err != nil {
		return err
	}

	category, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.NewFieldValidationError(models.FieldError{Field: "category_id", Message: "does not exist"})
		}
		return err
	}

	item.CategoryID = category.ID
	item.Category = category
	item.Name = strings.TrimSpace(in.Name)
	item.Brand = strings.TrimSpace(in.Brand)
	item.Price = in.Price
	item.StoreURL = in.StoreURL
	item.ImageURL = in.ImageURL
	item.Priority = priority
	item.Notes = strings.TrimSpace(in.Notes)
	return nil
}
