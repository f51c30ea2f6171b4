package service

import (
	"context"
	"strings"
	"time"

	"drobeo/internal/models"
	"drobeo/internal/repository"
	"drobeo/internal/validation"
)

const maxOutfitItems = 20

// OutfitInput is the create payload for a hand-built outfit.
type OutfitInput struct {
	validation.ServerAssigned
	Name             string          `json:"name"`
	ItemIDs          []uint          `json:"item_ids"`
	Occasion         models.Occasion `json:"occasion"`
	WeatherCondition models.Weather  `json:"weather_condition"`
	Rating           int             `json:"rating"`
	IsFavorite       bool            `json:"is_favorite"`
}

// OutfitPatch is a partial update. Nil fields are left untouched.
type OutfitPatch struct {
	Name             *string          `json:"name"`
	ItemIDs          *[]uint          `json:"item_ids"`
	Occasion         *models.Occasion `json:"occasion"`
	WeatherCondition *models.Weather  `json:"weather_condition"`
	Rating           *int             `json:"rating"`
	IsFavorite       *bool            `json:"is_favorite"`
}

type OutfitService struct {
	outfits repository.OutfitRepository
	items   repository.ClothingItemRepository
	now     func() time.Time
}

func NewOutfitService(outfits repository.OutfitRepository, items repository.ClothingItemRepository) *OutfitService {
	return &OutfitService{outfits: outfits, items: items, now: time.Now}
}

func (s *OutfitService) List(ctx context.Context, userID uint, filter models.OutfitFilter) ([]models.Outfit, error) {
	var v validation.Errors
	validation.OptionalOccasion(&v, "occasion", filter.Occasion)
	validation.OptionalWeather(&v, "weather_condition", filter.WeatherCondition)
	if err := v.Err(); err != nil {
		return nil, err
	}

	outfits, err := s.outfits.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, userID, outfits); err != nil {
		return nil, err
	}
	return outfits, nil
}

func (s *OutfitService) Get(ctx context.Context, userID, id uint) (*models.Outfit, error) {
	outfit, err := s.outfits.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, userID, outfit)
}

func (s *OutfitService) Create(ctx context.Context, userID uint, in OutfitInput) (*models.Outfit, error) {
	var v validation.Errors
	in.ServerAssigned.Reject(&v)
	validation.Name(&v, "name", in.Name, 100)
	validation.Occasion(&v, "occasion", in.Occasion)
	validation.OptionalWeather(&v, "weather_condition", in.WeatherCondition)
	validation.Range(&v, "rating", in.Rating, 0, 5)
	ids := uniqueIDs(in.ItemIDs)
	v.Check(len(ids) > 0, "item_ids", "must contain at least one item")
	v.Check(len(ids) <= maxOutfitItems, "item_ids", "too many items")
	if err := v.Err(); err != nil {
		return nil, err
	}

	items, err := s.ownedItems(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	outfit := &models.Outfit{
		UserID:           userID,
		Name:             strings.TrimSpace(in.Name),
		ItemIDs:          ids,
		Occasion:         in.Occasion,
		WeatherCondition: in.WeatherCondition,
		Rating:           in.Rating,
		IsFavorite:       in.IsFavorite,
	}
	if err := s.outfits.Create(ctx, outfit); err != nil {
		return nil, err
	}
	outfit.Items = items
	return outfit, nil
}

func (s *OutfitService) Update(ctx context.Context, userID, id uint, patch OutfitPatch) (*models.Outfit, error) {
	outfit, err := s.outfits.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		outfit.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Occasion != nil {
		outfit.Occasion = *patch.Occasion
	}
	if patch.WeatherCondition != nil {
		outfit.WeatherCondition = *patch.WeatherCondition
	}
	if patch.Rating != nil {
		outfit.Rating = *patch.Rating
	}
	if patch.IsFavorite != nil {
		outfit.IsFavorite = *patch.IsFavorite
	}

	var v validation.Errors
	validation.Name(&v, "name", outfit.Name, 100)
	validation.Occasion(&v, "occasion", outfit.Occasion)
	validation.OptionalWeather(&v, "weather_condition", outfit.WeatherCondition)
	validation.Range(&v, "rating", outfit.Rating, 0, 5)
	if patch.ItemIDs != nil {
		ids := uniqueIDs(*patch.ItemIDs)
		v.Check(len(ids) > 0, "item_ids", "must contain at least one item")
		v.Check(len(ids) <= maxOutfitItems, "item_ids", "too many items")
		outfit.ItemIDs = ids
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if patch.ItemIDs != nil {
		if _, err := s.ownedItems(ctx, userID, outfit.ItemIDs); err != nil {
			return nil, err
		}
	}

	if err := s.outfits.Update(ctx, outfit); err != nil {
		return nil, err
	}
	return s.withItems(ctx, userID, outfit)
}

func (s *OutfitService) Delete(ctx context.Context, userID, id uint) error {
	return s.outfits.Delete(ctx, userID, id)
}

func (s *OutfitService) ToggleFavorite(ctx context.Context, userID, id uint) (*models.Outfit, error) {
	outfit, err := s.outfits.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	outfit.IsFavorite = !outfit.IsFavorite
	if err := s.outfits.Update(ctx, outfit); err != nil {
		return nil, err
	}
	return s.withItems(ctx, userID, outfit)
}

// Wear records that the outfit and each of its items were worn now.
func (s *OutfitService) Wear(ctx context.Context, userID, id uint) (*models.Outfit, error) {
	at := s.now().UTC()
	outfit, err := s.outfits.MarkWorn(ctx, userID, id, at)
	if err != nil {
		return nil, err
	}
	if err := s.items.MarkManyWorn(ctx, userID, outfit.ItemIDs, at); err != nil {
		return nil, err
	}
	return s.withItems(ctx, userID, outfit)
}

// ownedItems loads ids and fails validation unless every one belongs to the user.
func (s *OutfitService) ownedItems(ctx context.Context, userID uint, ids []uint) ([]models.ClothingItem, error) {
	items, err := s.items.GetByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	if len(items) != len(ids) {
		return nil, models.NewFieldValidationError(models.FieldError{
			Field:   "item_ids",
			Message: "contains items that are not in your wardrobe",
		})
	}
	return orderByIDs(items, ids), nil
}

func (s *OutfitService) withItems(ctx context.Context, userID uint, outfit *models.Outfit) (*models.Outfit, error) {
	list := []models.Outfit{*outfit}
	if err := s.attachItems(ctx, userID, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// attachItems resolves every outfit's item ids with one query. Ids that no
// longer resolve are dropped.
func (s *OutfitService) attachItems(ctx context.Context, userID uint, outfits []models.Outfit) error {
	var all []uint
	for _, o := range outfits {
		all = append(all, o.ItemIDs...)
	}
	all = uniqueIDs(all)
	if len(all) == 0 {
		return nil
	}

	items, err := s.items.GetByIDs(ctx, userID, all)
	if err != nil {
		return err
	}
	for i := range outfits {
		outfits[i].Items = orderByIDs(items, outfits[i].ItemIDs)
	}
	return nil
}

func orderByIDs(items []models.ClothingItem, ids []uint) []models.ClothingItem {
	byID := make(map[uint]models.ClothingItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	out := make([]models.ClothingItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

func uniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
