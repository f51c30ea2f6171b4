package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"drobeo/internal/ai"
	"drobeo/internal/featureflags"
	"drobeo/internal/models"
	"drobeo/internal/observability"
	"drobeo/internal/repository"
	"drobeo/internal/validation"
)

const (
	// MinWardrobeSize is the smallest wardrobe outfits are generated from.
	MinWardrobeSize = 3
	defaultRating   = 4
)

type GenerateOutfitsInput struct {
	Occasion         models.Occasion `json:"occasion"`
	WeatherCondition models.Weather  `json:"weather_condition"`
	Style            string          `json:"style"`
	Colors           []string        `json:"colors"`
}

// RecommendationService turns a wardrobe into AI-generated outfits.
type RecommendationService struct {
	items     repository.ClothingItemRepository
	outfits   repository.OutfitRepository
	users     repository.UserRepository
	generator ai.OutfitGenerator
	flags     *featureflags.Manager
	log       *observability.ServiceLogger
}

func NewRecommendationService(
	items repository.ClothingItemRepository,
	outfits repository.OutfitRepository,
	users repository.UserRepository,
	generator ai.OutfitGenerator,
	flags *featureflags.Manager,
) *RecommendationService {
	return &RecommendationService{
		items:     items,
		outfits:   outfits,
		users:     users,
		generator: generator,
		flags:     flags,
		log:       observability.NewServiceLogger("recommendation"),
	}
}

// GenerateOutfits asks the generator for up to three outfits built from the
// user's wardrobe and persists them together. The created outfits are returned
// with their items attached.
func (s *RecommendationService) GenerateOutfits(ctx context.Context, userID uint, in GenerateOutfitsInput) ([]models.Outfit, error) {
	var v validation.Errors
	validation.Occasion(&v, "occasion", in.Occasion)
	validation.Weather(&v, "weather_condition", in.WeatherCondition)
	validation.Optional(&v, "style", in.Style, 100)
	v.Check(len(in.Colors) <= 10, "colors", "too many colors")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if !s.flags.EnabledOr(featureflags.AIOutfits, userID, true) {
		return nil, models.NewPreconditionFailedError("AI outfit generation is not available")
	}

	wardrobe, err := s.items.List(ctx, userID, models.ClothingItemFilter{})
	if err != nil {
		return nil, err
	}
	if len(wardrobe) < MinWardrobeSize {
		return nil, models.NewPreconditionFailedError(
			fmt.Sprintf("You need at least %d clothing items to generate outfit suggestions", MinWardrobeSize))
	}

	var prefs models.Preferences
	if s.users != nil {
		if user, err := s.users.GetByID(ctx, userID); err == nil {
			prefs = user.Preferences.Data()
		}
	}

	eligible := EligibleItems(wardrobe, in.WeatherCondition)
	suggestions, err := s.generator.GenerateOutfits(ctx, ai.OutfitRequest{
		Items:       toWardrobeItems(eligible),
		Occasion:    in.Occasion,
		Weather:     in.WeatherCondition,
		Style:       strings.TrimSpace(in.Style),
		Colors:      in.Colors,
		Preferences: prefs,
	})
	if err != nil {
		s.log.Error(ctx, "outfit generation failed", err, map[string]any{"user_id": userID})
		return nil, models.NewGenerationFailedError(err)
	}

	owned := make(map[uint]models.ClothingItem, len(wardrobe))
	for _, item := range wardrobe {
		owned[item.ID] = item
	}

	if len(suggestions) > ai.MaxSuggestions {
		suggestions = suggestions[:ai.MaxSuggestions]
	}
	outfits := make([]*models.Outfit, 0, len(suggestions))
	for i, suggestion := range suggestions {
		ids := OwnedItemIDs(suggestion.ItemIDs, owned)
		if len(ids) == 0 {
			s.log.Warn(ctx, "skipping suggestion without wardrobe items", nil, map[string]any{
				"user_id": userID, "suggestion": suggestion.Name, "returned_ids": len(suggestion.ItemIDs),
			})
			continue
		}
		outfits = append(outfits, s.toOutfit(userID, i, suggestion, ids, in))
	}
	if len(outfits) == 0 {
		return nil, models.NewGenerationFailedError(errors.New("no suggestion referenced items from the wardrobe"))
	}

	if err := s.outfits.CreateBatch(ctx, outfits); err != nil {
		return nil, err
	}
	observability.OutfitsGenerated.Add(float64(len(outfits)))
	s.log.Info(ctx, "outfits generated", map[string]any{"user_id": userID, "count": len(outfits)})

	out := make([]models.Outfit, 0, len(outfits))
	for _, outfit := range outfits {
		for _, id := range outfit.ItemIDs {
			if item, ok := owned[id]; ok {
				outfit.Items = append(outfit.Items, item)
			}
		}
		out = append(out, *outfit)
	}
	return out, nil
}

func (s *RecommendationService) toOutfit(userID uint, index int, suggestion ai.OutfitSuggestion, ids []uint, in GenerateOutfitsInput) *models.Outfit {
	name := strings.TrimSpace(suggestion.Name)
	if name == "" {
		name = fmt.Sprintf("Outfit suggestion %d", index+1)
	}
	if len([]rune(name)) > 100 {
		name = string([]rune(name)[:100])
	}

	occasion := suggestion.Occasion
	if !occasion.Valid() {
		occasion = in.Occasion
	}
	weather := suggestion.WeatherCondition
	if !weather.Valid() {
		weather = in.WeatherCondition
	}

	outfit := &models.Outfit{
		UserID:           userID,
		Name:             name,
		ItemIDs:          ids,
		Occasion:         occasion,
		WeatherCondition: weather,
		Rating:           ClampRating(suggestion.Rating),
		AIGenerated:      true,
	}
	outfit.SetSuggestion(models.AISuggestion{
		StyleDescription: suggestion.StyleDescription,
		Reasoning:        suggestion.Reasoning,
	})
	return outfit
}

// EligibleItems keeps the items whose season suits the weather, ordered so
// the least recently and least often worn come first. When fewer than
// MinWardrobeSize items suit the weather the whole wardrobe is used.
func EligibleItems(wardrobe []models.ClothingItem, weather models.Weather) []models.ClothingItem {
	eligible := wardrobe
	if seasons := weather.SuitableSeasons(); seasons != nil {
		suits := make(map[models.Season]bool, len(seasons))
		for _, s := range seasons {
			suits[s] = true
		}
		filtered := make([]models.ClothingItem, 0, len(wardrobe))
		for _, item := range wardrobe {
			if suits[item.Season] {
				filtered = append(filtered, item)
			}
		}
		if len(filtered) >= MinWardrobeSize {
			eligible = filtered
		}
	}

	out := append([]models.ClothingItem(nil), eligible...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TimesWorn != b.TimesWorn {
			return a.TimesWorn < b.TimesWorn
		}
		switch {
		case a.LastWorn == nil && b.LastWorn == nil:
			return false
		case a.LastWorn == nil:
			return true
		case b.LastWorn == nil:
			return false
		default:
			return a.LastWorn.Before(*b.LastWorn)
		}
	})
	return out
}

// ClampRating maps a generator rating onto 1..5. Missing or zero ratings become 4.
func ClampRating(r *float64) int {
	if r == nil || *r == 0 || math.IsNaN(*r) {
		return defaultRating
	}
	rounded := int(math.Round(math.Max(-10, math.Min(10, *r))))
	if rounded < 1 {
		return 1
	}
	if rounded > 5 {
		return 5
	}
	return rounded
}

// OwnedItemIDs drops ids that are not in owned and removes duplicates, keeping order.
func OwnedItemIDs(ids []uint, owned map[uint]models.ClothingItem) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if _, ok := owned[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func toWardrobeItems(items []models.ClothingItem) []ai.WardrobeItem {
	out := make([]ai.WardrobeItem, 0, len(items))
	for _, item := range items {
		out = append(out, ai.WardrobeItem{
			ID:        item.ID,
			Name:      item.Name,
			Category:  item.CategoryName(),
			Color:     item.Color,
			Season:    item.Season,
			Brand:     item.Brand,
			Tags:      item.Tags,
			TimesWorn: item.TimesWorn,
			LastWorn:  item.LastWorn,
		})
	}
	return out
}
