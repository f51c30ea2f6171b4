package service

import (
	"context"
	"errors"
	"image"
	"strings"
	"time"

	"drobeo/internal/ai"
	"drobeo/internal/featureflags"
	"drobeo/internal/imaging"
	"drobeo/internal/models"
	"drobeo/internal/observability"
	"drobeo/internal/repository"
	"drobeo/internal/validation"
)

const (
	// DefaultRecentLimit is the number of items returned by Recent when no limit is given.
	DefaultRecentLimit = 4
	maxRecentLimit     = 50
	maxTags            = 20
)

// ItemInput is the create payload for a clothing item.
type ItemInput struct {
	validation.ServerAssigned
	CategoryID   uint          `json:"category_id"`
	Name         string        `json:"name"`
	Brand        string        `json:"brand"`
	Color        string        `json:"color"`
	Season       models.Season `json:"season"`
	ImageURL     string        `json:"image_url"`
	Tags         []string      `json:"tags"`
	PurchaseDate *time.Time    `json:"purchase_date"`
	Price        *int          `json:"price"`
	IsFavorite   bool          `json:"is_favorite"`
}

// ItemPatch is a partial update. Nil fields are left untouched.
type ItemPatch struct {
	CategoryID   *uint          `json:"category_id"`
	Name         *string        `json:"name"`
	Brand        *string        `json:"brand"`
	Color        *string        `json:"color"`
	Season       *models.Season `json:"season"`
	ImageURL     *string        `json:"image_url"`
	Tags         *[]string      `json:"tags"`
	PurchaseDate *time.Time     `json:"purchase_date"`
	Price        *int           `json:"price"`
	IsFavorite   *bool          `json:"is_favorite"`
}

// UploadInput is an image-assisted create. Empty item fields are filled from
// the image analysis.
type UploadInput struct {
	Content     []byte
	ContentType string
	Item        ItemInput
}

type ClosetService struct {
	items      repository.ClothingItemRepository
	categories repository.CategoryRepository
	analyzer   ai.ImageAnalyzer
	images     *ImageStore
	flags      *featureflags.Manager
	now        func() time.Time
	log        *observability.ServiceLogger
}

func NewClosetService(
	items repository.ClothingItemRepository,
	categories repository.CategoryRepository,
	analyzer ai.ImageAnalyzer,
	images *ImageStore,
	flags *featureflags.Manager,
) *ClosetService {
	return &ClosetService{
		items:      items,
		categories: categories,
		analyzer:   analyzer,
		images:     images,
		flags:      flags,
		now:        time.Now,
		log:        observability.NewServiceLogger("closet"),
	}
}

func (s *ClosetService) List(ctx context.Context, userID uint, filter models.ClothingItemFilter) ([]models.ClothingItem, error) {
	if filter.Season != "" && !filter.Season.Valid() {
		return nil, models.NewFieldValidationError(models.FieldError{Field: "season", Message: "must be one of spring, summer, fall, winter, all"})
	}
	filter.Color = strings.TrimSpace(filter.Color)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.items.List(ctx, userID, filter)
}

func (s *ClosetService) Recent(ctx context.Context, userID uint, limit int) ([]models.ClothingItem, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.items.Recent(ctx, userID, limit)
}

func (s *ClosetService) Get(ctx context.Context, userID, id uint) (*models.ClothingItem, error) {
	return s.items.GetByID(ctx, userID, id)
}

func (s *ClosetService) Create(ctx context.Context, userID uint, in ItemInput) (*models.ClothingItem, error) {
	var v validation.Errors
	in.ServerAssigned.Reject(&v)
	validateItemFields(&v, in.Name, in.Brand, in.Color, in.Season, in.ImageURL, in.Tags, in.Price)
	v.Check(in.CategoryID != 0, "category_id", "is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	category, err := s.lookupCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	item := &models.ClothingItem{
		UserID:       userID,
		CategoryID:   in.CategoryID,
		Name:         strings.TrimSpace(in.Name),
		Brand:        strings.TrimSpace(in.Brand),
		Color:        strings.TrimSpace(in.Color),
		Season:       in.Season,
		ImageURL:     in.ImageURL,
		Tags:         cleanTags(in.Tags),
		PurchaseDate: in.PurchaseDate,
		Price:        in.Price,
		IsFavorite:   in.IsFavorite,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	item.Category = category
	return item, nil
}

func (s *ClosetService) Update(ctx context.Context, userID, id uint, patch ItemPatch) (*models.ClothingItem, error) {
	item, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.CategoryID != nil && *patch.CategoryID != item.CategoryID {
		category, err := s.lookupCategory(ctx, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		item.CategoryID = category.ID
		item.Category = category
	}
	if patch.Name != nil {
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Brand != nil {
		item.Brand = strings.TrimSpace(*patch.Brand)
	}
	if patch.Color != nil {
		item.Color = strings.TrimSpace(*patch.Color)
	}
	if patch.Season != nil {
		item.Season = *patch.Season
	}
	if patch.ImageURL != nil {
		item.ImageURL = *patch.ImageURL
	}
	if patch.Tags != nil {
		item.Tags = cleanTags(*patch.Tags)
	}
	if patch.PurchaseDate != nil {
		item.PurchaseDate = patch.PurchaseDate
	}
	if patch.Price != nil {
		item.Price = patch.Price
	}
	if patch.IsFavorite != nil {
		item.IsFavorite = *patch.IsFavorite
	}

	var v validation.Errors
	validateItemFields(&v, item.Name, item.Brand, item.Color, item.Season, item.ImageURL, item.Tags, item.Price)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ClosetService) Delete(ctx context.Context, userID, id uint) error {
	return s.items.Delete(ctx, userID, id)
}

// ToggleFavorite flips the item's favorite flag.
func (s *ClosetService) ToggleFavorite(ctx context.Context, userID, id uint) (*models.ClothingItem, error) {
	item, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	item.IsFavorite = !item.IsFavorite
	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Wear records that the item was worn now.
func (s *ClosetService) Wear(ctx context.Context, userID, id uint) (*models.ClothingItem, error) {
	return s.items.MarkWorn(ctx, userID, id, s.now().UTC())
}

// Analyze classifies a garment photo.
func (s *ClosetService) Analyze(ctx context.Context, userID uint, content []byte, contentType string) (*ai.ImageAnalysis, error) {
	if !s.flags.EnabledOr(featureflags.AIImageAnalysis, userID, true) {
		return nil, models.NewPreconditionFailedError("Image analysis is not available")
	}
	if s.images != nil {
		decoded, err := s.images.Load(content, contentType)
		if err != nil {
			return nil, err
		}
		if content, err = imaging.AnalysisJPEG(decoded); err != nil {
			return nil, models.NewInternalError(err)
		}
		contentType = "image/jpeg"
	}

	analysis, err := s.analyzer.Analyze(ctx, content, contentType)
	if err != nil {
		if isImageInputError(err) {
			return nil, imageValidationError(err)
		}
		s.log.Error(ctx, "image analysis failed", err, map[string]any{"user_id": userID})
		return nil, models.NewAnalysisFailedError(err)
	}
	return analysis, nil
}

// CreateFromUpload stores the photo, fills missing fields from its analysis
// and creates the item. Analysis problems never fail the request: caller
// fields win, the analysis fills gaps, and defaults cover the rest.
func (s *ClosetService) CreateFromUpload(ctx context.Context, userID uint, in UploadInput) (*models.ClothingItem, error) {
	item := in.Item

	// Caller fields are checked before anything is written. Gaps the analysis
	// may fill are checked with the values they would default to.
	color, season := item.Color, item.Season
	if strings.TrimSpace(color) == "" {
		color = "unknown"
	}
	if season == "" {
		season = models.SeasonAll
	}
	var v validation.Errors
	item.ServerAssigned.Reject(&v)
	validateItemFields(&v, item.Name, item.Brand, color, season, "", item.Tags, item.Price)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if item.CategoryID != 0 {
		if _, err := s.lookupCategory(ctx, item.CategoryID); err != nil {
			return nil, err
		}
	}

	decoded, err := s.images.Load(in.Content, in.ContentType)
	if err != nil {
		return nil, err
	}

	var analysis *ai.ImageAnalysis
	if s.analyzer != nil && s.flags.EnabledOr(featureflags.AIImageAnalysis, userID, true) {
		analysis, err = s.analyzeDecoded(ctx, decoded)
		if err != nil {
			s.log.Warn(ctx, "image analysis failed, using defaults", err, map[string]any{"user_id": userID})
			analysis = nil
		}
	}

	if item.CategoryID == 0 {
		category, err := s.categoryFor(ctx, analysis)
		if err != nil {
			return nil, err
		}
		item.CategoryID = category.ID
	}
	if strings.TrimSpace(item.Color) == "" {
		item.Color = "unknown"
		if analysis != nil && analysis.Color != "" {
			item.Color = analysis.Color
		}
	}
	if item.Season == "" {
		item.Season = models.SeasonAll
		if analysis != nil && analysis.Season.Valid() {
			item.Season = analysis.Season
		}
	}
	if len(item.Tags) == 0 && analysis != nil {
		item.Tags = []string{analysis.Style, analysis.Pattern}
	}

	url, created, err := s.images.Save(ctx, userID, in.Content, decoded)
	if err != nil {
		return nil, err
	}
	item.ImageURL = url

	stored, err := s.Create(ctx, userID, item)
	if err != nil {
		if created {
			if rmErr := s.images.Remove(url); rmErr != nil {
				s.log.Warn(ctx, "failed to remove orphaned image", rmErr, map[string]any{"user_id": userID, "image_url": url})
			}
		}
		return nil, err
	}
	return stored, nil
}

func (s *ClosetService) analyzeDecoded(ctx context.Context, decoded image.Image) (*ai.ImageAnalysis, error) {
	prepared, err := imaging.AnalysisJPEG(decoded)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(ctx, prepared, "image/jpeg")
}

// categoryFor maps the analysed garment type onto a category, falling back to
// the first category in the catalog.
func (s *ClosetService) categoryFor(ctx context.Context, analysis *ai.ImageAnalysis) (*models.Category, error) {
	if analysis != nil && analysis.Category != "" {
		category, err := s.categories.GetByName(ctx, analysis.Category)
		if err != nil {
			return nil, err
		}
		if category != nil {
			return category, nil
		}
	}
	all, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, models.NewPreconditionFailedError("No categories are configured")
	}
	return &all[0], nil
}

func (s *ClosetService) lookupCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewFieldValidationError(models.FieldError{Field: "category_id", Message: "does not exist"})
		}
		return nil, err
	}
	return category, nil
}

func validateItemFields(v *validation.Errors, name, brand, color string, season models.Season, imageURL string, tags []string, price *int) {
	validation.Name(v, "name", name, 100)
	validation.Optional(v, "brand", brand, 100)
	validation.Name(v, "color", color, 50)
	validation.Season(v, "season", season)
	validation.URL(v, "image_url", imageURL)
	validation.NonNegative(v, "price", price)
	v.Check(len(tags) <= maxTags, "tags", "too many tags")
	for _, tag := range tags {
		if len(tag) > 50 {
			v.Add("tags", "tag is too long")
			break
		}
	}
}

// cleanTags trims, drops empties and removes duplicates while keeping order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
	}
	return out
}

func isImageInputError(err error) bool {
	return errors.Is(err, imaging.ErrEmpty) ||
		errors.Is(err, imaging.ErrUnsupported) ||
		errors.Is(err, imaging.ErrTooLarge) ||
		errors.Is(err, imaging.ErrMismatch)
}
