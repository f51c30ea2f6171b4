package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"drobeo/internal/ai"
	"drobeo/internal/config"
	"drobeo/internal/featureflags"
	"drobeo/internal/models"
	"drobeo/internal/repository"
	"drobeo/internal/testutil"
	"drobeo/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type closetFixture struct {
	db      *gorm.DB
	svc     *ClosetService
	cats    []models.Category
	user    *models.User
	store   *ImageStore
	uploads string
}

func newClosetFixture(t *testing.T, analyzer ai.ImageAnalyzer, flags *featureflags.Manager) *closetFixture {
	t.Helper()
	db := testutil.NewDB(t)
	cats := testutil.SeedCategories(t, db)
	user := testutil.CreateUser(t, db)
	dir := t.TempDir()
	store := NewImageStore(&config.Config{ImageUploadDir: dir, ImageMaxUploadSizeMB: 1})
	svc := NewClosetService(
		repository.NewClothingItemRepository(db),
		repository.NewCategoryRepository(db),
		analyzer, store, flags,
	)
	return &closetFixture{db: db, svc: svc, cats: cats, user: user, store: store, uploads: dir}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: 40, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fixedAnalysis(a ai.ImageAnalysis) ai.ImageAnalyzer {
	return analyzerFunc(func(context.Context, []byte, string) (*ai.ImageAnalysis, error) {
		return &a, nil
	})
}

func failingAnalyzer() ai.ImageAnalyzer {
	return analyzerFunc(func(context.Context, []byte, string) (*ai.ImageAnalysis, error) {
		return nil, errors.New("vision model unavailable")
	})
}

func TestCloset_CreateRejectsServerFields(t *testing.T) {
	f := newClosetFixture(t, nil, nil)
	id := uint(99)
	worn := 5
	now := time.Now()

	_, err := f.svc.Create(context.Background(), f.user.ID, ItemInput{
		ServerAssigned: validation.ServerAssigned{ID: &id, CreatedAt: &now, TimesWorn: &worn, LastWorn: &now},
		CategoryID:     f.cats[0].ID,
		Name:           "Tee",
		Color:          "white",
		Season:         models.SeasonSummer,
	})
	assertValidationError(t, err)
	assert.ElementsMatch(t, []string{"id", "created_at", "times_worn", "last_worn"}, fieldNames(err))
}

func TestCloset_CreateValidation(t *testing.T) {
	f := newClosetFixture(t, nil, nil)
	negative := -1

	cases := map[string]struct {
		in    ItemInput
		field string
	}{
		"missing name":   {ItemInput{CategoryID: f.cats[0].ID, Color: "red", Season: models.SeasonAll}, "name"},
		"long name":      {ItemInput{CategoryID: f.cats[0].ID, Name: strings.Repeat("x", 101), Color: "red", Season: models.SeasonAll}, "name"},
		"missing color":  {ItemInput{CategoryID: f.cats[0].ID, Name: "Tee", Season: models.SeasonAll}, "color"},
		"bad season":     {ItemInput{CategoryID: f.cats[0].ID, Name: "Tee", Color: "red", Season: "monsoon"}, "season"},
		"negative price": {ItemInput{CategoryID: f.cats[0].ID, Name: "Tee", Color: "red", Season: models.SeasonAll, Price: &negative}, "price"},
		"bad image url":  {ItemInput{CategoryID: f.cats[0].ID, Name: "Tee", Color: "red", Season: models.SeasonAll, ImageURL: "ftp://x"}, "image_url"},
		"no category":    {ItemInput{Name: "Tee", Color: "red", Season: models.SeasonAll}, "category_id"},
		"ghost category": {ItemInput{CategoryID: 999, Name: "Tee", Color: "red", Season: models.SeasonAll}, "category_id"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.user.ID, tc.in)
			assertValidationError(t, err)
			assert.Contains(t, fieldNames(err), tc.field)
		})
	}
}

func TestCloset_CreateUpdateFavoriteWear(t *testing.T) {
	f := newClosetFixture(t, nil, nil)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, f.user.ID, ItemInput{
		CategoryID: f.cats[1].ID,
		Name:       " Chinos ",
		Color:      "khaki",
		Season:     models.SeasonAll,
		Tags:       []string{"work", " Work ", "", "cotton"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Chinos", item.Name)
	assert.Equal(t, []string{"work", "cotton"}, []string(item.Tags))
	assert.Equal(t, "Bottoms", item.CategoryName())

	newName := "Slim chinos"
	updated, err := f.svc.Update(ctx, f.user.ID, item.ID, ItemPatch{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Slim chinos", updated.Name)
	assert.Equal(t, "khaki", updated.Color)

	bad := models.Season("monsoon")
	_, err = f.svc.Update(ctx, f.user.ID, item.ID, ItemPatch{Season: &bad})
	assertValidationError(t, err)

	fav, err := f.svc.ToggleFavorite(ctx, f.user.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, fav.IsFavorite)

	worn, err := f.svc.Wear(ctx, f.user.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, worn.TimesWorn)
	assert.NotNil(t, worn.LastWorn)

	other := testutil.CreateUser(t, f.db)
	_, err = f.svc.Update(ctx, other.ID, item.ID, ItemPatch{Name: &newName})
	assertAppErrorCode(t, err, models.CodeNotFound)

	require.NoError(t, f.svc.Delete(ctx, f.user.ID, item.ID))
	assertAppErrorCode(t, f.svc.Delete(ctx, f.user.ID, item.ID), models.CodeNotFound)
}

func TestCloset_UploadFillsGapsFromAnalysis(t *testing.T) {
	f := newClosetFixture(t, fixedAnalysis(ai.ImageAnalysis{
		Category: "shoes", Color: "white", Style: "sporty", Season: models.SeasonSummer, Pattern: "solid",
	}), nil)

	item, err := f.svc.CreateFromUpload(context.Background(), f.user.ID, UploadInput{
		Content:     pngBytes(t, 64, 48),
		ContentType: "image/png",
		Item:        ItemInput{Name: "Runners"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Shoes", item.CategoryName())
	assert.Equal(t, "white", item.Color)
	assert.Equal(t, models.SeasonSummer, item.Season)
	assert.Equal(t, []string{"sporty", "solid"}, []string(item.Tags))

	require.True(t, strings.HasPrefix(item.ImageURL, MediaPrefix))
	stored := filepath.Join(f.uploads, strings.TrimPrefix(item.ImageURL, MediaPrefix))
	_, err = os.Stat(stored)
	assert.NoError(t, err)
}

func TestCloset_UploadCallerFieldsWin(t *testing.T) {
	f := newClosetFixture(t, fixedAnalysis(ai.ImageAnalysis{
		Category: "shoes", Color: "white", Style: "sporty", Season: models.SeasonSummer,
	}), nil)

	item, err := f.svc.CreateFromUpload(context.Background(), f.user.ID, UploadInput{
		Content:     pngBytes(t, 32, 32),
		ContentType: "image/png",
		Item: ItemInput{
			Name:       "Parka",
			CategoryID: f.cats[5].ID,
			Color:      "olive",
			Season:     models.SeasonWinter,
			Tags:       []string{"warm"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Outerwear", item.CategoryName())
	assert.Equal(t, "olive", item.Color)
	assert.Equal(t, models.SeasonWinter, item.Season)
	assert.Equal(t, []string{"warm"}, []string(item.Tags))
}

func TestCloset_UploadSurvivesAnalysisFailure(t *testing.T) {
	for name, f := range map[string]*closetFixture{
		"analyzer error": newClosetFixture(t, failingAnalyzer(), nil),
		"flag off":       newClosetFixture(t, fixedAnalysis(ai.ImageAnalysis{Category: "shoes"}), featureflags.NewManager("ai_image_analysis=off")),
	} {
		t.Run(name, func(t *testing.T) {
			item, err := f.svc.CreateFromUpload(context.Background(), f.user.ID, UploadInput{
				Content:     pngBytes(t, 16, 16),
				ContentType: "image/png",
				Item:        ItemInput{Name: "Mystery"},
			})
			require.NoError(t, err)
			assert.Equal(t, f.cats[0].ID, item.CategoryID)
			assert.Equal(t, "unknown", item.Color)
			assert.Equal(t, models.SeasonAll, item.Season)
			assert.Empty(t, item.Tags)
		})
	}
}

func TestCloset_UploadRejectsBadImages(t *testing.T) {
	f := newClosetFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.svc.CreateFromUpload(ctx, f.user.ID, UploadInput{Content: []byte("plain text"), ContentType: "text/plain", Item: ItemInput{Name: "X"}})
	assertValidationError(t, err)

	_, err = f.svc.CreateFromUpload(ctx, f.user.ID, UploadInput{Content: pngBytes(t, 8, 8), ContentType: "image/jpeg", Item: ItemInput{Name: "X"}})
	assertValidationError(t, err)

	_, err = f.svc.CreateFromUpload(ctx, f.user.ID, UploadInput{Content: pngBytes(t, 8, 8), ContentType: "image/png"})
	assertValidationError(t, err)

	big := make([]byte, 2*1024*1024)
	_, err = f.svc.CreateFromUpload(ctx, f.user.ID, UploadInput{Content: big, ContentType: "image/png", Item: ItemInput{Name: "X"}})
	assertValidationError(t, err)
}

func uploadedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCloset_UploadRejectsOversizedDimensions(t *testing.T) {
	called := false
	f := newClosetFixture(t, analyzerFunc(func(context.Context, []byte, string) (*ai.ImageAnalysis, error) {
		called = true
		return &ai.ImageAnalysis{}, nil
	}), nil)

	// 30000x30000 declared in the header of a tiny file.
	header := pngBytes(t, 1, 1)[:33]
	binary.BigEndian.PutUint32(header[16:20], 30000)
	binary.BigEndian.PutUint32(header[20:24], 30000)
	binary.BigEndian.PutUint32(header[29:33], crc32.ChecksumIEEE(header[12:29]))

	_, err := f.svc.CreateFromUpload(context.Background(), f.user.ID, UploadInput{
		Content:     header,
		ContentType: "image/png",
		Item:        ItemInput{Name: "Poster"},
	})
	assertValidationError(t, err)
	assert.Contains(t, err.Error(), "too large")
	assert.False(t, called)
	assert.Empty(t, uploadedFiles(t, f.uploads))

	_, err = f.svc.Analyze(context.Background(), f.user.ID, header, "image/png")
	assertValidationError(t, err)
	assert.False(t, called)
}

func TestCloset_UploadValidatesBeforeWriting(t *testing.T) {
	f := newClosetFixture(t, fixedAnalysis(ai.ImageAnalysis{Category: "shoes"}), nil)
	ctx := context.Background()
	content := pngBytes(t, 8, 8)

	for name, in := range map[string]ItemInput{
		"bad season":       {Name: "Boots", Season: models.Season("monsoon")},
		"unknown category": {Name: "Boots", CategoryID: 9999},
		"long color":       {Name: "Boots", Color: strings.Repeat("c", 60)},
	} {
		_, err := f.svc.CreateFromUpload(ctx, f.user.ID, UploadInput{Content: content, ContentType: "image/png", Item: in})
		assertValidationError(t, err)
		assert.Empty(t, uploadedFiles(t, f.uploads), name)
	}
}

func TestCloset_UploadRemovesImageWhenCreateFails(t *testing.T) {
	f := newClosetFixture(t, fixedAnalysis(ai.ImageAnalysis{Category: "shoes", Color: strings.Repeat("w", 60)}), nil)
	ctx := context.Background()

	_, err := f.svc.CreateFromUpload(ctx, f.user.ID, UploadInput{
		Content:     pngBytes(t, 8, 8),
		ContentType: "image/png",
		Item:        ItemInput{Name: "Sneakers"},
	})
	assertValidationError(t, err)
	assert.Empty(t, uploadedFiles(t, f.uploads))

	// An image already used by another item stays in place.
	kept, err := f.svc.CreateFromUpload(ctx, f.user.ID, UploadInput{
		Content:     pngBytes(t, 12, 12),
		ContentType: "image/png",
		Item:        ItemInput{Name: "Sneakers", Color: "white"},
	})
	require.NoError(t, err)
	_, err = f.svc.CreateFromUpload(ctx, f.user.ID, UploadInput{
		Content:     pngBytes(t, 12, 12),
		ContentType: "image/png",
		Item:        ItemInput{Name: "Sneakers"},
	})
	assertValidationError(t, err)
	assert.Equal(t, []string{strings.TrimPrefix(kept.ImageURL, MediaPrefix)}, uploadedFiles(t, f.uploads))
}

func TestCloset_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newClosetFixture(t, fixedAnalysis(ai.ImageAnalysis{Category: "tops", Color: "red", Confidence: 0.9}), nil)
		got, err := f.svc.Analyze(ctx, f.user.ID, pngBytes(t, 8, 8), "image/png")
		require.NoError(t, err)
		assert.Equal(t, "red", got.Color)
	})

	t.Run("model failure", func(t *testing.T) {
		f := newClosetFixture(t, failingAnalyzer(), nil)
		_, err := f.svc.Analyze(ctx, f.user.ID, pngBytes(t, 8, 8), "image/png")
		assertAppErrorCode(t, err, models.CodeAnalysisFailed)
	})

	t.Run("not an image", func(t *testing.T) {
		f := newClosetFixture(t, failingAnalyzer(), nil)
		_, err := f.svc.Analyze(ctx, f.user.ID, []byte("hello"), "text/plain")
		assertValidationError(t, err)
	})

	t.Run("disabled", func(t *testing.T) {
		f := newClosetFixture(t, failingAnalyzer(), featureflags.NewManager("ai_image_analysis=off"))
		_, err := f.svc.Analyze(ctx, f.user.ID, pngBytes(t, 8, 8), "image/png")
		assertAppErrorCode(t, err, models.CodePreconditionFailed)
	})
}

func TestCloset_RecentDefaults(t *testing.T) {
	t.Parallel()
	var gotLimit int
	items := noopItemRepo()
	items.recentFn = func(_ context.Context, _ uint, limit int) ([]models.ClothingItem, error) {
		gotLimit = limit
		return nil, nil
	}
	svc := NewClosetService(items, nil, nil, nil, nil)

	_, err := svc.Recent(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultRecentLimit, gotLimit)

	_, err = svc.Recent(context.Background(), 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, maxRecentLimit, gotLimit)
}

func TestCloset_ListRejectsBadSeason(t *testing.T) {
	t.Parallel()
	svc := NewClosetService(noopItemRepo(), nil, nil, nil, nil)
	_, err := svc.List(context.Background(), 1, models.ClothingItemFilter{Season: "monsoon"})
	assertValidationError(t, err)
}
