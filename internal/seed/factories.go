package seed

import (
	"fmt"
	"log"
	"time"

	"drobeo/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated demo account.
const DemoPassword = "Password123!"

var (
	garmentNames = map[string][]string{
		"Tops":        {"Oxford shirt", "Linen shirt", "Striped tee", "Merino sweater", "Silk blouse", "Polo"},
		"Bottoms":     {"Slim chinos", "Dark jeans", "Pleated trousers", "Denim shorts", "Midi skirt"},
		"Dresses":     {"Wrap dress", "Slip dress", "Shirt dress", "Knit dress"},
		"Shoes":       {"White sneakers", "Chelsea boots", "Suede loafers", "Running shoes", "Sandals"},
		"Accessories": {"Leather belt", "Wool scarf", "Canvas tote", "Aviator sunglasses", "Watch"},
		"Outerwear":   {"Trench coat", "Denim jacket", "Puffer jacket", "Wool overcoat", "Blazer"},
	}
	brands  = []string{"Uniqlo", "COS", "Everlane", "Levi's", "Patagonia", "Zara", "Arket", "Veja"}
	styles  = []string{"casual", "minimal", "classic", "sporty", "smart", "relaxed"}
	seasons = []models.Season{models.SeasonSpring, models.SeasonSummer, models.SeasonFall, models.SeasonWinter, models.SeasonAll}
)

// Factory builds wardrobe entities and persists them to the database.
// It backs the seed command and tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. A non-zero opts.RandSeed makes the
// generated data reproducible.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed), nextID: 1000}
}

func (f *Factory) persist(value any, id *uint, label string) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		log.Printf("[dry-run] %s #%d (no DB write)", label, *id)
		return nil
	}
	return f.db.Create(value).Error
}

// CreateUser persists a demo account with onboarding already completed.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	username := fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999))
	email := fmt.Sprintf("%s@demo.drobeo.app", username)

	user := &models.User{
		Username:           username,
		Email:              &email,
		Name:               first + " " + last,
		Avatar:             fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		OnboardingComplete: true,
		Preferences: datatypes.NewJSONType(models.Preferences{
			Styles:    []string{f.faker.RandomString(styles), f.faker.RandomString(styles)},
			Seasons:   []models.Season{seasons[f.faker.Number(0, len(seasons)-1)]},
			Occasions: []models.Occasion{models.OccasionWork, models.OccasionCasual},
		}),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = DemoPassword
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}
	if err := f.persist(user, &user.ID, "CreateUser "+user.Username); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildItem returns an unsaved clothing item of the given category.
func (f *Factory) BuildItem(user *models.User, category models.Category) *models.ClothingItem {
	names := garmentNames[category.Name]
	name := category.Name
	if len(names) > 0 {
		name = f.faker.RandomString(names)
	}

	item := &models.ClothingItem{
		UserID:     user.ID,
		CategoryID: category.ID,
		Name:       name,
		Brand:      f.faker.RandomString(brands),
		Color:      f.faker.SafeColor(),
		Season:     seasons[f.faker.Number(0, len(seasons)-1)],
		Tags:       datatypes.JSONSlice[string]{f.faker.RandomString(styles)},
		Price:      ptr(f.faker.Number(1500, 25000)),
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 180
	}
	if f.faker.Bool() {
		item.TimesWorn = f.faker.Number(1, 20)
		worn := time.Now().UTC().Add(-time.Duration(f.faker.Number(1, maxDays*24)) * time.Hour)
		item.LastWorn = &worn
	}
	if f.faker.Number(0, 3) == 0 {
		item.IsFavorite = true
	}
	return item
}

// CreateItems persists count items spread across categories.
func (f *Factory) CreateItems(user *models.User, categories []models.Category, count int) ([]models.ClothingItem, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories to build items from")
	}
	items := make([]models.ClothingItem, 0, count)
	for i := 0; i < count; i++ {
		item := f.BuildItem(user, categories[i%len(categories)])
		if err := f.persist(item, &item.ID, "CreateItem "+item.Name); err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// CreateOutfit persists a manual outfit made of items.
func (f *Factory) CreateOutfit(user *models.User, items []models.ClothingItem, occasion models.Occasion) (*models.Outfit, error) {
	ids := make(datatypes.JSONSlice[uint], 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	outfit := &models.Outfit{
		UserID:   user.ID,
		Name:     fmt.Sprintf("%s %s", f.faker.RandomString(styles), occasion),
		ItemIDs:  ids,
		Occasion: occasion,
		Rating:   f.faker.Number(3, 5),
	}
	if err := f.persist(outfit, &outfit.ID, "CreateOutfit "+outfit.Name); err != nil {
		return nil, err
	}
	return outfit, nil
}

// PlanOutfit puts outfit on the calendar daysAhead days from today.
func (f *Factory) PlanOutfit(user *models.User, outfit *models.Outfit, daysAhead int) (*models.OutfitCalendarEntry, error) {
	day := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, daysAhead)
	entry := &models.OutfitCalendarEntry{
		UserID:   user.ID,
		OutfitID: &outfit.ID,
		Date:     day,
		Occasion: outfit.Occasion,
		Notes:    f.faker.Sentence(6),
	}
	if err := f.persist(entry, &entry.ID, "PlanOutfit"); err != nil {
		return nil, err
	}
	return entry, nil
}

// CreateWishlistItem persists a wishlist entry in category.
func (f *Factory) CreateWishlistItem(user *models.User, category models.Category) (*models.WishlistItem, error) {
	item := &models.WishlistItem{
		UserID:     user.ID,
		CategoryID: category.ID,
		Name:       f.faker.RandomString(garmentNames[category.Name]),
		Brand:      f.faker.RandomString(brands),
		Price:      ptr(f.faker.Number(3000, 40000)),
		StoreURL:   f.faker.URL(),
		Priority:   f.faker.Number(1, 5),
	}
	if item.Name == "" {
		item.Name = category.Name
	}
	if err := f.persist(item, &item.ID, "CreateWishlistItem "+item.Name); err != nil {
		return nil, err
	}
	return item, nil
}

func ptr[T any](v T) *T { return &v }
