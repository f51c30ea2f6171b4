// Package seed loads the built-in category catalog and generates demo
// wardrobes for development.
package seed

import (
	"fmt"
	"log"

	"drobeo/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers     int
	ItemsPerUser int
	ShouldClean  bool
	SkipBcrypt   bool
	DryRun       bool
	// MaxDays bounds how far back generated last-worn dates go.
	MaxDays  int
	RandSeed int64
}

// Summary counts what a Seed run created.
type Summary struct {
	Categories int
	Users      int
	Items      int
	Outfits    int
	Planned    int
	Wishlist   int
}

// Seed ensures the category catalog exists and, when opts.NumUsers > 0,
// creates demo users with a wardrobe, outfits, calendar plans and a wishlist.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	categories, err := Categories(db)
	if err != nil {
		return nil, err
	}
	summary := &Summary{Categories: len(categories)}
	log.Printf("✓ %d categories available", len(categories))

	if opts.ItemsPerUser <= 0 {
		opts.ItemsPerUser = 12
	}
	f := NewFactory(db, opts)
	for i := 0; i < opts.NumUsers; i++ {
		if err := seedWardrobe(f, categories, opts.ItemsPerUser, summary); err != nil {
			return summary, err
		}
	}
	if opts.NumUsers > 0 {
		log.Printf("✓ %d demo users with %d items, %d outfits, %d planned days and %d wishlist items",
			summary.Users, summary.Items, summary.Outfits, summary.Planned, summary.Wishlist)
	}
	return summary, nil
}

func seedWardrobe(f *Factory, categories []models.Category, itemCount int, summary *Summary) error {
	user, err := f.CreateUser()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	summary.Users++

	items, err := f.CreateItems(user, categories, itemCount)
	if err != nil {
		return fmt.Errorf("create items for %s: %w", user.Username, err)
	}
	summary.Items += len(items)

	byCategory := make(map[uint][]models.ClothingItem)
	for _, item := range items {
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], item)
	}

	// top + bottom + shoes when the wardrobe has them
	var pick []models.ClothingItem
	for _, name := range []string{"Tops", "Bottoms", "Shoes"} {
		for _, c := range categories {
			if c.Name == name && len(byCategory[c.ID]) > 0 {
				pick = append(pick, byCategory[c.ID][0])
			}
		}
	}
	if len(pick) == 0 {
		pick = items[:1]
	}

	for i, occasion := range []models.Occasion{models.OccasionWork, models.OccasionCasual} {
		outfit, err := f.CreateOutfit(user, pick, occasion)
		if err != nil {
			return fmt.Errorf("create outfit for %s: %w", user.Username, err)
		}
		summary.Outfits++

		if _, err := f.PlanOutfit(user, outfit, i+1); err != nil {
			return fmt.Errorf("plan outfit for %s: %w", user.Username, err)
		}
		summary.Planned++
	}

	if _, err := f.CreateWishlistItem(user, categories[len(categories)-1]); err != nil {
		return fmt.Errorf("create wishlist item for %s: %w", user.Username, err)
	}
	summary.Wishlist++
	return nil
}

// clearData removes user-owned data. Categories stay.
func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE outfit_calendar_entries, wishlist_items, outfits, clothing_items, phone_verifications, users RESTART IDENTITY CASCADE`).Error
	}
	for _, table := range []string{"outfit_calendar_entries", "wishlist_items", "outfits", "clothing_items", "phone_verifications", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
