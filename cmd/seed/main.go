// Command main runs the database seeder for Drobeo.
package main

import (
	"context"
	"flag"
	"log"

	"drobeo/internal/bootstrap"
	"drobeo/internal/config"
	"drobeo/internal/database"
	"drobeo/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 5, "Number of demo users to create")
	itemsPerUser := flag.Int("items", 12, "Clothing items per demo user")
	shouldClean := flag.Bool("clean", false, "Remove user data before seeding (categories are kept)")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store demo passwords without hashing (tests only)")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 uses the clock)")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d items each, clean=%v\n", *numUsers, *itemsPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{ApplySchema: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("close database: %v", err)
		}
	}()

	summary, err := seed.Seed(db, seed.Options{
		NumUsers:     *numUsers,
		ItemsPerUser: *itemsPerUser,
		ShouldClean:  *shouldClean,
		SkipBcrypt:   *skipBcrypt,
		DryRun:       *dryRun,
		RandSeed:     *randSeed,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Done: %d categories, %d users, %d items, %d outfits, %d planned, %d wishlist",
		summary.Categories, summary.Users, summary.Items, summary.Outfits, summary.Planned, summary.Wishlist)
	if summary.Users > 0 {
		log.Printf("📧 All demo users have the password: %s", seed.DemoPassword)
	}
}
