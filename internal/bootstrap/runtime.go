// Package bootstrap wires the database and cache every command needs.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"drobeo/internal/cache"
	"drobeo/internal/config"
	"drobeo/internal/database"
	"drobeo/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations according to DB_SCHEMA_MODE.
	ApplySchema bool
	// SeedCategories upserts the built-in category catalog.
	SeedCategories bool
}

// InitRuntime connects to DB and Redis, then optionally applies the schema and
// seeds the category catalog.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedCategories {
		categories, err := seed.Categories(db)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed categories: %w", err)
		}
		cache.InvalidateCategories(ctx)
		log.Printf("category catalog ready (%d categories)", len(categories))
	}

	return db, r, nil
}
