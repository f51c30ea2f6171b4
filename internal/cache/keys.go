package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	CategoriesKey   = "categories:all"
	UserStatsPrefix = "user:%d:stats"
)

const (
	CategoriesTTL = 30 * time.Minute
	UserStatsTTL  = 2 * time.Minute
)

func UserStatsKey(userID uint) string {
	return fmt.Sprintf(UserStatsPrefix, userID)
}

// InvalidateUserStats drops the cached dashboard counters for a user. Called
// after any write to the user's items, outfits, or wishlist.
func InvalidateUserStats(ctx context.Context, userID uint) {
	Invalidate(ctx, UserStatsKey(userID))
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoriesKey)
}
