package models

import "time"

// OutfitCalendarEntry pins a planned day for a user. The outfit is optional,
// and several entries may share the same date.
type OutfitCalendarEntry struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index:idx_calendar_user_date" json:"user_id"`
	OutfitID         *uint     `gorm:"index" json:"outfit_id,omitempty"`
	Outfit           *Outfit   `gorm:"foreignKey:OutfitID;constraint:OnDelete:SET NULL" json:"outfit,omitempty"`
	Date             time.Time `gorm:"type:date;not null;index:idx_calendar_user_date" json:"date"`
	Occasion         Occasion  `gorm:"size:10" json:"occasion,omitempty"`
	WeatherCondition Weather   `gorm:"size:10" json:"weather_condition,omitempty"`
	Notes            string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// WishlistItem is something the user would like to buy.
type WishlistItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Brand      string    `gorm:"size:100" json:"brand,omitempty"`
	// Price is stored in cents.
	Price     *int      `json:"price,omitempty"`
	StoreURL  string    `gorm:"type:text" json:"store_url,omitempty"`
	ImageURL  string    `gorm:"type:text" json:"image_url,omitempty"`
	Priority  int       `gorm:"not null;default:3" json:"priority"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserStats is computed on demand from the wardrobe, outfits and wishlist.
type UserStats struct {
	TotalItems          int64 `json:"total_items"`
	OutfitsCreated      int64 `json:"outfits_created"`
	ItemsWornPercentage int   `json:"items_worn_percentage"`
	WishlistItems       int64 `json:"wishlist_items"`
}

// PhoneVerification is a one-time login code sent by SMS. Only a bcrypt hash
// of the code is stored.
type PhoneVerification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PhoneNumber string     `gorm:"size:20;not null;index" json:"phone_number"`
	CodeHash    string     `gorm:"not null" json:"-"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	Consumed    bool       `gorm:"not null;default:false" json:"consumed"`
	ConsumedAt  *time.Time `json:"consumed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
