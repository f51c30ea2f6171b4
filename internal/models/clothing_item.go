package models

import (
	"time"

	"gorm.io/datatypes"
)

// ClothingItem is a single piece of a user's wardrobe.
type ClothingItem struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	UserID       uint                        `gorm:"not null;index" json:"user_id"`
	CategoryID   uint                        `gorm:"not null;index" json:"category_id"`
	Category     *Category                   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name         string                      `gorm:"size:100;not null" json:"name"`
	Brand        string                      `gorm:"size:100" json:"brand,omitempty"`
	Color        string                      `gorm:"size:50;not null" json:"color"`
	Season       Season                      `gorm:"size:10;not null" json:"season"`
	ImageURL     string                      `gorm:"type:text" json:"image_url,omitempty"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	PurchaseDate *time.Time                  `json:"purchase_date,omitempty"`
	// Price is stored in cents.
	Price      *int       `json:"price,omitempty"`
	IsFavorite bool       `gorm:"not null;default:false" json:"is_favorite"`
	TimesWorn  int        `gorm:"not null;default:0" json:"times_worn"`
	LastWorn   *time.Time `json:"last_worn"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CategoryName returns the preloaded category label, if any.
func (i *ClothingItem) CategoryName() string {
	if i.Category == nil {
		return ""
	}
	return i.Category.Name
}

// ClothingItemFilter narrows a wardrobe listing. Zero values are ignored.
type ClothingItemFilter struct {
	CategoryID uint
	Season     Season
	Color      string
	Search     string
}
