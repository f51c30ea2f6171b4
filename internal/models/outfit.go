package models

import (
	"time"

	"gorm.io/datatypes"
)

// AISuggestion keeps the generator's explanation for an AI-generated outfit.
type AISuggestion struct {
	StyleDescription string `json:"style_description"`
	Reasoning        string `json:"reasoning"`
}

// Outfit is an ordered combination of clothing items.
type Outfit struct {
	ID               uint                              `gorm:"primaryKey" json:"id"`
	UserID           uint                              `gorm:"not null;index" json:"user_id"`
	Name             string                            `gorm:"size:100;not null" json:"name"`
	ItemIDs          datatypes.JSONSlice[uint]         `gorm:"column:item_ids;not null" json:"item_ids"`
	Occasion         Occasion                          `gorm:"size:10;not null" json:"occasion"`
	WeatherCondition Weather                           `gorm:"size:10" json:"weather_condition,omitempty"`
	Rating           int                               `gorm:"not null;default:0" json:"rating"`
	IsFavorite       bool                              `gorm:"not null;default:false" json:"is_favorite"`
	TimesWorn        int                               `gorm:"not null;default:0" json:"times_worn"`
	LastWorn         *time.Time                        `json:"last_worn"`
	AIGenerated      bool                              `gorm:"column:ai_generated;not null;default:false" json:"ai_generated"`
	AISuggestionData *datatypes.JSONType[AISuggestion] `gorm:"column:ai_suggestion_data" json:"ai_suggestion_data,omitempty"`
	// Items is resolved from ItemIDs at read time and never persisted.
	Items     []ClothingItem `gorm:"-" json:"items,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SetSuggestion attaches generator metadata to the outfit.
func (o *Outfit) SetSuggestion(s AISuggestion) {
	data := datatypes.NewJSONType(s)
	o.AISuggestionData = &data
}

// OutfitFilter narrows an outfit listing. Nil/empty values are ignored.
type OutfitFilter struct {
	Occasion         Occasion
	WeatherCondition Weather
	AIGenerated      *bool
}
