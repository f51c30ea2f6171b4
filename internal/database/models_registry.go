package database

import "drobeo/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.ClothingItem{},
		&models.Outfit{},
		&models.OutfitCalendarEntry{},
		&models.WishlistItem{},
		&models.PhoneVerification{},
	}
}
