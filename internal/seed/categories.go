package seed

import (
	_ "embed"
	"fmt"

	"drobeo/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed categories.yaml
var catalogYAML []byte

// BuiltInCategory is one entry of the built-in wardrobe taxonomy.
type BuiltInCategory struct {
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"`
}

type catalog struct {
	Categories []BuiltInCategory `yaml:"categories"`
}

// BuiltInCategories returns the embedded catalog in seed order.
func BuiltInCategories() ([]BuiltInCategory, error) {
	return parseCatalog(catalogYAML)
}

func parseCatalog(raw []byte) ([]BuiltInCategory, error) {
	var c catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse category catalog: %w", err)
	}
	if len(c.Categories) == 0 {
		return nil, fmt.Errorf("category catalog is empty")
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("category catalog has an entry without a name")
		}
		if seen[cat.Name] {
			return nil, fmt.Errorf("category %q listed twice", cat.Name)
		}
		seen[cat.Name] = true
	}
	return c.Categories, nil
}

// Categories upserts the built-in categories. Running it again refreshes icons
// and colors without creating duplicates.
func Categories(db *gorm.DB) ([]models.Category, error) {
	builtIns, err := BuiltInCategories()
	if err != nil {
		return nil, err
	}

	out := make([]models.Category, 0, len(builtIns))
	for _, item := range builtIns {
		category := models.Category{Name: item.Name, Icon: item.Icon, Color: item.Color}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"icon", "color"}),
		}).Create(&category).Error; err != nil {
			return nil, fmt.Errorf("seed category %s: %w", item.Name, err)
		}
		// The upsert does not report the id of an existing row.
		var stored models.Category
		if err := db.Where("name = ?", item.Name).First(&stored).Error; err != nil {
			return nil, fmt.Errorf("reload category %s: %w", item.Name, err)
		}
		out = append(out, stored)
	}
	return out, nil
}
