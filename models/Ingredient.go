package models

import (
	"strings"

	"gorm.io/gorm"
)

// Ingredient is a product that recipes list in some quantity.
// Names are not unique; two records may share name and unit.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;not null;index" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null" json:"measurement_unit"`
	// SearchName is the Unicode-lowercased name that prefix search matches
	// against. SQLite's LOWER only folds ASCII.
	SearchName string `gorm:"size:200;not null;default:'';index" json:"-"`
}

// BeforeSave keeps SearchName in step with Name.
func (i *Ingredient) BeforeSave(*gorm.DB) error {
	i.SearchName = strings.ToLower(i.Name)
	return nil
}
