package models

import "time"

// Recipe is a dish published by its author, with tags and per-ingredient
// amounts held in the recipe_tags and ingredient_amounts tables.
type Recipe struct {
	ID          uint      `gorm:"primaryKey"`
	AuthorID    uint      `gorm:"not null;index"`
	Name        string    `gorm:"size:200;not null"`
	Text        string    `gorm:"type:text;not null"`
	Image       string    `gorm:"type:text;not null"`
	CookingTime int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time

	Author      *User              `gorm:"foreignKey:AuthorID"`
	Tags        []Tag              `gorm:"many2many:recipe_tags"`
	Ingredients []IngredientAmount `gorm:"foreignKey:RecipeID"`
}

// RecipeTag is the explicit join row between a recipe and one of its tags.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey;index"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}
