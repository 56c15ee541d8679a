package models

// IngredientAmount records how much of an ingredient a recipe requires.
// A recipe lists each ingredient at most once.
type IngredientAmount struct {
	ID           uint `gorm:"primaryKey"`
	RecipeID     uint `gorm:"not null;uniqueIndex:idx_ingredient_amount_recipe_ingredient"`
	IngredientID uint `gorm:"not null;uniqueIndex:idx_ingredient_amount_recipe_ingredient"`
	Amount       int  `gorm:"not null"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID"`
}
