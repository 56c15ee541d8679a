package models

import "time"

// Favorite marks a recipe as favorited by a user.
type Favorite struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	CreatedAt time.Time
}
