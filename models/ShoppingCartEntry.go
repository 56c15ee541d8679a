package models

import "time"

// ShoppingCartEntry places a recipe in a user's shopping cart.
type ShoppingCartEntry struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index"`
	CreatedAt time.Time
}
