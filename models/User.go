package models

import "gorm.io/gorm"

// User represents an account that publishes recipes and authenticates with the platform.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:254;not null"`
	Username     string `gorm:"uniqueIndex;size:150;not null"`
	FirstName    string `gorm:"size:150;not null"`
	LastName     string `gorm:"size:150;not null"`
	PasswordHash string `gorm:"not null"`

	Recipes []Recipe `gorm:"foreignKey:AuthorID"`
}
