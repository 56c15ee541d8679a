package models

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Tag is a recipe category such as "breakfast" or "dinner".
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:200;not null" json:"name"`
	Color string `gorm:"size:7;not null" json:"color"`
	Slug  string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
}

// ValidSlug reports whether slug is URL-safe.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// BeforeSave rejects tags whose slug is not URL-safe.
func (t *Tag) BeforeSave(*gorm.DB) error {
	t.Slug = strings.TrimSpace(t.Slug)
	if !ValidSlug(t.Slug) {
		return fmt.Errorf("tag slug %q must match %s", t.Slug, slugPattern.String())
	}
	return nil
}
