package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrSelfSubscription is returned when a user tries to follow themselves.
var ErrSelfSubscription = errors.New("models: user cannot subscribe to themselves")

// Subscription makes Follower receive Author's recipes in their feed.
type Subscription struct {
	ID         uint `gorm:"primaryKey"`
	FollowerID uint `gorm:"not null;uniqueIndex:idx_subscription_follower_author;check:chk_subscription_not_self,follower_id <> author_id"`
	AuthorID   uint `gorm:"not null;uniqueIndex:idx_subscription_follower_author;index"`
	CreatedAt  time.Time

	Author *User `gorm:"foreignKey:AuthorID"`
}

func (s *Subscription) BeforeCreate(*gorm.DB) error {
	if s.FollowerID == s.AuthorID {
		return ErrSelfSubscription
	}
	return nil
}
