// Package relations adds and removes the per-user favorite, shopping cart and
// subscription rows, and answers the flag lookups response builders need.
package relations

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domainerrors "foodgram/internal/errors"
	applog "foodgram/internal/log"
	"foodgram/models"
)

// Kind selects the relation being toggled.
type Kind int

const (
	Favorite Kind = iota
	Cart
	Subscription
)

func (k Kind) String() string {
	switch k {
	case Favorite:
		return "favorite"
	case Cart:
		return "shopping_cart"
	case Subscription:
		return "subscription"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// relation describes how a kind is stored.
type relation struct {
	model       func(actorID, targetID uint) any
	actorCol    string
	targetCol   string
	target      any
	targetLabel string
	addedMsg    string
	missingMsg  string
}

var relationsByKind = map[Kind]relation{
	Favorite: {
		model: func(actorID, targetID uint) any {
			return &models.Favorite{UserID: actorID, RecipeID: targetID}
		},
		actorCol:    "user_id",
		targetCol:   "recipe_id",
		target:      &models.Recipe{},
		targetLabel: "recipe",
		addedMsg:    "recipe is already in favorites",
		missingMsg:  "recipe is not in favorites",
	},
	Cart: {
		model: func(actorID, targetID uint) any {
			return &models.ShoppingCartEntry{UserID: actorID, RecipeID: targetID}
		},
		actorCol:    "user_id",
		targetCol:   "recipe_id",
		target:      &models.Recipe{},
		targetLabel: "recipe",
		addedMsg:    "recipe is already in the shopping cart",
		missingMsg:  "recipe is not in the shopping cart",
	},
	Subscription: {
		model: func(actorID, targetID uint) any {
			return &models.Subscription{FollowerID: actorID, AuthorID: targetID}
		},
		actorCol:    "follower_id",
		targetCol:   "author_id",
		target:      &models.User{},
		targetLabel: "user",
		addedMsg:    "already subscribed to this author",
		missingMsg:  "not subscribed to this author",
	},
}

// RecipeFlags are the viewer-relative flags of one recipe.
type RecipeFlags struct {
	Favorited bool
	InCart    bool
}

// Service toggles relations between users and recipes or authors.
type Service struct {
	db *gorm.DB
}

// NewService returns a Service that reads and writes through db.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func lookup(kind Kind) (relation, error) {
	rel, ok := relationsByKind[kind]
	if !ok {
		return relation{}, domainerrors.Internal("unknown relation", fmt.Errorf("relations: %s", kind))
	}
	return rel, nil
}

func (s *Service) targetExists(ctx context.Context, rel relation, targetID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(rel.target).Where("id = ?", targetID).Count(&count).Error; err != nil {
		return domainerrors.Internal("unable to load "+rel.targetLabel, err)
	}
	if count == 0 {
		return domainerrors.NotFound(rel.targetLabel + " not found")
	}
	return nil
}

func (s *Service) pair(ctx context.Context, rel relation, actorID, targetID uint) *gorm.DB {
	return s.db.WithContext(ctx).Model(rel.model(0, 0)).
		Where(rel.actorCol+" = ? AND "+rel.targetCol+" = ?", actorID, targetID)
}

func (s *Service) pairExists(ctx context.Context, rel relation, actorID, targetID uint) (bool, error) {
	var count int64
	err := s.pair(ctx, rel, actorID, targetID).Count(&count).Error
	return count > 0, err
}

// Add creates the (actor, target) relation of the given kind.
func (s *Service) Add(ctx context.Context, kind Kind, actorID, targetID uint) error {
	if actorID == 0 {
		return domainerrors.ErrUnauthorized
	}
	rel, err := lookup(kind)
	if err != nil {
		return err
	}
	if err := s.targetExists(ctx, rel, targetID); err != nil {
		return err
	}
	if kind == Subscription && actorID == targetID {
		return domainerrors.ErrSelfSubscription
	}

	exists, err := s.pairExists(ctx, rel, actorID, targetID)
	if err != nil {
		return domainerrors.Internal("unable to check "+kind.String(), err)
	}
	if exists {
		return domainerrors.Conflict(rel.addedMsg)
	}

	if err := s.db.WithContext(ctx).Create(rel.model(actorID, targetID)).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return domainerrors.Conflict(rel.addedMsg)
		case errors.Is(err, models.ErrSelfSubscription):
			return domainerrors.ErrSelfSubscription
		}
		applog.Error(ctx, "failed to add relation", "error", err, "kind", kind, "actor", actorID, "target", targetID)
		return domainerrors.Internal("unable to save "+kind.String(), err)
	}

	// Foreign keys are not enforced, so a target deleted after the check above
	// would leave an orphan row behind.
	if err := s.targetExists(ctx, rel, targetID); err != nil {
		if cleanupErr := s.pair(ctx, rel, actorID, targetID).Delete(rel.model(0, 0)).Error; cleanupErr != nil {
			applog.Error(ctx, "failed to remove orphaned relation", "error", cleanupErr, "kind", kind, "actor", actorID, "target", targetID)
		}
		return err
	}

	applog.Debug(ctx, "relation added", "kind", kind, "actor", actorID, "target", targetID)
	return nil
}

// Remove deletes the (actor, target) relation of the given kind.
func (s *Service) Remove(ctx context.Context, kind Kind, actorID, targetID uint) error {
	if actorID == 0 {
		return domainerrors.ErrUnauthorized
	}
	rel, err := lookup(kind)
	if err != nil {
		return err
	}
	if err := s.targetExists(ctx, rel, targetID); err != nil {
		return err
	}

	result := s.pair(ctx, rel, actorID, targetID).Delete(rel.model(0, 0))
	if result.Error != nil {
		applog.Error(ctx, "failed to remove relation", "error", result.Error, "kind", kind, "actor", actorID, "target", targetID)
		return domainerrors.Internal("unable to remove "+kind.String(), result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.NotInList(rel.missingMsg)
	}

	applog.Debug(ctx, "relation removed", "kind", kind, "actor", actorID, "target", targetID)
	return nil
}

// RecipeFlags reports, for each recipe id, whether the viewer favorited it
// or has it in their cart. Ids without any flag are absent from the map.
func (s *Service) RecipeFlags(ctx context.Context, viewerID uint, recipeIDs []uint) (map[uint]RecipeFlags, error) {
	flags := make(map[uint]RecipeFlags, len(recipeIDs))
	if viewerID == 0 || len(recipeIDs) == 0 {
		return flags, nil
	}

	var favorited, inCart []uint
	if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
		Pluck("recipe_id", &favorited).Error; err != nil {
		return nil, domainerrors.Internal("unable to load favorites", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.ShoppingCartEntry{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
		Pluck("recipe_id", &inCart).Error; err != nil {
		return nil, domainerrors.Internal("unable to load shopping cart", err)
	}

	for _, id := range favorited {
		f := flags[id]
		f.Favorited = true
		flags[id] = f
	}
	for _, id := range inCart {
		f := flags[id]
		f.InCart = true
		flags[id] = f
	}
	return flags, nil
}

// Subscribed reports which of authorIDs the viewer follows.
func (s *Service) Subscribed(ctx context.Context, viewerID uint, authorIDs []uint) (map[uint]bool, error) {
	subscribed := make(map[uint]bool, len(authorIDs))
	if viewerID == 0 || len(authorIDs) == 0 {
		return subscribed, nil
	}

	var followed []uint
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND author_id IN ?", viewerID, authorIDs).
		Pluck("author_id", &followed).Error; err != nil {
		return nil, domainerrors.Internal("unable to load subscriptions", err)
	}
	for _, id := range followed {
		subscribed[id] = true
	}
	return subscribed, nil
}

// Subscriptions lists the authors the user follows, most recent first.
func (s *Service) Subscriptions(ctx context.Context, followerID uint) ([]models.User, error) {
	if followerID == 0 {
		return nil, domainerrors.ErrUnauthorized
	}
	var subs []models.Subscription
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Where("follower_id = ?", followerID).
		Order("created_at desc, id desc").
		Find(&subs).Error; err != nil {
		applog.Error(ctx, "failed to list subscriptions", "error", err, "follower", followerID)
		return nil, domainerrors.Internal("unable to load subscriptions", err)
	}
	authors := make([]models.User, 0, len(subs))
	for _, sub := range subs {
		if sub.Author != nil {
			authors = append(authors, *sub.Author)
		}
	}
	return authors, nil
}
