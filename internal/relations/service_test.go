package relations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"foodgram/internal/db/dbtest"
	domainerrors "foodgram/internal/errors"
	"foodgram/models"
)

type fixture struct {
	db     *gorm.DB
	svc    *Service
	alice  models.User
	bob    models.User
	recipe models.Recipe
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{db: dbtest.Open(t)}
	f.svc = NewService(f.db)

	f.alice = models.User{Email: "alice@example.com", Username: "alice", FirstName: "Alice", LastName: "A", PasswordHash: "x"}
	f.bob = models.User{Email: "bob@example.com", Username: "bob", FirstName: "Bob", LastName: "B", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&f.alice).Error)
	require.NoError(t, f.db.Create(&f.bob).Error)

	f.recipe = models.Recipe{AuthorID: f.bob.ID, Name: "Soup", Text: "Boil.", Image: "img", CookingTime: 30}
	require.NoError(t, f.db.Create(&f.recipe).Error)
	return f
}

func TestRecipeRelationsAddRemoveSequence(t *testing.T) {
	for _, kind := range []Kind{Favorite, Cart} {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			require.NoError(t, f.svc.Add(ctx, kind, f.alice.ID, f.recipe.ID))

			err := f.svc.Add(ctx, kind, f.alice.ID, f.recipe.ID)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict), "second add: %v", err)

			require.NoError(t, f.svc.Remove(ctx, kind, f.alice.ID, f.recipe.ID))

			err = f.svc.Remove(ctx, kind, f.alice.ID, f.recipe.ID)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrNotInList), "second remove: %v", err)
		})
	}
}

func TestAddAndRemoveRequireExistingTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, kind := range []Kind{Favorite, Cart, Subscription} {
		assert.True(t, domainerrors.Is(f.svc.Add(ctx, kind, f.alice.ID, 999), domainerrors.ErrNotFound), kind.String())
		assert.True(t, domainerrors.Is(f.svc.Remove(ctx, kind, f.alice.ID, 999), domainerrors.ErrNotFound), kind.String())
	}
}

func TestAnonymousActorIsRejected(t *testing.T) {
	f := newFixture(t)

	assert.True(t, domainerrors.Is(f.svc.Add(context.Background(), Favorite, 0, f.recipe.ID), domainerrors.ErrUnauthorized))
	assert.True(t, domainerrors.Is(f.svc.Remove(context.Background(), Cart, 0, f.recipe.ID), domainerrors.ErrUnauthorized))
}

func TestSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.Add(ctx, Subscription, f.alice.ID, f.alice.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrSelfSubscription))

	require.NoError(t, f.svc.Add(ctx, Subscription, f.alice.ID, f.bob.ID))
	assert.True(t, domainerrors.Is(f.svc.Add(ctx, Subscription, f.alice.ID, f.bob.ID), domainerrors.ErrConflict))

	authors, err := f.svc.Subscriptions(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "bob", authors[0].Username)

	subscribed, err := f.svc.Subscribed(ctx, f.alice.ID, []uint{f.alice.ID, f.bob.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{f.bob.ID: true}, subscribed)

	require.NoError(t, f.svc.Remove(ctx, Subscription, f.alice.ID, f.bob.ID))
	assert.True(t, domainerrors.Is(f.svc.Remove(ctx, Subscription, f.alice.ID, f.bob.ID), domainerrors.ErrNotInList))
	assert.True(t, domainerrors.Is(f.svc.Remove(ctx, Subscription, f.alice.ID, f.alice.ID), domainerrors.ErrNotInList))
}

func TestSelfSubscriptionRejectedByModelHook(t *testing.T) {
	f := newFixture(t)

	err := f.db.Create(&models.Subscription{FollowerID: f.bob.ID, AuthorID: f.bob.ID}).Error
	assert.ErrorIs(t, err, models.ErrSelfSubscription)
}

// beforeFavoriteInsert runs fn once, right before the next favorite row is
// written, simulating a concurrent request that lands between the service's
// checks and its insert.
func beforeFavoriteInsert(t *testing.T, database *gorm.DB, fn func(tx *gorm.DB) error) {
	t.Helper()
	fired := false
	err := database.Callback().Create().Before("gorm:create").Register("test:interleave_favorite", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "favorites" {
			return
		}
		fired = true
		if err := fn(tx.Session(&gorm.Session{NewDB: true})); err != nil {
			t.Errorf("interleaved write: %v", err)
		}
	})
	require.NoError(t, err)
}

func countFavorites(t *testing.T, database *gorm.DB, userID, recipeID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, database.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error)
	return count
}

func TestConcurrentDuplicateAddReturnsConflict(t *testing.T) {
	f := newFixture(t)
	beforeFavoriteInsert(t, f.db, func(tx *gorm.DB) error {
		return tx.Create(&models.Favorite{UserID: f.alice.ID, RecipeID: f.recipe.ID}).Error
	})

	err := f.svc.Add(context.Background(), Favorite, f.alice.ID, f.recipe.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict), "add: %v", err)
	assert.EqualValues(t, 1, countFavorites(t, f.db, f.alice.ID, f.recipe.ID))
}

func TestAddDropsRowWhenTargetDeletedMeanwhile(t *testing.T) {
	f := newFixture(t)
	beforeFavoriteInsert(t, f.db, func(tx *gorm.DB) error {
		return tx.Delete(&models.Recipe{}, f.recipe.ID).Error
	})

	err := f.svc.Add(context.Background(), Favorite, f.alice.ID, f.recipe.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound), "add: %v", err)
	assert.Zero(t, countFavorites(t, f.db, f.alice.ID, f.recipe.ID))
}

func TestRecipeFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := models.Recipe{AuthorID: f.bob.ID, Name: "Salad", Text: "Chop.", Image: "img", CookingTime: 5}
	require.NoError(t, f.db.Create(&other).Error)

	require.NoError(t, f.svc.Add(ctx, Favorite, f.alice.ID, f.recipe.ID))
	require.NoError(t, f.svc.Add(ctx, Cart, f.alice.ID, f.recipe.ID))
	require.NoError(t, f.svc.Add(ctx, Cart, f.alice.ID, other.ID))

	flags, err := f.svc.RecipeFlags(ctx, f.alice.ID, []uint{f.recipe.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, RecipeFlags{Favorited: true, InCart: true}, flags[f.recipe.ID])
	assert.Equal(t, RecipeFlags{InCart: true}, flags[other.ID])

	flags, err = f.svc.RecipeFlags(ctx, f.bob.ID, []uint{f.recipe.ID, other.ID})
	require.NoError(t, err)
	assert.Empty(t, flags)

	flags, err = f.svc.RecipeFlags(ctx, 0, []uint{f.recipe.ID})
	require.NoError(t, err)
	assert.Empty(t, flags)

	subscribed, err := f.svc.Subscribed(ctx, 0, []uint{f.bob.ID})
	require.NoError(t, err)
	assert.Empty(t, subscribed)
}
