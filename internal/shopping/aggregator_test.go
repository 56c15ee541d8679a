package shopping

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

func seedRecipe(t *testing.T, db *gorm.DB, authorID uint, name string, amounts map[uint]int) models.Recipe {
	t.Helper()
	recipe := models.Recipe{AuthorID: authorID, Name: name, Text: "text", Image: "img", CookingTime: 10}
	require.NoError(t, db.Create(&recipe).Error)
	for ingredientID, amount := range amounts {
		require.NoError(t, db.Create(&models.IngredientAmount{RecipeID: recipe.ID, IngredientID: ingredientID, Amount: amount}).Error)
	}
	return recipe
}

func TestAggregateMergesSameNameAndUnit(t *testing.T) {
	db := dbtest.Open(t)

	user := models.User{Email: "cook@example.com", Username: "cook", FirstName: "C", LastName: "Cook", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	sugar := models.Ingredient{Name: "Sugar", MeasurementUnit: "g"}
	flour := models.Ingredient{Name: "Flour", MeasurementUnit: "g"}
	sugarSpoons := models.Ingredient{Name: "Sugar", MeasurementUnit: "tbsp"}
	for _, ingredient := range []*models.Ingredient{&sugar, &flour, &sugarSpoons} {
		require.NoError(t, db.Create(ingredient).Error)
	}

	first := seedRecipe(t, db, user.ID, "First", map[uint]int{sugar.ID: 10})
	second := seedRecipe(t, db, user.ID, "Second", map[uint]int{sugar.ID: 5})
	third := seedRecipe(t, db, user.ID, "Third", map[uint]int{flour.ID: 200})
	fourth := seedRecipe(t, db, user.ID, "Fourth", map[uint]int{sugarSpoons.ID: 2})

	for _, recipe := range []models.Recipe{first, second, third, fourth} {
		require.NoError(t, db.Create(&models.ShoppingCartEntry{UserID: user.ID, RecipeID: recipe.ID}).Error)
	}

	items, err := NewAggregator(db).Aggregate(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []Item{
		{Name: "Sugar", Unit: "g", Amount: 15},
		{Name: "Flour", Unit: "g", Amount: 200},
		{Name: "Sugar", Unit: "tbsp", Amount: 2},
	}, items)
}

func TestAggregateMergesDistinctIngredientRowsWithSameText(t *testing.T) {
	db := dbtest.Open(t)

	user := models.User{Email: "cook@example.com", Username: "cook", FirstName: "C", LastName: "Cook", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	salt := models.Ingredient{Name: "Salt", MeasurementUnit: "g"}
	saltAgain := models.Ingredient{Name: "Salt", MeasurementUnit: "g"}
	require.NoError(t, db.Create(&salt).Error)
	require.NoError(t, db.Create(&saltAgain).Error)

	recipe := seedRecipe(t, db, user.ID, "Soup", map[uint]int{salt.ID: 3, saltAgain.ID: 4})
	require.NoError(t, db.Create(&models.ShoppingCartEntry{UserID: user.ID, RecipeID: recipe.ID}).Error)

	items, err := NewAggregator(db).Aggregate(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []Item{{Name: "Salt", Unit: "g", Amount: 7}}, items)
}

func TestAggregateEmptyCart(t *testing.T) {
	db := dbtest.Open(t)

	items, err := NewAggregator(db).Aggregate(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = NewAggregator(db).Aggregate(context.Background(), 0)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}
