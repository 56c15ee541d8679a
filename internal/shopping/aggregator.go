// Package shopping builds a user's combined ingredient list from the recipes
// in their shopping cart.
package shopping

import (
	"context"

	"gorm.io/gorm"

	domainerrors "foodgram/internal/errors"
	applog "foodgram/internal/log"
)

// Item is one line of the shopping list.
type Item struct {
	Name   string
	Unit   string
	Amount int64
}

// Aggregator builds a user's shopping list from the recipes in their cart.
type Aggregator struct {
	db *gorm.DB
}

// NewAggregator returns an Aggregator that queries db.
func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

type amountRow struct {
	Name   string
	Unit   string
	Amount int64
}

// Aggregate sums the amounts of every ingredient across the user's cart.
// Ingredients sharing a name and measurement unit are merged. Items keep the
// order in which they were first met, walking the cart in insertion order.
func (a *Aggregator) Aggregate(ctx context.Context, userID uint) ([]Item, error) {
	if userID == 0 {
		return nil, domainerrors.ErrUnauthorized
	}

	var rows []amountRow
	err := a.db.WithContext(ctx).
		Table("shopping_cart_entries").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, ingredient_amounts.amount AS amount").
		Joins("JOIN ingredient_amounts ON ingredient_amounts.recipe_id = shopping_cart_entries.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Order("shopping_cart_entries.id asc, ingredient_amounts.id asc").
		Scan(&rows).Error
	if err != nil {
		applog.Error(ctx, "failed to aggregate shopping cart", "error", err, "user", userID)
		return nil, domainerrors.Internal("unable to build shopping list", err)
	}

	type key struct{ name, unit string }
	index := make(map[key]int, len(rows))
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		k := key{row.Name, row.Unit}
		if i, ok := index[k]; ok {
			items[i].Amount += row.Amount
			continue
		}
		index[k] = len(items)
		items = append(items, Item{Name: row.Name, Unit: row.Unit, Amount: row.Amount})
	}

	applog.Debug(ctx, "shopping list aggregated", "user", userID, "items", len(items))
	return items, nil
}
