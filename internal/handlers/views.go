package handlers

import (
	"context"

	"foodgram/internal/recipes"
	"foodgram/models"
)

type userView struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type ingredientAmountView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type recipeView struct {
	ID               uint                   `json:"id"`
	Tags             []models.Tag           `json:"tags"`
	Author           userView               `json:"author"`
	Ingredients      []ingredientAmountView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

type recipeShortView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type subscriptionView struct {
	userView
	Recipes      []recipeShortView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

func newUserView(user models.User, subscribed bool) userView {
	return userView{
		Email:        user.Email,
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

func viewShort(recipe models.Recipe) recipeShortView {
	return recipeShortView{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

// viewList builds the full representation of each recipe with the flags
// computed for viewer. Anonymous viewers always get false flags.
func viewList(ctx context.Context, viewer uint, list []models.Recipe) ([]recipeView, error) {
	recipeIDs := make([]uint, 0, len(list))
	authorIDs := make([]uint, 0, len(list))
	for _, recipe := range list {
		recipeIDs = append(recipeIDs, recipe.ID)
		authorIDs = append(authorIDs, recipe.AuthorID)
	}

	flags, err := toggles.RecipeFlags(ctx, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := toggles.Subscribed(ctx, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]recipeView, 0, len(list))
	for _, recipe := range list {
		view := recipeView{
			ID:               recipe.ID,
			Tags:             recipe.Tags,
			Ingredients:      make([]ingredientAmountView, 0, len(recipe.Ingredients)),
			IsFavorited:      flags[recipe.ID].Favorited,
			IsInShoppingCart: flags[recipe.ID].InCart,
			Name:             recipe.Name,
			Image:            recipe.Image,
			Text:             recipe.Text,
			CookingTime:      recipe.CookingTime,
		}
		if view.Tags == nil {
			view.Tags = []models.Tag{}
		}
		if recipe.Author != nil {
			view.Author = newUserView(*recipe.Author, subscribed[recipe.AuthorID])
		}
		for _, amount := range recipe.Ingredients {
			item := ingredientAmountView{ID: amount.IngredientID, Amount: amount.Amount}
			if amount.Ingredient != nil {
				item.Name = amount.Ingredient.Name
				item.MeasurementUnit = amount.Ingredient.MeasurementUnit
			}
			view.Ingredients = append(view.Ingredients, item)
		}
		views = append(views, view)
	}
	return views, nil
}

func viewDetail(ctx context.Context, viewer uint, recipe *models.Recipe) (recipeView, error) {
	views, err := viewList(ctx, viewer, []models.Recipe{*recipe})
	if err != nil {
		return recipeView{}, err
	}
	return views[0], nil
}

func viewUsers(ctx context.Context, viewer uint, users []models.User) ([]userView, error) {
	ids := make([]uint, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	subscribed, err := toggles.Subscribed(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}
	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, newUserView(user, subscribed[user.ID]))
	}
	return views, nil
}

// viewSubscriptions renders followed authors with up to limit of their
// newest recipes each. A limit of 0 means no limit.
func viewSubscriptions(ctx context.Context, viewer uint, authors []models.User, limit int) ([]subscriptionView, error) {
	ids := make([]uint, 0, len(authors))
	for _, author := range authors {
		ids = append(ids, author.ID)
	}
	subscribed, err := toggles.Subscribed(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}
	feeds, err := catalog.ByAuthors(ctx, ids, limit)
	if err != nil {
		return nil, err
	}

	views := make([]subscriptionView, 0, len(authors))
	for _, author := range authors {
		views = append(views, newSubscriptionView(author, subscribed[author.ID], feeds[author.ID]))
	}
	return views, nil
}

func newSubscriptionView(author models.User, subscribed bool, feed recipes.AuthorRecipes) subscriptionView {
	short := make([]recipeShortView, 0, len(feed.Recipes))
	for _, recipe := range feed.Recipes {
		short = append(short, viewShort(recipe))
	}
	return subscriptionView{
		userView:     newUserView(author, subscribed),
		Recipes:      short,
		RecipesCount: feed.Count,
	}
}
