package handlers

import (
	"net/http"

	domainerrors "foodgram/internal/errors"
	applog "foodgram/internal/log"
	"foodgram/internal/recipes"
	"foodgram/internal/relations"
	"foodgram/internal/views/shoppinglist"
)

const shoppingListFilename = "shopping_list.txt"

// ListRecipes lists recipes newest first, narrowed by the author, tags,
// is_favorited and is_in_shopping_cart query parameters.
func ListRecipes(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	filter, err := recipes.ParseRecipeFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	viewer := viewerID(r)
	list, err := catalog.Recipes(r.Context(), filter, viewer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := viewList(r.Context(), viewer, list)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// RecipeDetail serves GET /api/recipes/{id} with the viewer's flags.
func RecipeDetail(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, domainerrors.NotFound("recipe not found"))
		return
	}
	recipe, err := composer.Load(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := viewDetail(r.Context(), viewerID(r), recipe)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func decodeRecipeInput(r *http.Request) (recipes.RecipeInput, error) {
	var input recipes.RecipeInput
	if err := decodeJSON(r, &input); err != nil {
		var domainErr *domainerrors.Error
		if domainerrors.As(err, &domainErr) {
			return input, domainerrors.InvalidRecipeInput(domainErr.Details)
		}
		return input, err
	}
	return input, nil
}

// CreateRecipe publishes a recipe authored by the requesting user.
func CreateRecipe(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, r, domainerrors.ErrUnauthorized)
		return
	}

	input, err := decodeRecipeInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	validated, err := composer.Validate(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	recipe, err := composer.Create(r.Context(), userID, validated)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := viewDetail(r.Context(), userID, recipe)
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.Debug(r.Context(), "recipe published", "id", recipe.ID, "author", userID)
	writeJSON(w, http.StatusCreated, view)
}

// UpdateRecipe replaces a recipe. Both PUT and PATCH require the full tag and
// ingredient sets.
func UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	userID := viewerID(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, domainerrors.NotFound("recipe not found"))
		return
	}
	recipe, err := composer.Load(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := recipes.Authorize(recipe, userID); err != nil {
		writeError(w, r, err)
		return
	}

	input, err := decodeRecipeInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	validated, err := composer.Validate(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := composer.Update(r.Context(), recipe, validated)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := viewDetail(r.Context(), userID, updated)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteRecipe removes a recipe owned by the current user and answers 204.
func DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, domainerrors.NotFound("recipe not found"))
		return
	}
	recipe, err := composer.Load(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := recipes.Authorize(recipe, viewerID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	if err := composer.Delete(r.Context(), recipe); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func AddFavorite(w http.ResponseWriter, r *http.Request) {
	toggleRecipe(w, r, relations.Favorite)
}

func RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	toggleRemove(w, r, relations.Favorite, "recipe not found")
}

func AddToShoppingCart(w http.ResponseWriter, r *http.Request) {
	toggleRecipe(w, r, relations.Cart)
}

func RemoveFromShoppingCart(w http.ResponseWriter, r *http.Request) {
	toggleRemove(w, r, relations.Cart, "recipe not found")
}

func toggleRecipe(w http.ResponseWriter, r *http.Request, kind relations.Kind) {
	if !available(w, r) {
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, r, domainerrors.ErrUnauthorized)
		return
	}
	recipeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, domainerrors.NotFound("recipe not found"))
		return
	}
	if err := toggles.Add(r.Context(), kind, userID, recipeID); err != nil {
		writeError(w, r, err)
		return
	}
	recipe, err := composer.Load(r.Context(), recipeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewShort(*recipe))
}

// DownloadShoppingCart sends the merged ingredient list of the user's cart as
// a plain text attachment.
func DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, r, domainerrors.ErrUnauthorized)
		return
	}
	items, err := aggregator.Aggregate(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	if err := shoppinglist.Component(shoppingListHeader, items).Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render shopping list", "error", err)
	}
}
