package handlers

import (
	"net/http"

	domainerrors "foodgram/internal/errors"
	"foodgram/internal/recipes"
)

// ListTags lists every tag.
func ListTags(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}
	tags, err := catalog.Tags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// TagDetail serves GET /api/tags/{id}.
func TagDetail(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, domainerrors.NotFound("tag not found"))
		return
	}
	tag, err := catalog.Tag(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// ListIngredients lists ingredients whose name starts with the "name" query
// parameter, ignoring case.
func ListIngredients(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}
	ingredients, err := catalog.Ingredients(r.Context(), recipes.ParseIngredientFilter(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// IngredientDetail serves GET /api/ingredients/{id}.
func IngredientDetail(w http.ResponseWriter, r *http.Request) {
	if !available(w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, domainerrors.NotFound("ingredient not found"))
		return
	}
	ingredient, err := catalog.Ingredient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}
