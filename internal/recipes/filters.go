package recipes

import (
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	domainerrors "foodgram/internal/errors"
)

// IngredientFilter narrows the ingredient listing.
type IngredientFilter struct {
	// NamePrefix matches the start of the name, ignoring case.
	NamePrefix string
}

// ParseIngredientFilter reads the "name" query parameter.
func ParseIngredientFilter(q url.Values) IngredientFilter {
	return IngredientFilter{NamePrefix: strings.TrimSpace(q.Get("name"))}
}

func (f IngredientFilter) Apply(query *gorm.DB) *gorm.DB {
	if f.NamePrefix == "" {
		return query
	}
	return query.Where("ingredients.search_name LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(f.NamePrefix))+"%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

// RecipeFilter narrows the recipe listing.
//
// Favorited and InCart restrict the listing to the viewer's own favorites and
// cart. They are ignored for anonymous viewers.
type RecipeFilter struct {
	AuthorID  uint
	TagSlugs  []string
	Favorited bool
	InCart    bool
}

// ParseRecipeFilter reads author, tags, is_favorited and is_in_shopping_cart.
// Tags may repeat or be comma separated.
func ParseRecipeFilter(q url.Values) (RecipeFilter, error) {
	var filter RecipeFilter

	if raw := strings.TrimSpace(q.Get("author")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return RecipeFilter{}, domainerrors.Validation("invalid query parameters", map[string]string{
				"author": "must be a positive integer",
			})
		}
		filter.AuthorID = uint(id)
	}

	seen := map[string]struct{}{}
	for _, value := range q["tags"] {
		for _, slug := range strings.Split(value, ",") {
			slug = strings.TrimSpace(slug)
			if slug == "" {
				continue
			}
			if _, ok := seen[slug]; ok {
				continue
			}
			seen[slug] = struct{}{}
			filter.TagSlugs = append(filter.TagSlugs, slug)
		}
	}

	filter.Favorited = truthy(q.Get("is_favorited"))
	filter.InCart = truthy(q.Get("is_in_shopping_cart"))
	return filter, nil
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Apply adds the filter conditions to a query over the recipes table.
func (f RecipeFilter) Apply(query *gorm.DB, viewerID uint) *gorm.DB {
	if f.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		query = query.Where(
			"recipes.id IN (SELECT recipe_tags.recipe_id FROM recipe_tags JOIN tags ON tags.id = recipe_tags.tag_id WHERE tags.slug IN ?)",
			f.TagSlugs,
		)
	}
	if viewerID == 0 {
		return query
	}
	if f.Favorited {
		query = query.Where("recipes.id IN (SELECT favorites.recipe_id FROM favorites WHERE favorites.user_id = ?)", viewerID)
	}
	if f.InCart {
		query = query.Where("recipes.id IN (SELECT shopping_cart_entries.recipe_id FROM shopping_cart_entries WHERE shopping_cart_entries.user_id = ?)", viewerID)
	}
	return query
}
