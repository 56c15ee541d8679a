package recipes

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domainerrors "foodgram/internal/errors"
	applog "foodgram/internal/log"
	"foodgram/models"
)

// Catalog answers read queries over recipes, tags and ingredients.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog returns a Catalog that reads from db.
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) withRelations(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags", func(tx *gorm.DB) *gorm.DB { return tx.Order("tags.id asc") }).
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB { return tx.Order("ingredient_amounts.id asc") }).
		Preload("Ingredients.Ingredient")
}

// Recipe loads one recipe with its author, tags and ingredient amounts.
func (c *Catalog) Recipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := c.withRelations(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		applog.Error(ctx, "failed to load recipe", "error", err, "id", id)
		return nil, domainerrors.Internal("unable to load recipe", err)
	}
	return &recipe, nil
}

// Recipes lists recipes matching filter, newest first.
func (c *Catalog) Recipes(ctx context.Context, filter RecipeFilter, viewerID uint) ([]models.Recipe, error) {
	var results []models.Recipe
	query := filter.Apply(c.withRelations(ctx).Model(&models.Recipe{}), viewerID).
		Order("recipes.created_at desc, recipes.id desc")
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		return nil, domainerrors.Internal("unable to load recipes", err)
	}
	return results, nil
}

// AuthorRecipes is an author's feed excerpt.
type AuthorRecipes struct {
	Recipes []models.Recipe
	Count   int64
}

// ByAuthors returns up to limit newest recipes per author and the author's
// recipe count. A positive limit also caps the count.
func (c *Catalog) ByAuthors(ctx context.Context, authorIDs []uint, limit int) (map[uint]AuthorRecipes, error) {
	feeds := make(map[uint]AuthorRecipes, len(authorIDs))
	if len(authorIDs) == 0 {
		return feeds, nil
	}

	type countRow struct {
		AuthorID uint
		Total    int64
	}
	var counts []countRow
	if err := c.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&counts).Error; err != nil {
		applog.Error(ctx, "failed to count author recipes", "error", err)
		return nil, domainerrors.Internal("unable to load subscriptions", err)
	}
	totals := make(map[uint]int64, len(counts))
	for _, row := range counts {
		totals[row.AuthorID] = row.Total
	}

	for _, authorID := range authorIDs {
		var recipes []models.Recipe
		query := c.db.WithContext(ctx).
			Where("author_id = ?", authorID).
			Order("created_at desc, id desc")
		if limit > 0 {
			query = query.Limit(limit)
		}
		if err := query.Find(&recipes).Error; err != nil {
			applog.Error(ctx, "failed to load author recipes", "error", err, "author", authorID)
			return nil, domainerrors.Internal("unable to load subscriptions", err)
		}

		total := totals[authorID]
		if limit > 0 && total > int64(limit) {
			total = int64(limit)
		}
		feeds[authorID] = AuthorRecipes{Recipes: recipes, Count: total}
	}
	return feeds, nil
}

// Tags lists every tag ordered by id.
func (c *Catalog) Tags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.db.WithContext(ctx).Order("id asc").Find(&tags).Error; err != nil {
		applog.Error(ctx, "failed to list tags", "error", err)
		return nil, domainerrors.Internal("unable to load tags", err)
	}
	return tags, nil
}

// Tag loads one tag by id, returning a NOT_FOUND error when it is missing.
func (c *Catalog) Tag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := c.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, domainerrors.Internal("unable to load tag", err)
	}
	return &tag, nil
}

// Ingredients lists ingredients matching filter ordered by name.
func (c *Catalog) Ingredients(ctx context.Context, filter IngredientFilter) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	query := filter.Apply(c.db.WithContext(ctx).Model(&models.Ingredient{})).Order("name asc, id asc")
	if err := query.Find(&ingredients).Error; err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		return nil, domainerrors.Internal("unable to load ingredients", err)
	}
	return ingredients, nil
}

func (c *Catalog) Ingredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := c.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("ingredient not found")
		}
		return nil, domainerrors.Internal("unable to load ingredient", err)
	}
	return &ingredient, nil
}
