// Package recipes writes recipes together with their tag and ingredient sets
// and answers the recipe, tag and ingredient listing queries.
package recipes

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainerrors "foodgram/internal/errors"
	applog "foodgram/internal/log"
	"foodgram/internal/validation"
	"foodgram/models"
)

const (
	// MinValue is the lower bound for cooking_time and ingredient amounts.
	MinValue = 1
	// DefaultMaxValue is the upper bound used when none is configured.
	DefaultMaxValue = 32000

	boundedTag = "bounded"
)

// IngredientInput references an ingredient and the amount a recipe needs.
type IngredientInput struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"bounded"`
}

// RecipeInput is a create or replace submission. Tags and ingredients are
// always required; there is no partial update.
type RecipeInput struct {
	Ingredients []IngredientInput `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
	Tags        []uint            `json:"tags" validate:"required,min=1,unique,dive,required"`
	Image       string            `json:"image" validate:"required"`
	Name        string            `json:"name" validate:"required,max=200"`
	Text        string            `json:"text" validate:"required"`
	CookingTime int               `json:"cooking_time" validate:"bounded"`
}

// ValidatedRecipe is a RecipeInput that passed Composer.Validate.
type ValidatedRecipe struct {
	input RecipeInput
}

// Input returns the normalised submission.
func (v ValidatedRecipe) Input() RecipeInput {
	return v.input
}

// Composer creates, replaces and deletes recipes atomically.
type Composer struct {
	db        *gorm.DB
	catalog   *Catalog
	validator *validation.Validator
	maxValue  int
}

// NewComposer builds a Composer bounding cooking_time and amounts to
// [MinValue, maxValue]. A non-positive maxValue selects DefaultMaxValue.
func NewComposer(db *gorm.DB, maxValue int) *Composer {
	if maxValue < MinValue {
		maxValue = DefaultMaxValue
	}
	return &Composer{
		db:        db,
		catalog:   NewCatalog(db),
		validator: validation.New(validation.WithRange(boundedTag, MinValue, maxValue)),
		maxValue:  maxValue,
	}
}

// Validate checks every rule of a submission and reports all failing fields
// at once in a single INVALID_RECIPE_INPUT error.
func (c *Composer) Validate(ctx context.Context, input RecipeInput) (ValidatedRecipe, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Text = strings.TrimSpace(input.Text)
	input.Image = strings.TrimSpace(input.Image)

	details, err := c.validator.Fields(input)
	if err != nil {
		return ValidatedRecipe{}, domainerrors.Internal("unable to validate recipe", err)
	}
	if details == nil {
		details = map[string]string{}
	}

	if err := c.checkIngredientsExist(ctx, input.Ingredients, details); err != nil {
		return ValidatedRecipe{}, err
	}
	if err := c.checkTagsExist(ctx, input.Tags, details); err != nil {
		return ValidatedRecipe{}, err
	}

	if len(details) > 0 {
		applog.Debug(ctx, "recipe input rejected", "fields", len(details))
		return ValidatedRecipe{}, domainerrors.InvalidRecipeInput(details)
	}
	return ValidatedRecipe{input: input}, nil
}

func (c *Composer) checkIngredientsExist(ctx context.Context, ingredients []IngredientInput, details map[string]string) error {
	ids := make([]uint, 0, len(ingredients))
	for _, ingredient := range ingredients {
		if ingredient.ID != 0 {
			ids = append(ids, ingredient.ID)
		}
	}
	existing, err := c.existingIDs(ctx, &models.Ingredient{}, ids)
	if err != nil {
		return domainerrors.Internal("unable to check ingredients", err)
	}
	for i, ingredient := range ingredients {
		if ingredient.ID == 0 {
			continue
		}
		if _, ok := existing[ingredient.ID]; !ok {
			details[fmt.Sprintf("ingredients[%d].id", i)] = fmt.Sprintf("ingredient %d does not exist", ingredient.ID)
		}
	}
	return nil
}

func (c *Composer) checkTagsExist(ctx context.Context, tags []uint, details map[string]string) error {
	ids := make([]uint, 0, len(tags))
	for _, id := range tags {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	existing, err := c.existingIDs(ctx, &models.Tag{}, ids)
	if err != nil {
		return domainerrors.Internal("unable to check tags", err)
	}
	for i, id := range tags {
		if id == 0 {
			continue
		}
		if _, ok := existing[id]; !ok {
			details[fmt.Sprintf("tags[%d]", i)] = fmt.Sprintf("tag %d does not exist", id)
		}
	}
	return nil
}

func (c *Composer) existingIDs(ctx context.Context, model any, ids []uint) (map[uint]struct{}, error) {
	found := make(map[uint]struct{}, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var rows []uint
	if err := c.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &rows).Error; err != nil {
		return nil, err
	}
	for _, id := range rows {
		found[id] = struct{}{}
	}
	return found, nil
}

// Load returns the recipe with its author, tags and ingredient amounts.
func (c *Composer) Load(ctx context.Context, id uint) (*models.Recipe, error) {
	return c.catalog.Recipe(ctx, id)
}

// Create inserts the recipe, its ingredient amounts and its tag links in one
// transaction and returns the stored recipe.
func (c *Composer) Create(ctx context.Context, authorID uint, validated ValidatedRecipe) (*models.Recipe, error) {
	if authorID == 0 {
		return nil, domainerrors.ErrUnauthorized
	}
	input := validated.input

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		Text:        input.Text,
		Image:       input.Image,
		CookingTime: input.CookingTime,
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		return writeAssociations(tx, recipe.ID, input)
	})
	if err != nil {
		applog.Error(ctx, "failed to create recipe", "error", err, "author", authorID)
		return nil, domainerrors.Internal("unable to create recipe", err)
	}

	applog.Debug(ctx, "recipe created", "id", recipe.ID, "author", authorID)
	return c.catalog.Recipe(ctx, recipe.ID)
}

// Update replaces the scalar fields, tag set and ingredient set of recipe in
// one transaction. Readers see either the old or the new sets, never a mix.
func (c *Composer) Update(ctx context.Context, recipe *models.Recipe, validated ValidatedRecipe) (*models.Recipe, error) {
	if recipe == nil || recipe.ID == 0 {
		return nil, domainerrors.NotFound("recipe not found")
	}
	input := validated.input

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Recipe{ID: recipe.ID}).Updates(map[string]any{
			"name":         input.Name,
			"text":         input.Text,
			"image":        input.Image,
			"cooking_time": input.CookingTime,
		})
		if result.Error != nil {
			return fmt.Errorf("update recipe: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("clear recipe tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return fmt.Errorf("clear ingredient amounts: %w", err)
		}
		return writeAssociations(tx, recipe.ID, input)
	})
	if err != nil {
		if domainerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		applog.Error(ctx, "failed to update recipe", "error", err, "id", recipe.ID)
		return nil, domainerrors.Internal("unable to update recipe", err)
	}

	applog.Debug(ctx, "recipe updated", "id", recipe.ID)
	return c.catalog.Recipe(ctx, recipe.ID)
}

// Delete removes the recipe and every row that references it.
func (c *Composer) Delete(ctx context.Context, recipe *models.Recipe) error {
	if recipe == nil || recipe.ID == 0 {
		return domainerrors.NotFound("recipe not found")
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{
			&models.IngredientAmount{},
			&models.RecipeTag{},
			&models.Favorite{},
			&models.ShoppingCartEntry{},
		} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, recipe.ID).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete recipe", "error", err, "id", recipe.ID)
		return domainerrors.Internal("unable to delete recipe", err)
	}

	applog.Debug(ctx, "recipe deleted", "id", recipe.ID)
	return nil
}

func writeAssociations(tx *gorm.DB, recipeID uint, input RecipeInput) error {
	amounts := make([]models.IngredientAmount, 0, len(input.Ingredients))
	for _, ingredient := range input.Ingredients {
		amounts = append(amounts, models.IngredientAmount{
			RecipeID:     recipeID,
			IngredientID: ingredient.ID,
			Amount:       ingredient.Amount,
		})
	}
	if err := tx.Create(&amounts).Error; err != nil {
		return fmt.Errorf("insert ingredient amounts: %w", err)
	}

	links := make([]models.RecipeTag, 0, len(input.Tags))
	for _, tagID := range input.Tags {
		links = append(links, models.RecipeTag{RecipeID: recipeID, TagID: tagID})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("insert recipe tags: %w", err)
	}
	return nil
}

// Authorize checks that userID may modify recipe.
func Authorize(recipe *models.Recipe, userID uint) error {
	if userID == 0 {
		return domainerrors.ErrUnauthorized
	}
	if recipe.AuthorID != userID {
		return domainerrors.Forbidden("only the author can change this recipe")
	}
	return nil
}
