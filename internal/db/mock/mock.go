package mock

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodgram/internal/db"
	applog "foodgram/internal/log"
	"foodgram/models"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "foodgram-demo"

// New returns an in-memory sqlite database seeded with representative recipes.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:foodgram-mock?mode=memory&cache=shared"), db.GormConfig(logger.Silent))
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	var existing int64
	if err := database.WithContext(ctx).Model(&models.User{}).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing == 0 {
		if err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return seed(ctx, tx)
		}); err != nil {
			return nil, err
		}
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, tx *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	anna := &models.User{
		Email:        "anna@foodgram.app",
		Username:     "anna",
		FirstName:    "Anna",
		LastName:     "Petrova",
		PasswordHash: string(password),
	}
	boris := &models.User{
		Email:        "boris@foodgram.app",
		Username:     "boris",
		FirstName:    "Boris",
		LastName:     "Ivanov",
		PasswordHash: string(password),
	}
	for _, user := range []*models.User{anna, boris} {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
	}

	breakfast := models.Tag{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"}
	lunch := models.Tag{Name: "Обед", Color: "#49B64E", Slug: "lunch"}
	dinner := models.Tag{Name: "Ужин", Color: "#8775D2", Slug: "dinner"}
	for _, tag := range []*models.Tag{&breakfast, &lunch, &dinner} {
		if err := tx.Create(tag).Error; err != nil {
			return err
		}
	}

	sugar := models.Ingredient{Name: "сахар", MeasurementUnit: "г"}
	flour := models.Ingredient{Name: "мука", MeasurementUnit: "г"}
	eggs := models.Ingredient{Name: "яйца", MeasurementUnit: "шт."}
	milk := models.Ingredient{Name: "молоко", MeasurementUnit: "мл"}
	beet := models.Ingredient{Name: "свёкла", MeasurementUnit: "г"}
	for _, ingredient := range []*models.Ingredient{&sugar, &flour, &eggs, &milk, &beet} {
		if err := tx.Create(ingredient).Error; err != nil {
			return err
		}
	}

	recipes := []struct {
		recipe  models.Recipe
		tags    []models.Tag
		amounts []models.IngredientAmount
	}{
		{
			recipe: models.Recipe{
				AuthorID:    anna.ID,
				Name:        "Блины",
				Text:        "Смешать муку, яйца и молоко, жарить на сковороде.",
				Image:       "recipes/images/pancakes.jpg",
				CookingTime: 30,
			},
			tags:    []models.Tag{breakfast},
			amounts: []models.IngredientAmount{
				{IngredientID: flour.ID, Amount: 200},
				{IngredientID: eggs.ID, Amount: 2},
				{IngredientID: milk.ID, Amount: 500},
				{IngredientID: sugar.ID, Amount: 20},
			},
		},
		{
			recipe: models.Recipe{
				AuthorID:    boris.ID,
				Name:        "Борщ",
				Text:        "Сварить бульон, добавить свёклу и овощи.",
				Image:       "recipes/images/borscht.jpg",
				CookingTime: 120,
			},
			tags:    []models.Tag{lunch, dinner},
			amounts: []models.IngredientAmount{
				{IngredientID: beet.ID, Amount: 300},
				{IngredientID: sugar.ID, Amount: 5},
			},
		},
	}

	for i := range recipes {
		entry := &recipes[i]
		if err := tx.Omit("Tags", "Ingredients", "Author").Create(&entry.recipe).Error; err != nil {
			return err
		}
		for _, tag := range entry.tags {
			if err := tx.Create(&models.RecipeTag{RecipeID: entry.recipe.ID, TagID: tag.ID}).Error; err != nil {
				return err
			}
		}
		for _, amount := range entry.amounts {
			amount.RecipeID = entry.recipe.ID
			if err := tx.Create(&amount).Error; err != nil {
				return err
			}
		}
	}

	if err := tx.Create(&models.Subscription{FollowerID: anna.ID, AuthorID: boris.ID}).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
