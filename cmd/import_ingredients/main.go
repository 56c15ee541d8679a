package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"foodgram/internal/config"
	"foodgram/internal/db"
	applog "foodgram/internal/log"
	"foodgram/models"
)

var cleanWhitespace = regexp.MustCompile(`\s+`)

var openDatabase = func() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL must be set")
	}
	return db.Configure(cfg.Database)
}

func main() {
	csvPath := "data/ingredients.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(context.Background(), csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	records, err := readCSV(file)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	database, err := openDatabase()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	imported, err := importIngredients(ctx, database, records)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %d of %d ingredients from %s\n", imported, len(records), filepath.Base(csvPath))
	return nil
}

// readCSV parses (name, measurement_unit) rows. A leading header row naming
// those columns is skipped; columns may then appear in any order. Errors
// report the line number in the file.
func readCSV(r io.Reader) ([]models.Ingredient, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var records []models.Ingredient
	nameIdx, unitIdx := 0, 1
	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if first {
			first = false
			if idx, ok := headerIndex(row); ok {
				nameIdx, unitIdx = idx["name"], idx["measurement_unit"]
				continue
			}
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if nameIdx >= len(row) || unitIdx >= len(row) {
			return nil, fmt.Errorf("row %d: expected name and measurement_unit", line)
		}
		ingredient := models.Ingredient{
			Name:            normalizeText(row[nameIdx]),
			MeasurementUnit: normalizeText(row[unitIdx]),
		}
		if ingredient.Name == "" || ingredient.MeasurementUnit == "" {
			return nil, fmt.Errorf("row %d: name and measurement_unit must not be empty", line)
		}
		records = append(records, ingredient)
	}
	if first {
		return nil, errors.New("csv is empty")
	}
	return records, nil
}

func headerIndex(row []string) (map[string]int, bool) {
	idx := make(map[string]int, len(row))
	for i, column := range row {
		idx[strings.ToLower(strings.TrimSpace(column))] = i
	}
	_, hasName := idx["name"]
	_, hasUnit := idx["measurement_unit"]
	return idx, hasName && hasUnit
}

func normalizeText(value string) string {
	return strings.TrimSpace(cleanWhitespace.ReplaceAllString(value, " "))
}

// importIngredients inserts every ingredient whose (name, measurement_unit)
// pair is not stored yet, so running an import twice is harmless.
func importIngredients(ctx context.Context, database *gorm.DB, records []models.Ingredient) (int, error) {
	imported := 0
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, record := range records {
			var count int64
			if err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", record.Name, record.MeasurementUnit).
				Count(&count).Error; err != nil {
				return fmt.Errorf("record %d (%s): %w", idx+1, record.Name, err)
			}
			if count > 0 {
				continue
			}
			ingredient := record
			if err := tx.Create(&ingredient).Error; err != nil {
				return fmt.Errorf("record %d (%s): %w", idx+1, record.Name, err)
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	applog.Info(ctx, "ingredients imported", "imported", imported, "total", len(records))
	return imported, nil
}
