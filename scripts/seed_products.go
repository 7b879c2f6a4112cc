package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"calikart/internal/config"
	"calikart/internal/database"

	"github.com/rs/zerolog"
)

// seedProducts loads a small calibration-equipment catalogue so the API has
// something to sell. Run with: go run scripts/seed_products.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	products := []struct {
		id          string
		name        string
		price       float64
		category    string
		description string
	}{
		{"P001", "Dial Gauge", 500.00, "measurement", "Plunger dial indicator, 0.01mm resolution"},
		{"P002", "Vernier Caliper", 1200.00, "measurement", "150mm stainless steel caliper"},
		{"P003", "Micrometer", 1800.00, "measurement", "0-25mm outside micrometer, 0.001mm"},
		{"P004", "Surface Plate", 9500.00, "reference", "Grade 0 granite surface plate, 630x400mm"},
		{"P005", "Gauge Block Set", 15000.00, "reference", "87-piece grade 1 steel gauge block set"},
		{"P006", "Bore Gauge", 3200.00, "measurement", "18-35mm dial bore gauge"},
		{"P007", "Height Gauge", 7800.00, "measurement", "300mm digital height gauge"},
		{"P008", "Feeler Gauge", 350.00, "measurement", "25-blade feeler gauge set"},
	}

	query := `
		INSERT INTO products (id, name, price, category, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    price = EXCLUDED.price,
		    category = EXCLUDED.category,
		    description = EXCLUDED.description
	`

	for _, p := range products {
		if _, err := pool.Exec(ctx, query, p.id, p.name, p.price, p.category, p.description); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed product %s: %v\n", p.id, err)
			os.Exit(1)
		}
		logger.Info().Str("product_id", p.id).Str("name", p.name).Msg("product seeded")
	}

	logger.Info().Int("count", len(products)).Msg("catalogue seeded")
}
