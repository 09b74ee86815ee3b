// cmd/seed/main.go loads the demo supplier catalogue.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"os"
	"time"

	"supplieriq/internal/config"
	"supplieriq/internal/infra"
	"supplieriq/internal/seed"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sum, err := seed.Run(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().
		Int("suppliers", sum.Suppliers).
		Int("orders", sum.Orders).
		Int("issues", sum.Issues).
		Int("ratings", sum.Ratings).
		Msg("seed: complete")
}
