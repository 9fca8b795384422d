package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/shiptrack/shiptrack-backend/internal/seed"
	"github.com/shiptrack/shiptrack-backend/pkg/config"
	"github.com/shiptrack/shiptrack-backend/pkg/db"
	"github.com/shiptrack/shiptrack-backend/pkg/logger"
	"github.com/shiptrack/shiptrack-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	seeder, err := seed.New(seed.Params{
		DB:       dbClient,
		Logger:   logg,
		Password: cfg.Password,
		Accounts: cfg.Seed,
	})
	if err != nil {
		logg.Error(ctx, "invalid seed configuration", err)
		os.Exit(1)
	}

	result, err := seeder.Run(ctx)
	if err != nil {
		logg.Error(ctx, "seeding failed", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"users":             result.Users,
		"shipments_created": result.ShipmentsCreated,
		"shipments_skipped": result.ShipmentsSkipped,
	}), "seed completed")
}
