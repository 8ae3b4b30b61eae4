package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storeadmin-backend/internal/seed"
	"github.com/angelmondragon/storeadmin-backend/internal/settings"
	"github.com/angelmondragon/storeadmin-backend/internal/users"
	"github.com/angelmondragon/storeadmin-backend/pkg/config"
	"github.com/angelmondragon/storeadmin-backend/pkg/db"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
	"github.com/angelmondragon/storeadmin-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	withAdmin := flag.Bool("admin", false, "create the admin account from STOREADMIN_SEED_ADMIN_* when missing")
	resetAdmin := flag.Bool("reset-admin", false, "rewrite the admin account password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg, *withAdmin, *resetAdmin); err != nil {
		logg.Error(context.Background(), "seed failed", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger, withAdmin, resetAdmin bool) (err error) {
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	seeder, err := seed.New(seed.Params{
		Settings: settings.NewRepository(dbClient.DB()),
		Users:    users.NewRepository(dbClient.DB()),
		Password: cfg.Password,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	report, err := seeder.SeedSettings(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("settings: %d created, %d refreshed\n", report.Created, report.Refreshed)

	if !withAdmin && !resetAdmin {
		return nil
	}

	result, err := seeder.EnsureAdmin(ctx, seed.AdminOptions{
		Name:     cfg.Seed.AdminName,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		Reset:    resetAdmin,
	})
	if err != nil {
		return err
	}

	switch {
	case result.Created:
		fmt.Println("admin created:", result.Email)
	case result.Reset:
		fmt.Println("admin password reset:", result.Email)
	default:
		fmt.Println("admin already exists:", result.Email)
	}
	if result.TempPassword != "" {
		fmt.Println("temporary password:", result.TempPassword)
	}
	return nil
}
