package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storeadmin-backend/internal/orders"
	"github.com/angelmondragon/storeadmin-backend/internal/reconcile"
	"github.com/angelmondragon/storeadmin-backend/pkg/config"
	"github.com/angelmondragon/storeadmin-backend/pkg/db"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "reconcile"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "reconcile",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "reconciliation failed", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	reconciler, err := reconcile.New(reconcile.Params{
		Orders: orders.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		return err
	}

	started := time.Now()
	report, err := reconciler.Run(ctx)
	fmt.Printf("orders: %d processed, %d updated, %d unchanged, %d without items (%s)\n",
		report.Processed, report.Updated, report.Unchanged, report.SkippedEmpty, time.Since(started).Round(time.Millisecond))
	return err
}
