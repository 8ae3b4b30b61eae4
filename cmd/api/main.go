package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storeadmin-backend/api/routes"
	"github.com/angelmondragon/storeadmin-backend/internal/auth"
	"github.com/angelmondragon/storeadmin-backend/internal/catalog"
	"github.com/angelmondragon/storeadmin-backend/internal/dashboard"
	"github.com/angelmondragon/storeadmin-backend/internal/orders"
	"github.com/angelmondragon/storeadmin-backend/internal/pricing"
	"github.com/angelmondragon/storeadmin-backend/internal/settings"
	"github.com/angelmondragon/storeadmin-backend/internal/users"
	"github.com/angelmondragon/storeadmin-backend/pkg/auth/session"
	"github.com/angelmondragon/storeadmin-backend/pkg/config"
	"github.com/angelmondragon/storeadmin-backend/pkg/db"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
	"github.com/angelmondragon/storeadmin-backend/pkg/metrics"
	"github.com/angelmondragon/storeadmin-backend/pkg/migrate"
	"github.com/angelmondragon/storeadmin-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	usersRepo := users.NewRepository(dbClient.DB())
	settingsRepo := settings.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())

	// One cache per process; every settings consumer shares it.
	settingsCache, err := settings.NewCache(settings.CacheParams{
		Store:  settingsRepo,
		Logger: logg,
		TTL:    cfg.Settings.CacheTTL,
	})
	if err != nil {
		return err
	}

	deriver, err := pricing.NewDeriver(pricing.DeriverParams{
		Settings: settingsCache,
		Logger:   logg,
		Metrics:  orderMetrics,
	})
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	settingsService, err := settings.NewService(settings.ServiceParams{
		Repo:   settingsRepo,
		Cache:  settingsCache,
		Logger: logg,
	})
	if err != nil {
		return err
	}
	usersService, err := users.NewService(usersRepo)
	if err != nil {
		return err
	}
	catalogService, err := catalog.NewService(catalogRepo, logg)
	if err != nil {
		return err
	}
	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Deriver:  deriver,
		Products: catalogRepo,
		Users:    usersRepo,
		Logger:   logg,
		Metrics:  orderMetrics,
	})
	if err != nil {
		return err
	}
	dashboardService, err := dashboard.NewService(dashboard.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(bootCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			dbClient,
			redisClient,
			sessionManager,
			usersRepo,
			authService,
			settingsService,
			usersService,
			catalogService,
			ordersService,
			dashboardService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-sigCtx.Done():
	}

	logg.Info(ctx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
