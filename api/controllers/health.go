package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/storeadmin-backend/api/responses"
	"github.com/angelmondragon/storeadmin-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storeadmin-backend/pkg/errors"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger is any dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness with the current uptime.
func HealthLive(cfg *config.Config, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StoreAdmin-Env", cfg.App.Env)
		now := time.Now().UTC()
		responses.WriteSuccess(w, map[string]any{
			"status":         "ok",
			"timestamp":      now.Format(time.RFC3339),
			"uptime_seconds": int64(now.Sub(startedAt).Seconds()),
		})
	}
}

// HealthReady pings every dependency and fails with 503 when one is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StoreAdmin-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		failed := false
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "disabled"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				failed = true
				if logg != nil {
					logg.Warn(logg.WithFields(r.Context(), map[string]any{"dependency": name, "error": err.Error()}), "readiness.check_failed")
				}
				continue
			}
			checks[name] = "up"
		}

		if failed {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

// Index describes the service and its entry points.
func Index(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"service": "storeadmin-" + cfg.Service.Kind,
			"env":     cfg.App.Env,
			"endpoints": map[string]string{
				"health":  "/health",
				"ready":   "/health/ready",
				"metrics": "/metrics",
				"login":   "/api/login",
				"admin":   "/api/admin/v1",
			},
		})
	}
}
