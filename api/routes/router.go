package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storeadmin-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/storeadmin-backend/api/controllers/orders"
	"github.com/angelmondragon/storeadmin-backend/api/middleware"
	"github.com/angelmondragon/storeadmin-backend/internal/auth"
	"github.com/angelmondragon/storeadmin-backend/internal/catalog"
	"github.com/angelmondragon/storeadmin-backend/internal/dashboard"
	"github.com/angelmondragon/storeadmin-backend/internal/orders"
	"github.com/angelmondragon/storeadmin-backend/internal/settings"
	"github.com/angelmondragon/storeadmin-backend/internal/users"
	"github.com/angelmondragon/storeadmin-backend/pkg/auth/session"
	"github.com/angelmondragon/storeadmin-backend/pkg/config"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
	"github.com/angelmondragon/storeadmin-backend/pkg/metrics"
	"github.com/angelmondragon/storeadmin-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	userLookup middleware.UserLookup,
	authService auth.Service,
	settingsService settings.Service,
	usersService users.Service,
	catalogService catalog.Service,
	ordersService orders.Service,
	dashboardService dashboard.Service,
) http.Handler {
	startedAt := time.Now().UTC()
	var httpMetrics *metrics.HTTPMetrics
	if registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(registry)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	// A typed nil client must not reach the interface-typed dependencies.
	ready := map[string]controllers.Pinger{"database": dbP, "redis": nil}
	loginLimit := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		ready["redis"] = redisClient
		loginLimit = middleware.AuthRateLimit(loginPolicy, redisClient, logg)
	}

	r.Get("/", controllers.Index(cfg))
	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.HealthLive(cfg, startedAt))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	}

	r.Route("/api", func(r chi.Router) {
		r.With(loginLimit).Post("/login", controllers.AuthLogin(authService, logg))
		// Logout and refresh accept expired tokens, so they sit outside Auth.
		r.Post("/logout", controllers.AuthLogout(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, userLookup, logg))
			r.Get("/me", controllers.AuthMe(authService, logg))
		})

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, userLookup, logg))
			r.Get("/dashboard", controllers.Dashboard(dashboardService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

				r.Route("/settings", func(r chi.Router) {
					r.Get("/", controllers.SettingsList(settingsService, logg))
					r.Post("/", controllers.SettingsCreate(settingsService, logg))
					r.Get("/{key}", controllers.SettingsGet(settingsService, logg))
					r.Patch("/{key}", controllers.SettingsUpdate(settingsService, logg))
					r.Delete("/{key}", controllers.SettingsDelete(settingsService, logg))
				})

				r.Route("/categories", func(r chi.Router) {
					r.Get("/", controllers.CategoriesList(catalogService, logg))
					r.Post("/", controllers.CategoriesCreate(catalogService, logg))
					r.Get("/{categoryId}", controllers.CategoriesGet(catalogService, logg))
					r.Patch("/{categoryId}", controllers.CategoriesUpdate(catalogService, logg))
					r.Delete("/{categoryId}", controllers.CategoriesDelete(catalogService, logg))
				})

				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.ProductsList(catalogService, logg))
					r.Post("/", controllers.ProductsCreate(catalogService, logg))
					r.Get("/{productId}", controllers.ProductsGet(catalogService, logg))
					r.Patch("/{productId}", controllers.ProductsUpdate(catalogService, logg))
					r.Delete("/{productId}", controllers.ProductsDelete(catalogService, logg))
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", ordercontrollers.List(ordersService, logg))
					r.Post("/", ordercontrollers.Create(ordersService, logg))
					r.Route("/{orderId}", func(r chi.Router) {
						r.Get("/", ordercontrollers.Detail(ordersService, logg))
						r.Patch("/", ordercontrollers.Update(ordersService, logg))
						r.Delete("/", ordercontrollers.Delete(ordersService, logg))

						r.Get("/items", ordercontrollers.ItemsList(ordersService, logg))
						r.Post("/items", ordercontrollers.ItemCreate(ordersService, logg))
						r.Patch("/items/{itemId}", ordercontrollers.ItemUpdate(ordersService, logg))
						r.Delete("/items/{itemId}", ordercontrollers.ItemDelete(ordersService, logg))
					})
				})

				r.Route("/users", func(r chi.Router) {
					r.Get("/", controllers.UsersList(usersService, logg))
					r.Get("/{userId}", controllers.UsersGet(usersService, logg))
				})
			})
		})
	})

	return r
}
