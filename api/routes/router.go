package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nuvemflow/orderdesk-backend/api/controllers"
	ordercontrollers "github.com/nuvemflow/orderdesk-backend/api/controllers/orders"
	"github.com/nuvemflow/orderdesk-backend/api/middleware"
	"github.com/nuvemflow/orderdesk-backend/internal/auth"
	"github.com/nuvemflow/orderdesk-backend/internal/orders"
	"github.com/nuvemflow/orderdesk-backend/internal/refresh"
	"github.com/nuvemflow/orderdesk-backend/pkg/auth/session"
	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type scheduler interface {
	Run(ctx context.Context) (*refresh.Summary, error)
	UpdateInterval(minutes int) error
	Status() refresh.Status
}

type cacheStats interface {
	Stats() orders.CacheStats
}

// Dependencies bundles what the HTTP surface needs. Nil pingers and a nil
// rate limiter are skipped.
type Dependencies struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              controllers.Pinger
	Redis           controllers.Pinger
	Annotations     controllers.Pinger
	RateLimiter     rateLimiter
	Sessions        session.AccessSessionChecker
	AuthService     auth.Service
	OrdersService   orders.Service
	Scheduler       scheduler
	Cache           cacheStats
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(deps.RateLimiter, logg,
			middleware.RateRule{
				Name:    "login",
				Window:  cfg.AuthRateLimit.LoginWindow,
				Limit:   cfg.AuthRateLimit.LoginIPLimit,
				Key:     middleware.ByClientIP,
				Message: "too many login attempts",
			},
			middleware.RateRule{
				Name:    "login",
				Window:  cfg.AuthRateLimit.LoginWindow,
				Limit:   cfg.AuthRateLimit.LoginEmailLimit,
				Key:     middleware.ByJSONField("email"),
				Message: "too many login attempts",
			},
		)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Get("/verify", controllers.AuthVerify(deps.AuthService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/api/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(deps.OrdersService, logg))
			r.Get("/attention", ordercontrollers.Attention(deps.OrdersService, logg))
			r.Get("/counts", ordercontrollers.Counts(deps.OrdersService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.OrdersService, logg))
			r.Get("/{orderId}/note", ordercontrollers.GetNote(deps.OrdersService, logg))
			r.Post("/{orderId}/note", ordercontrollers.SaveNote(deps.OrdersService, logg))
			r.Delete("/{orderId}/note", ordercontrollers.DeleteNote(deps.OrdersService, logg))
		})

		r.Get("/api/status", controllers.Status(deps.Scheduler, deps.Cache, deps.Annotations, logg))
		r.With(middleware.RateLimit(deps.RateLimiter, logg, middleware.RateRule{
			Name:    "manual_refresh",
			Window:  cfg.AuthRateLimit.RefreshWindow,
			Limit:   cfg.AuthRateLimit.RefreshUserLimit,
			Key:     middleware.ByUserID,
			Message: "refresh requested too often",
		})).Post("/api/refresh", controllers.RefreshNow(deps.Scheduler, logg))
		r.With(middleware.RequireRole(logg, enums.UserRoleAdmin)).Put("/api/refresh/interval", controllers.RefreshInterval(deps.Scheduler, logg))
	})

	return r
}
