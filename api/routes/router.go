package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shiptrack/shiptrack-backend/api/controllers"
	"github.com/shiptrack/shiptrack-backend/api/middleware"
	"github.com/shiptrack/shiptrack-backend/internal/auth"
	"github.com/shiptrack/shiptrack-backend/internal/shipments"
	"github.com/shiptrack/shiptrack-backend/internal/trackingevents"
	"github.com/shiptrack/shiptrack-backend/pkg/auth/session"
	"github.com/shiptrack/shiptrack-backend/pkg/config"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
	"github.com/shiptrack/shiptrack-backend/pkg/logger"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type requestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Params lists everything the HTTP surface depends on.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions session.AccessSessionChecker

	// RateLimiter backs the login and signup throttles; nil disables them.
	RateLimiter rateLimiter

	// Readiness maps a dependency name to its ping check.
	Readiness map[string]controllers.Pinger

	AuthService     auth.Service
	SignupService   auth.SignupService
	ShipmentsSvc    shipments.Service
	EventsSvc       trackingevents.Service
	HTTPMetrics     requestObserver
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(p.HTTPMetrics),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)
	throttle := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if p.RateLimiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, p.RateLimiter, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Readiness, logg))
	})

	if p.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(throttle(loginPolicy)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(throttle(signupPolicy)).Post("/signup", controllers.AuthSignup(p.SignupService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
	})

	r.Get("/track/{trackingNumber}", controllers.TrackShipment(p.ShipmentsSvc, logg))

	r.Route("/shipments", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleAdmin))

		r.Get("/", controllers.ShipmentList(p.ShipmentsSvc, logg))
		r.Post("/", controllers.ShipmentCreate(p.ShipmentsSvc, logg))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.ShipmentGet(p.ShipmentsSvc, logg))
			r.Put("/", controllers.ShipmentUpdate(p.ShipmentsSvc, logg))
			r.Delete("/", controllers.ShipmentDelete(p.ShipmentsSvc, logg))
			r.Get("/events", controllers.ShipmentEventsList(p.EventsSvc, logg))
			r.Post("/events", controllers.ShipmentEventAppend(p.EventsSvc, logg))
		})
	})

	return r
}
