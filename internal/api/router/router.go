package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/propstack/buyer-leads/internal/buyers"
	httpmiddleware "github.com/propstack/buyer-leads/internal/http/middleware"
	"github.com/propstack/buyer-leads/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	BuyersHandler      *buyers.Handler
	AuthSecret         string
	RateLimiter        httpmiddleware.Limiter
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Authenticated lead endpoints. Only creation sits behind the rate
	// limiter; the limit gate runs before validation.
	r.Route("/buyers", func(api chi.Router) {
		api.Use(httpmiddleware.UserJWT(cfg.AuthSecret))
		if cfg.RateLimiter != nil {
			api.With(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger)).
				Post("/", cfg.BuyersHandler.Create)
		} else {
			api.Post("/", cfg.BuyersHandler.Create)
		}
		api.Get("/", cfg.BuyersHandler.List)
		api.Post("/import", cfg.BuyersHandler.Import)
		api.Post("/export", cfg.BuyersHandler.Export)
		api.Get("/{id}", cfg.BuyersHandler.Get)
		api.Put("/{id}", cfg.BuyersHandler.Update)
		api.Delete("/{id}", cfg.BuyersHandler.Delete)
		api.Get("/{id}/history", cfg.BuyersHandler.History)
	})

	return r
}
