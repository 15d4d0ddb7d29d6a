// Package api assembles the operational HTTP surface: health checks, sweep
// control, now-playing status, and the bindings CRUD.
package api

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/wvrb/airmon/internal/api/handler"
	"github.com/wvrb/airmon/internal/bindings"
	"github.com/wvrb/airmon/internal/config"
	"github.com/wvrb/airmon/internal/db"
	"github.com/wvrb/airmon/internal/monitor"
	"github.com/wvrb/airmon/internal/status"
)

//go:embed openapi.json
var openAPISpec []byte

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *db.Pool, mon *monitor.Monitor, tracker *status.Tracker, store *bindings.Store, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(pool, mon, tracker, store, cfg)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	// Swagger UI over the embedded spec.
	r.Get("/docs/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(openAPISpec)
	})
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/nowplaying", h.GetNowPlaying)

		r.Route("/monitor", func(r chi.Router) {
			r.Get("/last", h.GetLastSweep)
			r.Post("/sweep", h.TriggerSweep)
		})

		r.Route("/bindings", func(r chi.Router) {
			r.Get("/", h.ListBindings)
			r.Post("/", h.CreateBinding)
			r.Get("/persona/{personaID}", h.GetBindingByPersona)
			r.Get("/{discordID}", h.GetBinding)
			r.Delete("/{discordID}", h.DeleteBinding)
		})
	})

	return r
}
