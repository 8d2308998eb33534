/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (zap)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/ledger, /api/export   Active period
  /api/entries/*             Gated mutations
  /api/gate/*                Admin code flow
  /api/catalog               Reference tables
  /metrics                   Prometheus
  /healthz                   Liveness
  /*                         Static files (frontend), when present

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/points/serve.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterConfig holds router options.
type RouterConfig struct {
	AllowedOrigins []string

	// StaticDir is served under /* when it exists.
	StaticDir string

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/ledger", h.GetLedger)
		r.Get("/export", h.Export)
		r.Get("/catalog", h.GetCatalog)

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", h.CreateEntry)
			r.Put("/{index}", h.EditEntry)
			r.Delete("/{index}", h.DeleteEntry)
		})

		r.Route("/gate", func(r chi.Router) {
			r.Get("/", h.GetGate)
			r.Post("/credential", h.SubmitCredential)
			r.Post("/cancel", h.CancelPending)
		})
	})

	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err == nil {
			mountStatic(r, cfg.StaticDir)
		}
	}

	return r
}

// mountStatic serves the built front end, falling back to index.html for
// client-side routing.
func mountStatic(r chi.Router, dir string) {
	fileServer := http.FileServer(http.Dir(dir))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		fullPath := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
