package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig holds the dependencies of the API router
type RouterConfig struct {
	// Taxonomy supplies the active rule data, the builtin taxonomy when nil
	Taxonomy TaxonomySource
	// Auditor runs site audits, audit endpoints respond 503 when nil
	Auditor Auditor
	// MaxBodySize limits request bodies in bytes, unlimited when zero
	MaxBodySize int64
	// AuditTimeout bounds audit requests
	AuditTimeout time.Duration
}

// NewRouter creates a new chi router with all endpoints and middleware
func NewRouter(cfg RouterConfig) http.Handler {
	h := newHandler(cfg)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Heartbeat("/ping"))

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Get("/taxonomy", h.handleTaxonomy)

		r.Route("/analyze", func(r chi.Router) {
			r.Post("/consent", h.handleAnalyzeConsent)
			r.Post("/policy", h.handleAnalyzePolicy)
		})

		r.Post("/audit", h.handleAudit)
		r.Post("/audit/batch", h.handleAuditBatch)
	})

	return r
}
