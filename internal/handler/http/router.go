// Package http wires the catalog endpoints onto a chi router.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/t-simwa/swiftcart-catalog/internal/service"
	"github.com/t-simwa/swiftcart-catalog/pkg/health"
	"github.com/t-simwa/swiftcart-catalog/pkg/middleware"
)

// RouterConfig carries the router's tunables.
type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLog(logger))
	r.Use(middleware.Metrics("catalog"))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	catalogHandler := NewCatalogHandler(catalogService, logger)
	searchHandler := NewSearchHandler(catalogService, logger)
	adminHandler := NewAdminHandler(catalogService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Post("/", catalogHandler.CreateProduct)
			r.Get("/{idOrSlug}", catalogHandler.GetProduct)
			r.Put("/{id}", catalogHandler.UpdateProduct)
			r.Delete("/{id}", catalogHandler.DeleteProduct)
		})

		r.Get("/search", searchHandler.Search)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/reindex", adminHandler.Reindex)
			r.Post("/cache/invalidate", adminHandler.InvalidateCache)
		})
	})

	return r
}
