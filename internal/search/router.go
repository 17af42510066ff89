// Package search routes catalog queries to the best available backend and
// keeps the dedicated index eventually consistent with the document store.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	"github.com/t-simwa/swiftcart-catalog/internal/domain"
	"github.com/t-simwa/swiftcart-catalog/internal/repository"
	"github.com/t-simwa/swiftcart-catalog/internal/search/index"
	"github.com/t-simwa/swiftcart-catalog/pkg/pagination"
)

var (
	searchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "search_requests_total",
		Help: "Total search requests by executing backend",
	}, []string{"backend"})

	searchFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_index_fallbacks_total",
		Help: "Total searches that fell back from the index to the database",
	})

	breakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "search_index_breaker_state",
		Help: "Search index circuit breaker state (0=closed, 1=half-open, 2=open)",
	})
)

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Router answers catalog search queries. When the dedicated index is
// available and the query carries a text term it ranks against the index and
// re-fetches canonical records from the document store; in every other case,
// and on any index failure, it queries the document store directly. Only a
// document-store failure is surfaced to the caller.
type Router struct {
	repo    repository.ProductRepository
	index   index.Index // nil when the index is unavailable
	breaker *gobreaker.CircuitBreaker[*index.Page]
	logger  *slog.Logger
}

// NewRouter creates a search router. Pass a nil index to run in
// database-only mode.
func NewRouter(repo repository.ProductRepository, idx index.Index, logger *slog.Logger) *Router {
	settings := gobreaker.Settings{
		Name:        "search-index",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.Set(stateToFloat(to))
		},
	}

	return &Router{
		repo:    repo,
		index:   idx,
		breaker: gobreaker.NewCircuitBreaker[*index.Page](settings),
		logger:  logger,
	}
}

// Search executes the query against the best available backend.
func (r *Router) Search(ctx context.Context, q *domain.SearchQuery) (*domain.SearchResult, error) {
	q.Normalize()

	// The index path is gated on a text term: pure filter browsing always
	// uses the document store.
	if r.index != nil && q.Text != "" {
		page, err := r.breaker.Execute(func() (*index.Page, error) {
			return r.index.Search(ctx, q)
		})
		if err == nil {
			products, err := r.refetchOrdered(ctx, page.IDs)
			if err != nil {
				// The document store is the source of truth; its failure is
				// the one error this router does not mask.
				return nil, err
			}
			searchRequests.WithLabelValues(domain.BackendIndex).Inc()
			return buildResult(q, products, page.Total, domain.BackendIndex), nil
		}

		searchFallbacks.Inc()
		r.logger.WarnContext(ctx, "search index unavailable, falling back to database",
			slog.String("text", q.Text),
			slog.String("sort", q.SortBy),
			slog.String("error", err.Error()),
		)
	}

	products, total, err := r.repo.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("database search: %w", err)
	}

	searchRequests.WithLabelValues(domain.BackendDatabase).Inc()
	return buildResult(q, products, total, domain.BackendDatabase), nil
}

// refetchOrdered loads canonical records for the ranked ID list and restores
// the index ordering, which the bulk fetch does not preserve. IDs the store
// no longer has (index lag after a delete) are dropped.
func (r *Router) refetchOrdered(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	fetched, err := r.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("refetch products: %w", err)
	}

	byID := make(map[string]domain.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	ordered := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

func buildResult(q *domain.SearchQuery, products []domain.Product, total int, backend string) *domain.SearchResult {
	if products == nil {
		products = []domain.Product{}
	}
	pages := pagination.TotalPages(total, q.PerPage)
	return &domain.SearchResult{
		Products:   products,
		Total:      total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: pages,
		HasNext:    q.Page < pages,
		Backend:    backend,
	}
}
