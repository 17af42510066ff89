package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/t-simwa/swiftcart-catalog/internal/domain"
	"github.com/t-simwa/swiftcart-catalog/internal/repository"
	"github.com/t-simwa/swiftcart-catalog/internal/search/index"
	apperrors "github.com/t-simwa/swiftcart-catalog/pkg/errors"
)

// DefaultReindexBatchSize is how many products each reindex batch carries.
const DefaultReindexBatchSize = 100

// ReindexStats accumulates the outcome of a full reindex run.
type ReindexStats struct {
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}

// ErrIndexUnavailable is returned by sync operations that cannot proceed at
// all without the index. It maps to 503 at the HTTP boundary.
var ErrIndexUnavailable error = apperrors.Unavailable("search index unavailable")

// Syncer keeps the search index eventually consistent with the document
// store. Single-document sync failures are logged and swallowed so catalog
// writes never block on indexing; a lost sync is repaired by the next
// mutation or a full reindex.
type Syncer struct {
	repo      repository.ProductRepository
	index     index.Index // nil when the index is unavailable
	logger    *slog.Logger
	batchSize int
}

// NewSyncer creates an index syncer. Pass a nil index to run with sync
// disabled; every operation then reports skipped.
func NewSyncer(repo repository.ProductRepository, idx index.Index, logger *slog.Logger) *Syncer {
	return &Syncer{
		repo:      repo,
		index:     idx,
		logger:    logger,
		batchSize: DefaultReindexBatchSize,
	}
}

// IndexOne upserts the document for one product. Returns false when the
// index is unreachable or the upsert failed; the failure is logged, never
// returned.
func (s *Syncer) IndexOne(ctx context.Context, p *domain.Product) bool {
	if s.index == nil {
		return false
	}

	doc := domain.NewIndexDocument(p)
	if err := s.index.Index(ctx, &doc); err != nil {
		s.logger.WarnContext(ctx, "product index sync failed",
			slog.String("product_id", p.ID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// RemoveOne deletes one document from the index. Absent documents count as
// removed. Returns false only when the index is unreachable or errored.
func (s *Syncer) RemoveOne(ctx context.Context, productID string) bool {
	if s.index == nil {
		return false
	}

	if err := s.index.Delete(ctx, productID); err != nil {
		s.logger.WarnContext(ctx, "product index removal failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// ReindexAll rebuilds the index from the document store in fixed-size
// batches. Per-batch failures are counted and skipped, never aborting the
// run; only a document-store failure (or a missing index) returns an error.
func (s *Syncer) ReindexAll(ctx context.Context) (ReindexStats, error) {
	var stats ReindexStats

	if s.index == nil {
		return stats, ErrIndexUnavailable
	}

	for offset := 0; ; offset += s.batchSize {
		products, err := s.repo.ListBatch(ctx, offset, s.batchSize)
		if err != nil {
			return stats, fmt.Errorf("reindex: list products at offset %d: %w", offset, err)
		}
		if len(products) == 0 {
			break
		}

		docs := make([]domain.IndexDocument, 0, len(products))
		for i := range products {
			docs = append(docs, domain.NewIndexDocument(&products[i]))
		}

		if err := s.index.BulkIndex(ctx, docs); err != nil {
			stats.Failed += len(docs)
			s.logger.ErrorContext(ctx, "reindex batch failed",
				slog.Int("offset", offset),
				slog.Int("batch_size", len(docs)),
				slog.String("error", err.Error()),
			)
			continue
		}

		stats.Indexed += len(docs)
	}

	s.logger.InfoContext(ctx, "reindex completed",
		slog.Int("indexed", stats.Indexed),
		slog.Int("failed", stats.Failed),
	)
	return stats, nil
}
