package index

import (
	"context"

	"github.com/t-simwa/swiftcart-catalog/internal/domain"
)

// Page is one ranked page of index matches: the ordered document IDs plus the
// total match count. Callers re-fetch canonical records for the IDs and must
// preserve this order.
type Page struct {
	IDs   []string
	Total int
}

// Index is the search-index surface. Implementations may use Elasticsearch or
// in-memory storage; absence of the index must be tolerated by callers.
type Index interface {
	// Index upserts a single document.
	Index(ctx context.Context, doc *domain.IndexDocument) error

	// Delete removes a document by ID. Deleting an absent document succeeds.
	Delete(ctx context.Context, id string) error

	// BulkIndex upserts a batch of documents in one call.
	BulkIndex(ctx context.Context, docs []domain.IndexDocument) error

	// Search executes the query and returns the ranked page of document IDs.
	Search(ctx context.Context, query *domain.SearchQuery) (*Page, error)
}
