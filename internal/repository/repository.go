package repository

import (
	"context"

	"github.com/t-simwa/swiftcart-catalog/internal/domain"
)

// ProductRepository is the persistence surface for the product catalog.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// GetByIDs retrieves the products for the given ID set. The returned
	// order is the store's natural order, NOT the input order; callers that
	// need a particular ranking must reorder the result themselves.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	// Search executes a filtered, sorted, paginated query and returns the
	// matching page along with the total match count. This is the fallback
	// search path when the dedicated index is unavailable, and the only path
	// for pure filter browsing.
	Search(ctx context.Context, query *domain.SearchQuery) ([]domain.Product, int, error)

	// ListBatch returns a stable page of the full catalog for bulk reads
	// such as a reindex run.
	ListBatch(ctx context.Context, offset, limit int) ([]domain.Product, error)

	// Update modifies an existing product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product by its identifier.
	Delete(ctx context.Context, id string) error
}
