// Package service implements the catalog business logic on top of the
// repository, cache and search layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/t-simwa/swiftcart-catalog/internal/cache"
	"github.com/t-simwa/swiftcart-catalog/internal/domain"
	"github.com/t-simwa/swiftcart-catalog/internal/repository"
	"github.com/t-simwa/swiftcart-catalog/internal/search"
	apperrors "github.com/t-simwa/swiftcart-catalog/pkg/errors"
	"github.com/t-simwa/swiftcart-catalog/pkg/slug"
)

// listCachePrefix groups every cached list/search response so a single
// pattern delete drops them all after a write.
const listCachePrefix = "products"

// CatalogService coordinates product reads and writes: reads go through
// the cache and the search router, writes hit the document store first
// and then best-effort update the index and invalidate cached responses.
type CatalogService struct {
	repo   repository.ProductRepository
	router *search.Router
	syncer *search.Syncer
	cache  *cache.Cache
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	repo repository.ProductRepository,
	router *search.Router,
	syncer *search.Syncer,
	c *cache.Cache,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		repo:   repo,
		router: router,
		syncer: syncer,
		cache:  c,
		logger: logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name          string `json:"name" validate:"required,min=2,max=200"`
	SKU           string `json:"sku" validate:"required,min=2,max=64"`
	Description   string `json:"description" validate:"max=5000"`
	Category      string `json:"category" validate:"required,min=2,max=100"`
	Price         int64  `json:"price" validate:"gte=0"`
	OriginalPrice int64  `json:"original_price" validate:"gte=0"`
	Stock         int    `json:"stock" validate:"gte=0"`
	Featured      bool   `json:"featured"`
}

// UpdateProductInput holds the parameters for partially updating a product.
type UpdateProductInput struct {
	Name          *string `json:"name" validate:"omitempty,min=2,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	Category      *string `json:"category" validate:"omitempty,min=2,max=100"`
	Price         *int64  `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice *int64  `json:"original_price" validate:"omitempty,gte=0"`
	Stock         *int    `json:"stock" validate:"omitempty,gte=0"`
	Featured      *bool   `json:"featured"`
}

// SearchProducts runs a catalog query through the cache and, on a miss,
// the search router. Identical concurrent misses collapse to a single
// backend call.
func (s *CatalogService) SearchProducts(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	query.Normalize()
	key := cache.BuildKey(listCachePrefix, searchCacheParams(query))

	return cache.WithCache(ctx, s.cache, key, cache.ListTTL, func(ctx context.Context) (*domain.SearchResult, error) {
		return s.router.Search(ctx, query)
	})
}

// GetProduct retrieves a product by its ID, cached per entity.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	key := cache.EntityKey("product", id)
	return cache.WithCache(ctx, s.cache, key, cache.EntityTTL, func(ctx context.Context) (*domain.Product, error) {
		return s.repo.GetByID(ctx, id)
	})
}

// GetProductBySlug retrieves a product by its slug, cached per entity.
func (s *CatalogService) GetProductBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	key := cache.EntityKey("product:slug", productSlug)
	return cache.WithCache(ctx, s.cache, key, cache.EntityTTL, func(ctx context.Context) (*domain.Product, error) {
		return s.repo.GetBySlug(ctx, productSlug)
	})
}

// CreateProduct stores a new product, pushes it to the search index and
// drops cached list responses. Index failures never fail the write.
func (s *CatalogService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New().String(),
		Name:          input.Name,
		Slug:          slug.Generate(input.Name),
		SKU:           strings.ToUpper(strings.TrimSpace(input.SKU)),
		Description:   input.Description,
		Category:      input.Category,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Stock:         input.Stock,
		Featured:      input.Featured,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.repo.Create(ctx, product)
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		// Same name produced the same slug; retry once with a suffix.
		product.Slug = slug.WithSuffix(product.Slug, shortID(product.ID))
		err = s.repo.Create(ctx, product)
	}
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.syncer.IndexOne(ctx, product)
	s.invalidateAfterWrite(ctx, product)

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// UpdateProduct applies partial updates to an existing product, then
// refreshes the index document and invalidates cached responses.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	previousSlug := product.Slug

	if input.Name != nil {
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = *input.OriginalPrice
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.syncer.IndexOne(ctx, product)
	s.invalidateAfterWrite(ctx, product)
	if previousSlug != product.Slug {
		s.cache.Delete(ctx, cache.EntityKey("product:slug", previousSlug))
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", product.ID))

	return product, nil
}

// DeleteProduct removes a product from the store, the index and the cache.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.syncer.RemoveOne(ctx, id)
	s.invalidateAfterWrite(ctx, product)

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))

	return nil
}

// SyncProduct refreshes the index document and cached entries for a
// product changed outside the HTTP API. A product missing from the
// store is treated as deleted.
func (s *CatalogService) SyncProduct(ctx context.Context, id string) error {
	product, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return s.RemoveProduct(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("sync product: %w", err)
	}

	s.syncer.IndexOne(ctx, product)
	s.invalidateAfterWrite(ctx, product)
	return nil
}

// RemoveProduct drops a product from the index and the cache. The slug
// entity entry is unknown here and left to expire by TTL.
func (s *CatalogService) RemoveProduct(ctx context.Context, id string) error {
	s.syncer.RemoveOne(ctx, id)
	s.cache.DeletePattern(ctx, listCachePrefix+":*")
	s.cache.Delete(ctx, cache.EntityKey("product", id))
	return nil
}

// Reindex rebuilds the search index from the document store.
func (s *CatalogService) Reindex(ctx context.Context) (search.ReindexStats, error) {
	return s.syncer.ReindexAll(ctx)
}

// InvalidateCache drops every cached entry matching the glob pattern and
// returns how many were removed.
func (s *CatalogService) InvalidateCache(ctx context.Context, pattern string) int {
	return s.cache.DeletePattern(ctx, pattern)
}

// invalidateAfterWrite drops the cached list responses plus the entity
// entries for the written product.
func (s *CatalogService) invalidateAfterWrite(ctx context.Context, product *domain.Product) {
	s.cache.DeletePattern(ctx, listCachePrefix+":*")
	s.cache.Delete(ctx, cache.EntityKey("product", product.ID))
	s.cache.Delete(ctx, cache.EntityKey("product:slug", product.Slug))
}

// searchCacheParams flattens a normalized query into the canonical key map.
// Zero-valued filters are omitted so the same logical query always builds
// the same key.
func searchCacheParams(q *domain.SearchQuery) map[string]any {
	params := map[string]any{
		"page":  q.Page,
		"limit": q.PerPage,
		"sort":  q.SortBy,
	}
	if q.Text != "" {
		params["q"] = q.Text
	}
	if q.Category != nil {
		params["category"] = *q.Category
	}
	if q.MinPrice != nil {
		params["min_price"] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		params["max_price"] = *q.MaxPrice
	}
	if q.Featured != nil {
		params["featured"] = *q.Featured
	}
	if len(q.Brands) > 0 {
		params["brands"] = strings.Join(q.Brands, ",")
	}
	return params
}

func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
