package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/t-simwa/swiftcart-catalog/internal/domain"
	"github.com/t-simwa/swiftcart-catalog/pkg/database"
	apperrors "github.com/t-simwa/swiftcart-catalog/pkg/errors"
)

// ProductRepository implements repository.ProductRepository on PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, slug, sku, description, category, price, original_price, rating, review_count, stock, featured, created_at, updated_at`

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.SKU, p.Description, p.Category,
		p.Price, p.OriginalPrice, p.Rating, p.ReviewCount, p.Stock, p.Featured,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetBySlug retrieves a product by its slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	return r.scanOne(ctx, query, slug)
}

// GetByIDs retrieves the products for the given ID set. The result carries no
// particular order.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Search executes the document-store query path: text search over name and
// description, case-insensitive category match, price/featured comparisons,
// and a word-boundary brand prefix match on the name, all AND'd together.
func (r *ProductRepository) Search(ctx context.Context, q *domain.SearchQuery) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if q.Text != "" {
		conditions = append(conditions, fmt.Sprintf(
			"to_tsvector('english', name || ' ' || description) @@ plainto_tsquery('english', $%d)", argIndex))
		args = append(args, q.Text)
		argIndex++
	}

	if q.Category != nil && *q.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category ILIKE $%d", argIndex))
		args = append(args, "%"+*q.Category+"%")
		argIndex++
	}

	if q.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argIndex))
		args = append(args, *q.MinPrice)
		argIndex++
	}

	if q.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *q.MaxPrice)
		argIndex++
	}

	if q.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("featured = $%d", argIndex))
		args = append(args, *q.Featured)
		argIndex++
	}

	if pattern := brandPattern(q.Brands); pattern != "" {
		// A separate AND'd condition: an active text clause must still hold.
		conditions = append(conditions, fmt.Sprintf("name ~* $%d", argIndex))
		args = append(args, pattern)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// count(*) OVER() returns the total match count on every row, avoiding a
	// second count query.
	query := fmt.Sprintf(`
		SELECT `+productColumns+`, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		whereClause, orderBy(q.SortBy), argIndex, argIndex+1,
	)

	args = append(args, q.PerPage, q.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var (
		products []domain.Product
		total    int
	)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &p.Category,
			&p.Price, &p.OriginalPrice, &p.Rating, &p.ReviewCount, &p.Stock, &p.Featured,
			&p.CreatedAt, &p.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, total, nil
}

// ListBatch returns a stable page of the catalog ordered by ID, for bulk
// reads such as a full reindex.
func (r *ProductRepository) ListBatch(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products batch: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Update modifies an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, slug = $2, sku = $3, description = $4, category = $5,
		    price = $6, original_price = $7, rating = $8, review_count = $9,
		    stock = $10, featured = $11, updated_at = $12
		WHERE id = $13`

	ct, err := r.db.Exec(ctx, query,
		p.Name, p.Slug, p.SKU, p.Description, p.Category,
		p.Price, p.OriginalPrice, p.Rating, p.ReviewCount,
		p.Stock, p.Featured, p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product by ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// brandPattern builds a case-insensitive regex matching any of the brands as
// a name prefix, each anchored to a word boundary (the brand token must be
// followed by whitespace or end-of-string). User-supplied brand strings are
// escaped so metacharacters cannot break or widen the pattern.
func brandPattern(brands []string) string {
	escaped := make([]string, 0, len(brands))
	for _, b := range brands {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(b))
	}
	if len(escaped) == 0 {
		return ""
	}
	return fmt.Sprintf(`^(%s)([[:space:]]|$)`, strings.Join(escaped, "|"))
}

// orderBy maps a sort mode to its ORDER BY clause. There is no relevance
// scoring in this path, so relevance (and anything unknown) degrades to
// newest-first.
func orderBy(sortBy string) string {
	switch sortBy {
	case domain.SortPriceAsc:
		return "price ASC"
	case domain.SortPriceDesc:
		return "price DESC"
	case domain.SortPopular:
		return "review_count DESC, rating DESC"
	default:
		return "created_at DESC"
	}
}

func (r *ProductRepository) scanOne(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &p.Category,
		&p.Price, &p.OriginalPrice, &p.Rating, &p.ReviewCount, &p.Stock, &p.Featured,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &p.Category,
			&p.Price, &p.OriginalPrice, &p.Rating, &p.ReviewCount, &p.Stock, &p.Featured,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// isUniqueViolation reports whether err is a unique constraint violation
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
