package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t-simwa/swiftcart-catalog/internal/domain"
	"github.com/t-simwa/swiftcart-catalog/pkg/database"
	apperrors "github.com/t-simwa/swiftcart-catalog/pkg/errors"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func strPtr(s string) *string { return &s }

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var productCols = []string{
	"id", "name", "slug", "sku", "description", "category",
	"price", "original_price", "rating", "review_count", "stock", "featured",
	"created_at", "updated_at",
}

var productColsWithCount = append(append([]string{}, productCols...), "total_count")

func sampleProduct() domain.Product {
	return domain.Product{
		ID:          "prod-1",
		Name:        "Apple iPhone 15",
		Slug:        "apple-iphone-15",
		SKU:         "SKU-001",
		Description: "Latest phone",
		Category:    "Phones",
		Price:       99900,
		Rating:      4.5,
		ReviewCount: 12,
		Stock:       5,
		Featured:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func productRow(p domain.Product) []any {
	return []any{
		p.ID, p.Name, p.Slug, p.SKU, p.Description, p.Category,
		p.Price, p.OriginalPrice, p.Rating, p.ReviewCount, p.Stock, p.Featured,
		p.CreatedAt, p.UpdatedAt,
	}
}

func TestProductRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct()

	mock.ExpectExec("INSERT INTO products").
		WithArgs(
			p.ID, p.Name, p.Slug, p.SKU, p.Description, p.Category,
			p.Price, p.OriginalPrice, p.Rating, p.ReviewCount, p.Stock, p.Featured,
			p.CreatedAt, p.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create_DuplicateSlug(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct()

	mock.ExpectExec("INSERT INTO products").
		WithArgs(
			p.ID, p.Name, p.Slug, p.SKU, p.Description, p.Category,
			p.Price, p.OriginalPrice, p.Rating, p.ReviewCount, p.Stock, p.Featured,
			p.CreatedAt, p.UpdatedAt,
		).
		WillReturnError(errors.New("ERROR: duplicate key value (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &p)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestProductRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct()

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id =").
		WithArgs(p.ID).
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(productRow(p)...))

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, *got)
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id =").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(productCols))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductRepository_GetByIDs_Empty(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	products, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Search_TextAndBrand(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct()

	q := &domain.SearchQuery{
		Text:   "phone",
		Brands: []string{"Apple"},
	}
	q.Normalize()

	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs("phone", `^(Apple)([[:space:]]|$)`, 20, 0).
		WillReturnRows(pgxmock.NewRows(productColsWithCount).
			AddRow(append(productRow(p), 1)...))

	products, total, err := repo.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, p.ID, products[0].ID)
}

func TestProductRepository_Search_AllFilters(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	minPrice := int64(1000)
	maxPrice := int64(200000)
	featured := true
	q := &domain.SearchQuery{
		Category: strPtr("phones"),
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Featured: &featured,
		SortBy:   domain.SortPriceAsc,
		Page:     2,
		PerPage:  10,
	}
	q.Normalize()

	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs("%phones%", minPrice, maxPrice, featured, 10, 10).
		WillReturnRows(pgxmock.NewRows(productColsWithCount))

	products, total, err := repo.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, products)
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct()

	mock.ExpectExec("UPDATE products").
		WithArgs(
			p.Name, p.Slug, p.SKU, p.Description, p.Category,
			p.Price, p.OriginalPrice, p.Rating, p.ReviewCount,
			p.Stock, p.Featured, pgxmock.AnyArg(),
			p.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &p)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductRepository_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec("DELETE FROM products").
		WithArgs("prod-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), "prod-1"))
}

func TestBrandPattern(t *testing.T) {
	tests := []struct {
		name   string
		brands []string
		want   string
	}{
		{"single", []string{"Apple"}, `^(Apple)([[:space:]]|$)`},
		{"multiple", []string{"Apple", "Samsung"}, `^(Apple|Samsung)([[:space:]]|$)`},
		{"metachars escaped", []string{"A+B (Pro)"}, `^(A\+B \(Pro\))([[:space:]]|$)`},
		{"blank skipped", []string{"", "  ", "Sony"}, `^(Sony)([[:space:]]|$)`},
		{"all blank", []string{"", "  "}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, brandPattern(tt.brands))
		})
	}
}
