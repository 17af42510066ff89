package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t-simwa/swiftcart-catalog/internal/cache"
	"github.com/t-simwa/swiftcart-catalog/internal/domain"
	"github.com/t-simwa/swiftcart-catalog/internal/search"
	"github.com/t-simwa/swiftcart-catalog/internal/search/index/memory"
	"github.com/t-simwa/swiftcart-catalog/internal/service"
	apperrors "github.com/t-simwa/swiftcart-catalog/pkg/errors"
	"github.com/t-simwa/swiftcart-catalog/pkg/health"
	"github.com/t-simwa/swiftcart-catalog/pkg/httputil"
	"github.com/t-simwa/swiftcart-catalog/pkg/logger"
)

// stubRepo is a minimal in-memory ProductRepository for endpoint tests.
type stubRepo struct {
	products map[string]domain.Product
}

func newStubRepo(products ...domain.Product) *stubRepo {
	r := &stubRepo{products: make(map[string]domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *stubRepo) Create(_ context.Context, p *domain.Product) error {
	for _, existing := range r.products {
		if existing.Slug == p.Slug {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
	}
	r.products[p.ID] = *p
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &p, nil
}

func (r *stubRepo) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for _, p := range r.products {
		if p.Slug == slug {
			out := p
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("product", slug)
}

func (r *stubRepo) GetByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubRepo) Search(_ context.Context, q *domain.SearchQuery) ([]domain.Product, int, error) {
	var out []domain.Product
	for _, p := range r.products {
		if q.Text == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Text)) {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (r *stubRepo) ListBatch(_ context.Context, offset, limit int) ([]domain.Product, error) {
	if offset > 0 {
		return []domain.Product{}, nil
	}
	var out []domain.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return apperrors.NotFound("product", p.ID)
	}
	r.products[p.ID] = *p
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return apperrors.NotFound("product", id)
	}
	delete(r.products, id)
	return nil
}

func newTestRouter(products ...domain.Product) http.Handler {
	log := logger.Discard()
	repo := newStubRepo(products...)
	idx := memory.New()
	syncer := search.NewSyncer(repo, idx, log)
	for _, p := range products {
		syncer.IndexOne(context.Background(), &p)
	}
	svc := service.NewCatalogService(
		repo,
		search.NewRouter(repo, idx, log),
		syncer,
		cache.Disabled(log),
		log,
	)
	return NewRouter(svc, health.NewHandler(), RouterConfig{}, log)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func fixtureProduct() domain.Product {
	return domain.Product{
		ID:        "3b5fae8a-4c9e-4f7e-9a1d-08f1f35a2206",
		Name:      "Wireless Mouse",
		Slug:      "wireless-mouse",
		SKU:       "WM-100",
		Category:  "Accessories",
		Price:     2999,
		Stock:     5,
		CreatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestListProducts(t *testing.T) {
	router := newTestRouter(fixtureProduct())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusOK, resp.Status)
	require.NotNil(t, resp.Data)
}

func TestListProducts_InvalidPrice(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?min_price=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestListProducts_PriceRangeInverted(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?min_price=500&max_price=100", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProduct_ByID(t *testing.T) {
	p := fixtureProduct()
	router := newTestRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+p.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestGetProduct_BySlug(t *testing.T) {
	router := newTestRouter(fixtureProduct())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/wireless-mouse", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetProduct_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestCreateProduct(t *testing.T) {
	router := newTestRouter()

	body := `{"name":"Mechanical Keyboard","sku":"KB-001","category":"Accessories","price":12900,"stock":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusCreated, resp.Status)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var created domain.Product
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, "mechanical-keyboard", created.Slug)
	assert.NotEmpty(t, created.ID)
}

func TestCreateProduct_ValidationFailure(t *testing.T) {
	router := newTestRouter()

	// Missing required sku and category.
	body := `{"name":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Fields)
}

func TestCreateProduct_RejectsBodyOver1MB(t *testing.T) {
	router := newTestRouter()

	large := strings.Repeat("x", 1<<20+1)
	body := fmt.Sprintf(`{"name":"big","sku":"B-1","category":"Misc","description":%q}`, large)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProduct(t *testing.T) {
	p := fixtureProduct()
	router := newTestRouter(p)

	body := `{"price":1999}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+p.ID, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateProduct_InvalidID(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/not-a-uuid", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProduct(t *testing.T) {
	p := fixtureProduct()
	router := newTestRouter(p)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+p.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/"+p.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearch(t *testing.T) {
	router := newTestRouter(fixtureProduct())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=mouse", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Data)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result domain.SearchResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, domain.BackendIndex, result.Backend)
}

func TestSearch_InvalidSort(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?sort=alphabetical", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminReindex(t *testing.T) {
	router := newTestRouter(fixtureProduct())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reindex", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Data)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var stats search.ReindexStats
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 1, stats.Indexed)
}

func TestAdminReindex_IndexDown(t *testing.T) {
	log := logger.Discard()
	repo := newStubRepo(fixtureProduct())
	svc := service.NewCatalogService(
		repo,
		search.NewRouter(repo, nil, log),
		search.NewSyncer(repo, nil, log),
		cache.Disabled(log),
		log,
	)
	router := NewRouter(svc, health.NewHandler(), RouterConfig{}, log)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reindex", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
}

func TestAdminInvalidateCache(t *testing.T) {
	router := newTestRouter()

	body := `{"pattern":"products:*"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/cache/invalidate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
