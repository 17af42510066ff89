package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/t-simwa/swiftcart-catalog/internal/domain"
	"github.com/t-simwa/swiftcart-catalog/internal/service"
	"github.com/t-simwa/swiftcart-catalog/pkg/httputil"
	"github.com/t-simwa/swiftcart-catalog/pkg/pagination"
)

// SearchHandler handles HTTP requests for the search endpoint.
type SearchHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.CatalogService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// Search handles GET /api/v1/search
// @Summary Search the catalog
// @Description Full-text product search with filters; identical parameters to the product listing
// @Tags search
// @Produce json
// @Param q query string false "Search term"
// @Param category query string false "Filter by category name"
// @Param min_price query int false "Minimum price in cents"
// @Param max_price query int false "Maximum price in cents"
// @Param featured query bool false "Only featured products"
// @Param brands query string false "Comma-separated brand names"
// @Param sort query string false "Sort order" Enums(relevance,newest,price_asc,price_desc,popular)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/search [get]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, ok := parseSearchQuery(w, r)
	if !ok {
		return
	}

	result, err := h.service.SearchProducts(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// parseSearchQuery builds a SearchQuery from request parameters. On a bad
// parameter it writes a 400 envelope and returns ok=false.
func parseSearchQuery(w http.ResponseWriter, r *http.Request) (*domain.SearchQuery, bool) {
	p := pagination.FromRequest(r)
	query := &domain.SearchQuery{
		Text:    strings.TrimSpace(r.URL.Query().Get("q")),
		Page:    p.Page,
		PerPage: p.PerPage,
	}

	if v := r.URL.Query().Get("category"); v != "" {
		query.Category = &v
	}
	if v := r.URL.Query().Get("min_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price < 0 {
			httputil.WriteInvalidParam(w, "min_price must be a non-negative integer")
			return nil, false
		}
		query.MinPrice = &price
	}
	if v := r.URL.Query().Get("max_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price < 0 {
			httputil.WriteInvalidParam(w, "max_price must be a non-negative integer")
			return nil, false
		}
		query.MaxPrice = &price
	}
	if query.MinPrice != nil && query.MaxPrice != nil && *query.MinPrice > *query.MaxPrice {
		httputil.WriteInvalidParam(w, "min_price must not exceed max_price")
		return nil, false
	}
	if v := r.URL.Query().Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteInvalidParam(w, "featured must be true or false")
			return nil, false
		}
		query.Featured = &featured
	}
	if v := r.URL.Query().Get("brands"); v != "" {
		for _, brand := range strings.Split(v, ",") {
			brand = strings.TrimSpace(brand)
			if brand != "" {
				query.Brands = append(query.Brands, brand)
			}
		}
	}
	if v := r.URL.Query().Get("sort"); v != "" {
		if !domain.IsValidSort(v) {
			httputil.WriteInvalidParam(w, "sort must be one of: relevance, newest, price_asc, price_desc, popular")
			return nil, false
		}
		query.SortBy = v
	}

	return query, true
}
