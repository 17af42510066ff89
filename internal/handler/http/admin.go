package http

import (
	"log/slog"
	"net/http"

	"github.com/t-simwa/swiftcart-catalog/internal/service"
	"github.com/t-simwa/swiftcart-catalog/pkg/httputil"
	"github.com/t-simwa/swiftcart-catalog/pkg/validator"
)

// AdminHandler handles operational endpoints: full reindex and explicit
// cache invalidation.
type AdminHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.CatalogService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service: svc,
		logger:  logger,
	}
}

// InvalidateCacheRequest is the JSON request body for cache invalidation.
type InvalidateCacheRequest struct {
	Pattern string `json:"pattern" validate:"required,min=1,max=200"`
}

// Reindex handles POST /api/v1/admin/reindex
// @Summary Rebuild the search index from the document store
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/admin/reindex [post]
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Reindex(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, stats)
}

// InvalidateCache handles POST /api/v1/admin/cache/invalidate
// @Summary Drop cached responses matching a glob pattern
// @Tags admin
// @Accept json
// @Produce json
// @Param request body InvalidateCacheRequest true "Glob pattern, e.g. products:*"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/admin/cache/invalidate [post]
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req InvalidateCacheRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	removed := h.service.InvalidateCache(r.Context(), req.Pattern)

	httputil.WriteData(w, http.StatusOK, map[string]int{"removed": removed})
}
