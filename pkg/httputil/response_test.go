package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/t-simwa/swiftcart-catalog/pkg/errors"
	"github.com/t-simwa/swiftcart-catalog/pkg/logger"
	"github.com/t-simwa/swiftcart-catalog/pkg/validator"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestWriteData(t *testing.T) {
	w := httptest.NewRecorder()
	WriteData(w, http.StatusCreated, map[string]string{"id": "p1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Nil(t, resp.Error)
}

func TestWriteError_AppError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/products/p1", nil)

	WriteError(w, r, apperrors.NotFound("product", "p1"), logger.Discard())

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestWriteError_WrappedSentinel(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(w, r, fmt.Errorf("lookup: %w", apperrors.ErrAlreadyExists), logger.Discard())

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_EXISTS", decode(t, w).Error.Code)
}

func TestWriteError_UnknownErrorIs500(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(w, r, errors.New("pool exhausted"), logger.Discard())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	// Internal details must not leak to the client.
	assert.NotContains(t, resp.Error.Message, "pool exhausted")
}

func TestWriteValidationError(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}
	err := validator.Validate(payload{})
	require.Error(t, err)

	w := httptest.NewRecorder()
	WriteValidationError(w, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "Name")
}

func TestWriteInvalidParam(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInvalidParam(w, "page must be a positive integer")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PARAMETER", decode(t, w).Error.Code)
}
