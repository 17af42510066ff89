package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsMapToSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		sentinel error
		status   int
		code     string
	}{
		{"not found", NotFound("product", "p1"), ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"already exists", AlreadyExists("product", "slug", "usb-hub"), ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{"invalid input", InvalidInput("bad payload"), ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{"unavailable", Unavailable("index down"), ErrUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"internal", Internal(stderrors.New("boom")), ErrInternal, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("get product: %w", NotFound("product", "p1"))

	assert.ErrorIs(t, err, ErrNotFound)

	var appErr *AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("product", "p1")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("wrapped: %w", ErrNotFound)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("unknown")))
}
