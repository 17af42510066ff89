package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveness(t *testing.T) {
	h := NewHandler()
	w := httptest.NewRecorder()

	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var report Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Equal(t, StatusUp, report.Status)
}

func TestReadiness_AllUp(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", func(context.Context) error { return nil })
	h.Register("redis", func(context.Context) error { return nil })

	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var report Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Equal(t, StatusUp, report.Status)
	assert.Len(t, report.Checks, 2)
}

func TestReadiness_OneDown(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", func(context.Context) error { return nil })
	h.Register("elasticsearch", func(context.Context) error { return errors.New("connection refused") })

	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var report Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, StatusDown, report.Checks["elasticsearch"].Status)
	assert.Equal(t, StatusUp, report.Checks["postgres"].Status)
	assert.Contains(t, report.Checks["elasticsearch"].Error, "connection refused")
}

func TestReadiness_NoCheckers(t *testing.T) {
	h := NewHandler()

	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
