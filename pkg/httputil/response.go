package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/t-simwa/swiftcart-catalog/pkg/errors"
	"github.com/t-simwa/swiftcart-catalog/pkg/logger"
	"github.com/t-simwa/swiftcart-catalog/pkg/validator"
)

// Response is the JSON envelope returned by every endpoint. The same envelope
// (success, status, data) is what the response cache stores, so cached and
// freshly computed payloads are indistinguishable to clients.
type Response struct {
	Success bool           `json:"success"`
	Status  int            `json:"status"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse carries error details inside the envelope.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// OK builds a success envelope for the given status and payload.
func OK(status int, data any) Response {
	return Response{Success: true, Status: status, Data: data}
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a success envelope with the given status and payload.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, OK(status, data))
}

// WriteError writes an error envelope derived from err. Internal errors are
// logged with the request-scoped logger when one is mounted, falling back to
// the given logger otherwise.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	requestID := logger.RequestIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			l.ErrorContext(r.Context(), "request failed",
				slog.String("error", appErr.Error()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
		}
		WriteJSON(w, appErr.Status, Response{
			Success: false,
			Status:  appErr.Status,
			Error:   &ErrorResponse{Code: appErr.Code, Message: appErr.Message, RequestID: requestID},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
		message = "resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		code = "ALREADY_EXISTS"
		message = "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput):
		code = "INVALID_INPUT"
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnavailable):
		code = "SERVICE_UNAVAILABLE"
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{
		Success: false,
		Status:  status,
		Error:   &ErrorResponse{Code: code, Message: message, RequestID: requestID},
	})
}

// WriteValidationError writes a 400 envelope with per-field messages when err
// is a validator.ValidationError.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Status:  http.StatusBadRequest,
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Status:  http.StatusBadRequest,
		Error:   &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

// WriteInvalidParam writes a 400 envelope for a bad query or path parameter.
func WriteInvalidParam(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Status:  http.StatusBadRequest,
		Error:   &ErrorResponse{Code: "INVALID_PARAMETER", Message: message},
	})
}
