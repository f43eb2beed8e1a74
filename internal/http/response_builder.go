// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and the error envelope every handler shares.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

// Error codes carried in the error envelope.
const (
	CodeBadRequest     = "bad_request"
	CodeInvalidInput   = "invalid_input"
	CodeUnauthorized   = "unauthorized"
	CodeNotFound       = "not_found"
	CodeNotImplemented = "not_implemented"
	CodeRateLimited    = "rate_limited"
	CodeUnavailable    = "unavailable"
	CodeInternal       = "internal"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body writes
// only the status line.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal","message":"failed to encode response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

// ErrorBody is the error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse creates an error envelope response.
func ErrorResponse(ctx context.Context, statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: trace.GetRequestID(ctx),
		}})
}

// BadRequestError creates a 400 response for malformed requests.
func BadRequestError(ctx context.Context, message string) *JSONResponseBuilder {
	return ErrorResponse(ctx, http.StatusBadRequest, CodeBadRequest, message)
}

// validationErrors are domain rule violations reported as 400.
var validationErrors = []error{
	services.ErrInvalidInput,
	session.ErrInvalidMode,
	core.ErrInvalidAmount,
	core.ErrNegativeAmount,
	core.ErrInvalidCategory,
	core.ErrInvalidRiskProfile,
	core.ErrInvalidPeriod,
	core.ErrEmptyDescription,
	core.ErrDescriptionTooLong,
	core.ErrInvalidDescription,
	core.ErrEmptyMessage,
	core.ErrEmptyName,
	core.ErrEmptyID,
}

// classify maps a service error to a status code and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, services.ErrNotAuthenticated):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, services.ErrExpenseNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, services.ErrExportNotImplemented):
		return http.StatusNotImplemented, CodeNotImplemented
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, CodeInvalidInput
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

// writeError maps err onto the error envelope. Internal errors are logged
// and their text is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		applog.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", ""))
		message = http.StatusText(status)
	}
	ErrorResponse(r.Context(), status, code, message).Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}
