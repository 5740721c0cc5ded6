// Package http provides the JSON REST API.
//
// This file implements a small builder for JSON responses and the mapping
// from domain errors to status codes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"budgetwise/internal/core"
	"budgetwise/internal/log"
	"budgetwise/internal/storage"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

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

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body writes none.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string, details ...string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Message: message, Errors: details})
}

func BadRequestError(message string, details ...string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message, details...)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}

// StatusFor maps an error to the status code of its response.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrAmbiguousConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Server errors are logged and their text is not
// sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		if status == http.StatusGatewayTimeout {
			ErrorResponse(status, "request timed out").Write(w)
			return
		}
		InternalServerError().Write(w)
		return
	}

	msg := http.StatusText(status)
	switch status {
	case http.StatusBadRequest:
		msg = "invalid request"
	case http.StatusNotFound:
		msg = "not found"
	case http.StatusConflict:
		msg = "conflict"
	case http.StatusUnprocessableEntity:
		msg = "ambiguous configuration"
	}
	ErrorResponse(status, msg, errorDetails(err)...).Write(w)
}

// errorDetails flattens joined errors into one message each.
func errorDetails(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, errorDetails(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
