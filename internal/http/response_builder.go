// Package http provides the JSON API server and its handlers.
//
// This file implements the Builder Pattern for constructing API responses.
// Every body is an envelope carrying the payload, an optional toast message
// for the client to show, and any reward notices produced by the request.

package http

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// ToastHeader repeats the toast message, path-escaped, for clients that only
// read headers.
const ToastHeader = "X-Toast"

type envelope struct {
	Data    any      `json:"data,omitempty"`
	Toast   string   `json:"toast,omitempty"`
	Notices []string `json:"notices,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	body       envelope
	headers    map[string]string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Data sets the payload.
func (b *ResponseBuilder) Data(v any) *ResponseBuilder {
	b.body.Data = v
	return b
}

// Toast sets the message the client shows after the request.
func (b *ResponseBuilder) Toast(message string) *ResponseBuilder {
	b.body.Toast = message
	return b
}

// Notices appends reward notices. When no toast is set the first notice
// becomes the toast.
func (b *ResponseBuilder) Notices(notices ...string) *ResponseBuilder {
	b.body.Notices = append(b.body.Notices, notices...)
	return b
}

func (b *ResponseBuilder) Error(message string) *ResponseBuilder {
	b.body.Error = message
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body.Toast == "" && len(b.body.Notices) > 0 {
		b.body.Toast = b.body.Notices[0]
	}
	if b.body.Toast != "" {
		w.Header().Set(ToastHeader, url.PathEscape(b.body.Toast))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.statusCode == http.StatusNoContent {
		return
	}
	_ = json.NewEncoder(w).Encode(b.body)
}

// ErrorResponse creates a standard error response. The message is shown
// to the user as a toast as well.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).Error(message).Toast(message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}
