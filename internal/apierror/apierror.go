// Package apierror provides the error envelopes returned by the JSON API.
// All errors sent to clients go through this package so that database and
// other internal details are logged, never echoed.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Error is a client-facing error rendered as {"error": Message}.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// MissingParameter reports a required query parameter that was absent.
func MissingParameter(name string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: name + " parameter is required"}
}

// NotFound reports that the named entity does not exist (or is not visible).
func NotFound(what string) *Error {
	return &Error{Status: http.StatusNotFound, Message: what + " not found"}
}

// BadRequest reports a malformed request.
func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Unauthorized reports a missing or expired admin session.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// Forbidden reports a request the session is not allowed to make yet.
func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

// Unavailable reports a feature whose backing service is not configured.
func Unavailable(msg string) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Message: msg}
}

// InternalMessage is the only text a client ever sees for a server fault.
const InternalMessage = "internal server error"

// ValidationError carries per-field messages, rendered as
// {"field": ["message", ...]}.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// Field builds a ValidationError for a single field.
func Field(name, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{name: {msg}}}
}

// Add appends a message for the given field.
func (e *ValidationError) Add(name, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[name] = append(e.Fields[name], msg)
}

// Empty reports whether no field has failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Write renders a client-facing error.
func Write(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// Respond renders err with the matching envelope. Errors that are neither
// *Error nor *ValidationError are logged and answered with a fixed 500.
func Respond(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		Write(w, apiErr.Status, apiErr.Message)
		return
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, valErr.Fields)
		return
	}

	slog.Error("request failed",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
	)
	Write(w, http.StatusInternalServerError, InternalMessage)
}
