// Package errors provides the sentinel errors use cases wrap and the helpers to wrap
// and inspect them.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels every domain error wraps, so transports can map any error to a status.
var (
	// ErrNotFound indicates the requested resource does not exist. Authorization
	// denials on credentials wrap it too, so callers cannot discover names.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks a valid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
)

// statusCodes is checked in order; the first sentinel found in the error tree wins.
var statusCodes = []struct {
	target error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrInvalidInput, http.StatusUnprocessableEntity},
	{ErrUnauthorized, http.StatusUnauthorized},
}

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap but formats the context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// StatusCode maps err to an HTTP status. Nil maps to 200 and errors wrapping no
// sentinel map to 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for _, sc := range statusCodes {
		if errors.Is(err, sc.target) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}
