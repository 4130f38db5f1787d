package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable label for a failure classification. It appears verbatim
// in the "error" field of the outward error envelope.
type Kind string

const (
	KindConnectionFailure        Kind = "ConnectionFailure"
	KindTimeout                  Kind = "Timeout"
	KindAuthenticationFailure    Kind = "AuthenticationFailure"
	KindLocationNotFound         Kind = "LocationNotFound"
	KindInvalidParameter         Kind = "InvalidParameter"
	KindRateLimited              Kind = "RateLimited"
	KindUpstreamUnavailable      Kind = "UpstreamUnavailable"
	KindUnexpectedUpstreamStatus Kind = "UnexpectedUpstreamStatus"
	KindInternal                 Kind = "InternalServerError"
)

// Error is a classified failure carrying the HTTP status the API surface
// should return and optional structured detail for the envelope.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ConnectionFailure reports a transport-level failure reaching upstream.
func ConnectionFailure(message string) *Error {
	if message == "" {
		message = "Failed to connect to weather provider"
	}
	return &Error{Kind: KindConnectionFailure, Status: http.StatusServiceUnavailable, Message: message}
}

// Timeout reports that upstream did not respond within the configured deadline.
func Timeout() *Error {
	return &Error{
		Kind:    KindTimeout,
		Status:  http.StatusServiceUnavailable,
		Message: "Request to weather provider timed out",
	}
}

// AuthenticationFailure reports an upstream 401.
func AuthenticationFailure() *Error {
	return &Error{
		Kind:    KindAuthenticationFailure,
		Status:  http.StatusUnauthorized,
		Message: "Invalid API key for weather provider",
	}
}

// LocationNotFound reports an upstream 400 carrying the provider's
// no-matching-location marker. The requested location is echoed back.
func LocationNotFound(location string) *Error {
	return &Error{
		Kind:    KindLocationNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Location %q not found", location),
		Details: map[string]any{"requested_location": location},
	}
}

// InvalidParameter reports a rejected parameter, either from local validation
// or from an upstream 400 that is not a location-not-found.
func InvalidParameter(parameter string, value any, details map[string]any) *Error {
	return &Error{
		Kind:    KindInvalidParameter,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Invalid parameter %q with value %v", parameter, value),
		Details: details,
	}
}

// RateLimited reports an upstream 429.
func RateLimited() *Error {
	return &Error{
		Kind:    KindRateLimited,
		Status:  http.StatusTooManyRequests,
		Message: "Weather provider rate limit exceeded",
	}
}

// UpstreamUnavailable reports any upstream 5xx.
func UpstreamUnavailable() *Error {
	return &Error{
		Kind:    KindUpstreamUnavailable,
		Status:  http.StatusServiceUnavailable,
		Message: "Weather provider is temporarily unavailable",
	}
}

// UnexpectedUpstreamStatus reports a status outside the mapped set. The actual
// status goes into the detail map.
func UnexpectedUpstreamStatus(status int) *Error {
	return &Error{
		Kind:    KindUnexpectedUpstreamStatus,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("Unexpected response status from weather provider: %d", status),
		Details: map[string]any{"upstream_status": status},
	}
}

// Internal is the catch-all for unclassified failures. Raw internals never
// reach the client; the underlying error stays server-side.
func Internal() *Error {
	return &Error{
		Kind:    KindInternal,
		Status:  http.StatusInternalServerError,
		Message: "An unexpected error occurred",
	}
}

// From returns err as a classified *Error, wrapping anything unclassified as
// Internal so every failure path resolves to exactly one kind.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal()
}
