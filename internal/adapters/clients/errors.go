// Package clients provides HTTP client adapters for downstream services.
package clients

import "errors"

// Client errors represent failures in the HTTP client layer.
// These are distinct from domain errors; callers translate them.
var (
	// ErrRequestFailed is returned when no HTTP response was received.
	// The transport error is wrapped for context.
	ErrRequestFailed = errors.New("request failed")
)
