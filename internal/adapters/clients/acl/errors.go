package acl

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alasharulary/alash/internal/adapters/clients"
	"github.com/alasharulary/alash/internal/domain"
)

// MapHTTPError maps an HTTP outcome to a domain error.
// It returns nil for 2xx responses.
//
// Parameters:
//   - resp: The HTTP response (may be nil for transport errors)
//   - clientErr: Any error from the HTTP client (may be nil)
//   - serviceName: Name of the external service for error context
//   - operation: The operation being performed (e.g., "load script")
//   - entityID: The entity being fetched (used for NotFoundError)
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation, entityID string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	return mapStatusCode(resp.StatusCode, serviceName, operation, entityID)
}

func mapClientError(err error, serviceName, operation string) error {
	if errors.Is(err, clients.ErrRequestFailed) {
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s: no response: %v", operation, errors.Unwrap(err)))
	}

	return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
}

func mapStatusCode(status int, serviceName, operation, entityID string) error {
	switch status {
	case http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, entityID)

	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.NewForbiddenError(operation, "credential rejected")

	case http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")

	default:
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s failed with status %d", operation, status))
	}
}
