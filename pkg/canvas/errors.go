package canvas

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnauthorized is returned for HTTP 401: the token is missing, expired or
// revoked.
var ErrUnauthorized = errors.New("canvas: unauthorized, check your API token")

// APIError is any other 4xx or 5xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("canvas: HTTP %d", e.Status)
	}
	return fmt.Sprintf("canvas: HTTP %d: %s", e.Status, e.Message)
}

// RateLimitError is returned for HTTP 429.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("canvas: rate limited, retry after %.1fs", e.RetryAfter.Seconds())
}

// IsRetryable reports whether err is worth retrying on the next sync cycle
// without user intervention.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrUnauthorized) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return true
}
