package infra

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"voice-doctor/internal/domain"
)

// StatusError maps a non-2xx response from a remote API onto the error
// taxonomy. Rejected credentials become auth errors, everything else is an
// upstream failure.
func StatusError(op string, statusCode int, body []byte) error {
	kind := domain.KindUpstream
	if IsAuthHTTPStatus(statusCode) {
		kind = domain.KindAuth
	}
	return domain.Errorf(kind, op, "API error %d: %s", statusCode, truncate(string(body), 512))
}

// TransportError wraps a failure to reach the remote API at all.
// Context cancellation is passed through unchanged.
func TransportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return domain.NewError(domain.KindUpstream, op, fmt.Errorf("sending request: %w", err))
}

func IsAuthHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden
}

func IsSuccessHTTPStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
