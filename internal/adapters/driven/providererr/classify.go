// Package providererr maps transport and SDK failures from AI providers onto
// the domain error kinds that services branch on.
package providererr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// Classify wraps err with domain.ErrTimeout, domain.ErrProviderUnavailable or
// domain.ErrMalformedResponse. Errors that already carry one of those kinds
// are returned unchanged.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrTimeout) ||
		errors.Is(err, domain.ErrProviderUnavailable) ||
		errors.Is(err, domain.ErrMalformedResponse) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", domain.ErrTimeout, provider, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %w", domain.ErrTimeout, provider, err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "timeout") {
		return fmt.Errorf("%w: %s: %w", domain.ErrTimeout, provider, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrProviderUnavailable, provider, err)
}

// Status classifies an HTTP status code reported by a provider SDK.
// 429 is reported as both rate limited and unavailable.
func Status(provider string, code int, err error) error {
	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: %s: %w", domain.ErrProviderUnavailable, domain.ErrRateLimited, provider, err)
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s: %w", domain.ErrTimeout, provider, err)
	default:
		return fmt.Errorf("%w: %s returned status %d: %w", domain.ErrProviderUnavailable, provider, code, err)
	}
}

// Malformed reports a response that could not be used.
func Malformed(provider, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrMalformedResponse, provider, fmt.Sprintf(format, args...))
}
