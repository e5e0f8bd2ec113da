package driven

import (
	"context"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// Fetcher retrieves a documentation source from a URL.
type Fetcher interface {
	// Fetch downloads the resource. The body is capped at maxBytes;
	// larger bodies return domain.ErrSourceTooLarge. Network failures and
	// non-success statuses return domain.ErrUnreadableSource, and exceeding
	// the fetch timeout returns domain.ErrTimeout.
	Fetch(ctx context.Context, url string, maxBytes int64) (*domain.RawDocument, error)
}
