// Package fetch retrieves documentation sources over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

// Defaults for the HTTP fetcher.
const (
	DefaultUserAgent = "docugen/1.0 (+documentation ingestion)"
	maxRedirects     = 5
)

// Ensure HTTPFetcher implements the interface.
var _ driven.Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher downloads documentation pages and files.
type HTTPFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures the fetcher.
type Option func(*HTTPFetcher)

// WithClient replaces the HTTP client. Its own timeout is left untouched.
func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// New creates a fetcher whose requests are bounded by timeout.
func New(timeout time.Duration, opts ...Option) *HTTPFetcher {
	if timeout <= 0 {
		timeout = domain.DefaultFetchTimeout
	}
	f := &HTTPFetcher{
		client: &http.Client{
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		timeout:   timeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads url. Bodies larger than maxBytes are rejected without
// being read in full.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, maxBytes int64) (*domain.RawDocument, error) {
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxSourceBytes
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/markdown,text/plain;q=0.9,application/pdf;q=0.8,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classify(ctx, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s: %s", domain.ErrUnreadableSource, url, resp.Status)
	}
	if resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("%w: %s declares %d bytes, limit %d",
			domain.ErrSourceTooLarge, url, resp.ContentLength, maxBytes)
	}

	// Read one byte past the cap to detect oversize bodies.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, f.classify(ctx, url, err)
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrSourceTooLarge, url, maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}

	return &domain.RawDocument{
		URI:      url,
		MIMEType: contentType,
		Content:  body,
		Metadata: map[string]any{
			"final_url":   resp.Request.URL.String(),
			"status_code": resp.StatusCode,
		},
	}, nil
}

func (f *HTTPFetcher) classify(ctx context.Context, url string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: fetching %s took longer than %s", domain.ErrTimeout, url, f.timeout)
	}
	return fmt.Errorf("%w: GET %s: %v", domain.ErrUnreadableSource, url, err)
}
