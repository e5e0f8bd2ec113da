package normalisers

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// genericTypes are declared types that say little about the payload.
// Servers commonly send them for Markdown or reStructuredText files.
var genericTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"binary/octet-stream":      true,
	"text/plain":               true,
}

// Registry dispatches raw documents to the highest priority normaliser
// for their resolved content type.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers = append(r.normalisers, normaliser)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Normalise resolves the content type of raw and hands it to the best
// matching normaliser. Returns domain.ErrUnsupportedType when none applies.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := r.ResolveMIMEType(raw)
	normaliser := r.find(mimeType)
	if normaliser == nil {
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedType, raw.URI, mimeType)
	}
	logger.Debug("normalising %s as %s", raw.URI, mimeType)

	resolved := *raw
	resolved.MIMEType = mimeType
	return normaliser.Normalise(ctx, &resolved)
}

// ResolveMIMEType returns the content type used for dispatch. A specific
// declared type wins, then the URI extension, then the declared type even
// if generic, then a sniff of the leading bytes.
func (r *Registry) ResolveMIMEType(raw *domain.RawDocument) string {
	declared := baseType(raw.MIMEType)
	if !genericTypes[declared] && r.find(declared) != nil {
		return declared
	}
	if byExt := r.typeForExtension(extension(raw.URI)); byExt != "" {
		return byExt
	}
	if declared != "" && r.find(declared) != nil {
		return declared
	}
	return baseType(http.DetectContentType(raw.Content))
}

// SupportedMIMETypes returns all MIME types that can be normalised, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	return r.collect(driven.Normaliser.SupportedMIMETypes)
}

// SupportedExtensions returns all filename extensions that can be normalised, sorted.
func (r *Registry) SupportedExtensions() []string {
	return r.collect(driven.Normaliser.SupportedExtensions)
}

func (r *Registry) find(mimeType string) driven.Normaliser {
	if mimeType == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if t == mimeType {
				return n
			}
		}
	}
	return nil
}

func (r *Registry) typeForExtension(ext string) string {
	if ext == "" {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.normalisers {
		for _, e := range n.SupportedExtensions() {
			if e == ext {
				if types := n.SupportedMIMETypes(); len(types) > 0 {
					return types[0]
				}
			}
		}
	}
	return ""
}

func (r *Registry) collect(get func(driven.Normaliser) []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, n := range r.normalisers {
		for _, v := range get(n) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}

// baseType strips parameters such as charset and lower-cases the type.
func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	if t, _, err := mime.ParseMediaType(contentType); err == nil {
		return t
	}
	t, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}

// extension returns the lower-cased extension of a file name or URL path.
func extension(uri string) string {
	p := uri
	if u, err := url.Parse(uri); err == nil && u.Host != "" {
		p = u.Path
	}
	return strings.ToLower(path.Ext(strings.ReplaceAll(p, "\\", "/")))
}
