package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

type stubNormaliser struct {
	name     string
	types    []string
	exts     []string
	priority int
}

func (s *stubNormaliser) SupportedMIMETypes() []string  { return s.types }
func (s *stubNormaliser) SupportedExtensions() []string { return s.exts }
func (s *stubNormaliser) Priority() int                 { return s.priority }

func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Document: domain.Document{
		URI:         raw.URI,
		Title:       s.name,
		ContentType: raw.MIMEType,
		Content:     string(raw.Content),
	}}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{name: "fallback", types: []string{"text/plain"}, priority: 5})
	r.Register(&stubNormaliser{name: "special", types: []string{"text/plain"}, priority: 80})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		URI: "notes", MIMEType: "text/plain", Content: []byte("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "special", result.Document.Title)
}

func TestRegistry_ResolveMIMEType(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name string
		raw  *domain.RawDocument
		want string
	}{
		{"declared with charset", &domain.RawDocument{URI: "https://x.dev/guide", MIMEType: "text/html; charset=utf-8"}, "text/html"},
		{"generic declared falls to extension", &domain.RawDocument{URI: "https://raw.example.com/README.md", MIMEType: "text/plain"}, "text/markdown"},
		{"extension without declared type", &domain.RawDocument{URI: "guide.PDF"}, "application/pdf"},
		{"rst extension", &domain.RawDocument{URI: "index.rst"}, "text/plain"},
		{"generic declared kept when extension unknown", &domain.RawDocument{URI: "notes.log", MIMEType: "text/plain"}, "text/plain"},
		{"sniffed pdf", &domain.RawDocument{URI: "upload", Content: []byte("%PDF-1.7\n")}, "application/pdf"},
		{"sniffed html", &domain.RawDocument{URI: "upload", Content: []byte("<!DOCTYPE html><html></html>")}, "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveMIMEType(tt.raw))
		})
	}
}

func TestRegistry_Normalise(t *testing.T) {
	r := NewDefaultRegistry()

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		URI:     "https://docs.example.com/flask/quickstart.md",
		Content: []byte("# Quickstart\n\nInstall **Flask** with pip.\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "text/markdown", result.Document.ContentType)
	assert.Contains(t, result.Document.Content, "Install Flask with pip.")
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Normalise(context.Background(), &domain.RawDocument{
		URI:     "image.png",
		Content: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_Supported(t *testing.T) {
	r := NewDefaultRegistry()

	exts := r.SupportedExtensions()
	for _, ext := range []string{".pdf", ".md", ".markdown", ".txt", ".html", ".htm", ".rst", ".docx"} {
		assert.Contains(t, exts, ext)
	}
	assert.Contains(t, r.SupportedMIMETypes(), "application/pdf")
	assert.IsIncreasing(t, r.SupportedMIMETypes())
}
