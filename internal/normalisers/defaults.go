package normalisers

import (
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers/docx"
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers/html"
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers/markdown"
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers/pdf"
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers/plaintext"
)

// RegisterDefaults registers the built-in normalisers.
func RegisterDefaults(r *Registry) {
	r.Register(pdf.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(plaintext.New())
}

// NewDefaultRegistry returns a registry with the built-in normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
