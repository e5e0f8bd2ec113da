// Package markdown extracts text from Markdown documentation.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers/textutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// SupportedExtensions returns the filename extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts a markdown document to plain text.
// Code blocks keep their contents since examples are the most useful part
// of technical documentation; fences and inline markup are removed.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	rawContent := string(raw.Content)
	title := extractMarkdownTitle(rawContent)
	content := textutil.CleanText(stripMarkdown(rawContent))

	return textutil.Result(raw, title, content, "markdown")
}

// Pre-compiled regular expressions for markdown stripping.
var (
	fence        = regexp.MustCompile("(?m)^[ \\t]*(```|~~~).*$")
	frontMatter  = regexp.MustCompile("(?s)\\A---\\n.*?\\n---\\n")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.*?)[ \t]*#*[ \t]*$`)
	strong       = regexp.MustCompile(`(\*\*|\*)([^*\s](?:[^*]*[^*\s])?)(\*\*|\*)`)
	underscored  = regexp.MustCompile(`\b(__|_)([^_\s](?:[^_]*[^_\s])?)(__|_)\b`)
	blockquote   = regexp.MustCompile(`(?m)^>[ \t]?`)
	hr           = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	listMarkers  = regexp.MustCompile(`(?m)^([ \t]*)[-*+][ \t]+`)
	numberedList = regexp.MustCompile(`(?m)^([ \t]*)\d+[.)][ \t]+`)
	tableRule    = regexp.MustCompile(`(?m)^[ \t]*\|?[ \t]*:?-{3,}.*$`)
	htmlTags     = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
)

// extractMarkdownTitle returns the first H1 heading, or "" to fall back to the URI.
func extractMarkdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.Trim(line, "#"))
		}
	}
	return ""
}

// stripMarkdown removes markdown formatting while keeping text and code.
// Headings are isolated as their own paragraphs so the chunker sees them.
func stripMarkdown(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = frontMatter.ReplaceAllString(content, "")
	content = fence.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "\n$1\n")
	content = hr.ReplaceAllString(content, "")
	content = tableRule.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "$1")
	content = numberedList.ReplaceAllString(content, "$1")
	content = blockquote.ReplaceAllString(content, "")
	content = strong.ReplaceAllString(content, "$2")
	content = underscored.ReplaceAllString(content, "$2")
	content = htmlTags.ReplaceAllString(content, "")
	return content
}
