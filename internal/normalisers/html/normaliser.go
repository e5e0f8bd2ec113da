// Package html extracts readable text from HTML pages.
package html

import (
	"bytes"
	"context"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers/textutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// SupportedExtensions returns the filename extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts an HTML document to plain text.
// Script, style and other non-content elements are dropped; block elements
// become paragraph breaks and preformatted text keeps its line structure.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title, content, err := extract(ctx, raw.Content)
	if err != nil {
		return nil, err
	}

	return textutil.Result(raw, title, content, "html")
}

// skipped elements contribute no text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Button:   true,
}

// paragraph elements are separated from their neighbours by a blank line.
var paragraph = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Pre: true, atom.Blockquote: true, atom.Table: true, atom.Ul: true, atom.Ol: true,
	atom.Header: true, atom.Footer: true, atom.Main: true, atom.Dl: true,
}

// line elements end the current line.
var line = map[atom.Atom]bool{
	atom.Br: true, atom.Li: true, atom.Tr: true, atom.Hr: true, atom.Dt: true, atom.Dd: true,
}

// extract walks the token stream once.
func extract(ctx context.Context, content []byte) (string, string, error) {
	z := html.NewTokenizer(bytes.NewReader(content))

	var (
		out       strings.Builder
		title     strings.Builder
		skipDepth int
		inTitle   bool
		inPre     int
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", "", err
			}
			return strings.TrimSpace(title.String()), textutil.CleanText(out.String()), nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case skipped[a]:
				if tt == html.StartTagToken {
					skipDepth++
				}
			case a == atom.Title:
				inTitle = tt == html.StartTagToken
			case a == atom.Pre:
				inPre++
				out.WriteString("\n\n")
			case paragraph[a]:
				out.WriteString("\n\n")
			case line[a]:
				out.WriteString("\n")
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case skipped[a]:
				if skipDepth > 0 {
					skipDepth--
				}
			case a == atom.Title:
				inTitle = false
			case a == atom.Pre:
				if inPre > 0 {
					inPre--
				}
				out.WriteString("\n\n")
			case paragraph[a]:
				out.WriteString("\n\n")
			case line[a], a == atom.Td, a == atom.Th:
				out.WriteString("\n")
			}

		case html.TextToken:
			if err := ctx.Err(); err != nil {
				return "", "", err
			}
			if skipDepth > 0 {
				continue
			}
			text := string(z.Text())
			if inTitle {
				title.WriteString(text)
				continue
			}
			if inPre == 0 {
				text = strings.Join(strings.Fields(text), " ")
				if text == "" {
					continue
				}
				out.WriteString(" ")
			}
			out.WriteString(text)
		}
	}
}
