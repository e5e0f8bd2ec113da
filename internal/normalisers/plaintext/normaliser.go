// Package plaintext handles plain text and reStructuredText sources.
package plaintext

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers/textutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxControlRatio is the share of control characters above which input is treated as binary.
const maxControlRatio = 0.1

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/x-rst",
		"text/prs.fallenstein.rst",
		"text/csv",
		"text/yaml",
		"application/json",
		"application/xml",
		"text/xml",
	}
}

// SupportedExtensions returns the filename extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt", ".text", ".rst"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise returns the text content of a raw document.
// reStructuredText section adornments are removed so headings read as plain lines.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if looksBinary(raw.Content) {
		return nil, fmt.Errorf("%w: %s is not text", domain.ErrUnreadableSource, raw.URI)
	}

	content := strings.ToValidUTF8(string(raw.Content), "")
	format := "plaintext"
	title := ""
	if isRST(raw) {
		format = "rst"
		title, content = stripRST(content)
	}

	return textutil.Result(raw, title, textutil.CleanText(content), format)
}

var (
	rstDirective = regexp.MustCompile(`(?m)^\.\. [a-z-]+::.*$`)
	rstRole      = regexp.MustCompile(`:[a-z]+:\x60([^\x60]+)\x60`)
	rstLiteral   = regexp.MustCompile("\x60\x60([^\x60]+)\x60\x60")
)

func isRST(raw *domain.RawDocument) bool {
	return strings.Contains(raw.MIMEType, "rst") || strings.EqualFold(path.Ext(raw.URI), ".rst")
}

// stripRST removes adornment lines, directives and inline roles.
// The title is the first line that carries an adornment.
func stripRST(content string) (string, string) {
	content = rstDirective.ReplaceAllString(content, "")
	content = rstRole.ReplaceAllString(content, "$1")
	content = rstLiteral.ReplaceAllString(content, "$1")

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	title := ""
	for i, line := range lines {
		if !isAdornment(line) {
			out = append(out, line)
			continue
		}
		// An underline closes a heading: isolate it as a paragraph
		if i > 0 && strings.TrimSpace(lines[i-1]) != "" && len(out) > 0 {
			heading := strings.TrimSpace(out[len(out)-1])
			if title == "" {
				title = heading
			}
			out[len(out)-1] = "\n" + heading
			out = append(out, "")
		}
	}
	return title, strings.Join(out, "\n")
}

// adornmentChars are the punctuation characters RST accepts for section lines.
const adornmentChars = "=-~^\"'`#*+:._"

// isAdornment reports whether line is a run of one adornment character.
func isAdornment(line string) bool {
	line = strings.TrimRight(line, " \t")
	if len(line) < 3 || !strings.ContainsRune(adornmentChars, rune(line[0])) {
		return false
	}
	return strings.Count(line, line[:1]) == len(line)
}

// looksBinary reports whether content is mostly control characters or invalid UTF-8.
func looksBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	control := 0
	total := 0
	for _, r := range string(content) {
		total++
		if r == utf8.RuneError || (unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' && r != '\f') {
			control++
		}
	}
	return float64(control)/float64(total) > maxControlRatio
}
