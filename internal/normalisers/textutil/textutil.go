// Package textutil holds helpers shared by the normalisers.
package textutil

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

// Metadata keys set by every normaliser.
const (
	MetaMIMEType = "mime_type"
	MetaFormat   = "format"
)

var (
	multiSpaces   = regexp.MustCompile(`[ \t\x{00a0}]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// TitleFromURI derives a readable title from a filename or URL.
func TitleFromURI(uri string) string {
	name := uri
	if u, err := url.Parse(uri); err == nil && u.Host != "" {
		name = strings.TrimSuffix(u.Path, "/")
		if name == "" {
			return u.Host
		}
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}

// CleanText trims lines, collapses runs of spaces and keeps at most one
// blank line between paragraphs. Form feeds (page breaks) are preserved.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Trim(multiSpaces.ReplaceAllString(line, " "), " ")
	}
	s = strings.Join(lines, "\n")
	s = multiNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Result builds a NormaliseResult, failing with ErrUnreadableSource when
// no text was recovered.
func Result(raw *domain.RawDocument, title, content, format string) (*driven.NormaliseResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: no text recovered from %s", domain.ErrUnreadableSource, raw.URI)
	}
	if title == "" {
		title = TitleFromURI(raw.URI)
	}

	meta := make(map[string]any, len(raw.Metadata)+2)
	for k, v := range raw.Metadata {
		meta[k] = v
	}
	meta[MetaMIMEType] = raw.MIMEType
	meta[MetaFormat] = format

	return &driven.NormaliseResult{
		Document: domain.Document{
			URI:         raw.URI,
			Title:       title,
			ContentType: raw.MIMEType,
			Content:     content,
			Size:        int64(len(raw.Content)),
			Metadata:    meta,
		},
	}, nil
}
