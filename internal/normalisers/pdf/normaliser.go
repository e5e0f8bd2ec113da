// Package pdf extracts text from PDF documents.
//
// Extraction uses pdftotext from poppler when it is installed, which keeps
// page breaks as form feeds. Without it, text-showing operators are read
// directly from the content streams, which recovers most text from
// generated documentation PDFs.
package pdf

import (
	"bytes"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers/textutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const toolName = "pdftotext"

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Normaliser handles PDF documents.
type Normaliser struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates a PDF normaliser that runs pdftotext when available.
func New() *Normaliser {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner, lookPath: exec.LookPath}
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return "PDF extraction works best with pdftotext from poppler:\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils\n" +
		"  Fedora: dnf install poppler-utils"
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// SupportedExtensions returns the filename extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts text from a PDF.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !bytes.HasPrefix(bytes.TrimLeft(raw.Content, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: %s has no PDF header", domain.ErrUnreadableSource, raw.URI)
	}

	text, toolErr := n.extractWithTool(ctx, raw.Content)
	extractor := toolName
	if toolErr != nil || strings.TrimSpace(text) == "" {
		if toolErr != nil && !errors.Is(toolErr, ErrPDFToolNotFound) {
			logger.Warn("pdftotext failed for %s, reading content streams: %v", raw.URI, toolErr)
		}
		text = extractStreams(raw.Content)
		extractor = "streams"
	}
	if strings.TrimSpace(text) == "" && toolErr != nil && !errors.Is(toolErr, ErrPDFToolNotFound) {
		return nil, fmt.Errorf("%w: pdftotext failed: %v", domain.ErrUnreadableSource, toolErr)
	}

	content := textutil.CleanText(text)
	result, err := textutil.Result(raw, extractTitle(content, raw.URI), content, "pdf")
	if err != nil {
		return nil, err
	}
	result.Document.Metadata["extractor"] = extractor
	result.Document.Metadata["pages"] = strings.Count(content, "\f") + 1
	return result, nil
}

// extractWithTool writes the PDF to a temp file and runs pdftotext on it.
func (n *Normaliser) extractWithTool(ctx context.Context, content []byte) (string, error) {
	if _, err := n.lookPath(toolName); err != nil {
		return "", ErrPDFToolNotFound
	}

	f, err := os.CreateTemp("", "docugen-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(content); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	out, err := n.runner.Run(ctx, toolName, "-enc", "UTF-8", f.Name(), "-")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// extractTitle returns the first short non-empty line, falling back to the URI.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "\x00\f"))
		if line != "" && len(line) <= 200 {
			return line
		}
	}
	return textutil.TitleFromURI(uri)
}

var (
	streamRe  = regexp.MustCompile(`(?s)<<(.*?)>>\s*stream\r?\n(.*?)\r?\nendstream`)
	textOpRe  = regexp.MustCompile(`(?s)\((?:\\.|[^\\)])*\)\s*(?:Tj|'|")|\[(?:[^\]]*)\]\s*TJ|T\*|ET`)
	literalRe = regexp.MustCompile(`\((?:\\.|[^\\)])*\)`)
)

// extractStreams recovers text from Tj/TJ operators in content streams,
// inflating FlateDecode streams. BT/ET blocks end lines.
func extractStreams(content []byte) string {
	var out strings.Builder
	for _, m := range streamRe.FindAllSubmatch(content, -1) {
		dict, data := m[1], m[2]
		if bytes.Contains(dict, []byte("/FlateDecode")) {
			inflated, err := inflate(data)
			if err != nil {
				continue
			}
			data = inflated
		} else if bytes.Contains(dict, []byte("/Filter")) {
			continue
		}

		for _, op := range textOpRe.FindAll(data, -1) {
			switch s := string(op); {
			case s == "ET" || s == "T*":
				out.WriteString("\n")
			default:
				for _, lit := range literalRe.FindAll(op, -1) {
					out.WriteString(unescape(lit[1 : len(lit)-1]))
				}
				if bytes.HasSuffix(op, []byte("'")) || bytes.HasSuffix(op, []byte("\"")) {
					out.WriteString("\n")
				}
			}
		}
		out.WriteString("\n\n")
	}
	return out.String()
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(io.LimitReader(r, 64<<20))
}

// unescape decodes PDF literal string escapes.
func unescape(s []byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '(', ')', '\\':
			b.WriteByte(s[i])
		case '\n':
		default:
			if s[i] >= '0' && s[i] <= '7' {
				v, n := 0, 0
				for n < 3 && i < len(s) && s[i] >= '0' && s[i] <= '7' {
					v = v*8 + int(s[i]-'0')
					i++
					n++
				}
				i--
				b.WriteByte(byte(v))
				continue
			}
			b.WriteByte(s[i])
		}
	}
	return strings.ToValidUTF8(b.String(), "")
}
