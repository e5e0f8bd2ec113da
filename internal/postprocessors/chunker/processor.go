// Package chunker provides a boundary-aware text chunking processor.
//
// Text is split at paragraph boundaries first, then at sentence
// boundaries, and only then at word or character positions. Units are
// packed greedily into chunks of at most the target token count, and each
// chunk after the first is prefixed with the tail of its predecessor.
package chunker

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/tokens"
)

// DefaultTargetTokens is the default chunk budget in tokens.
const DefaultTargetTokens = domain.DefaultChunkTokens

// DefaultOverlap is the default share of the budget repeated between chunks.
const DefaultOverlap = domain.DefaultChunkOverlap

// chunkNamespace scopes deterministic chunk IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("docugen/chunk"))

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// Processor splits document content into boundary-aware chunks.
// It implements the PostProcessor interface.
type Processor struct {
	targetTokens int
	overlap      float64
	counter      tokens.Counter
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithTargetTokens sets the chunk budget in tokens.
func WithTargetTokens(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.targetTokens = n
		}
	}
}

// WithOverlap sets the overlap as a fraction of the budget.
func WithOverlap(fraction float64) Option {
	return func(p *Processor) {
		if fraction >= 0 {
			p.overlap = fraction
		}
	}
}

// WithCounter sets the token counter.
func WithCounter(c tokens.Counter) Option {
	return func(p *Processor) {
		if c != nil {
			p.counter = c
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		targetTokens: DefaultTargetTokens,
		overlap:      DefaultOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must leave room for new content
	if p.overlap >= 1 {
		p.overlap = DefaultOverlap
	}
	if p.counter == nil {
		p.counter = tokens.Default()
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkID returns the deterministic ID of the chunk at position in a document.
func ChunkID(documentID string, position int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s/%d", documentID, position))).String()
}

// unit is an indivisible piece of text no larger than the unit budget.
type unit struct {
	text    string
	sep     string // joins the unit to the text before it
	page    int
	heading string
}

// part is a slice of an oversized paragraph and its joining separator.
type part struct {
	text string
	sep  string
}

// piece is a packed chunk before it becomes a domain.Chunk.
type piece struct {
	text    string
	page    int
	heading string
}

const (
	paragraphSep = "\n\n"
	wordSep      = " "
)

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	units, paged, err := p.segment(ctx, doc.Content)
	if err != nil {
		return nil, err
	}
	pieces := p.pack(units)

	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, pc := range pieces {
		meta := map[string]any{
			domain.ChunkMetaTokens: p.counter.Count(pc.text),
		}
		if pc.heading != "" {
			meta[domain.ChunkMetaHeading] = pc.heading
		}
		if paged {
			meta[domain.ChunkMetaPage] = pc.page
		}
		chunks = append(chunks, domain.Chunk{
			ID:         ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			Content:    pc.text,
			Position:   i,
			Metadata:   meta,
		})
	}

	return chunks, nil
}

// overlapBudget is the number of tokens repeated from a chunk into the next.
func (p *Processor) overlapBudget() int {
	return int(float64(p.targetTokens) * p.overlap)
}

// unitBudget leaves room for the overlap tail in every chunk after the first.
func (p *Processor) unitBudget() int {
	return max(1, p.targetTokens-p.overlapBudget())
}

// segment breaks content into units that each fit the unit budget.
// Form feeds separate pages, as emitted by PDF extraction.
func (p *Processor) segment(ctx context.Context, content string) ([]unit, bool, error) {
	pages := strings.Split(content, "\f")
	paged := len(pages) > 1
	budget := p.unitBudget()

	var units []unit
	heading := ""
	for pageIdx, page := range pages {
		for _, para := range paragraphBreak.Split(page, -1) {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			if isHeading(para) {
				heading = strings.TrimSpace(strings.TrimLeft(para, "#"))
			}

			parts := []part{{text: para}}
			if p.counter.Count(para) > budget {
				parts = p.splitOversized(para, budget)
			}
			for i, pt := range parts {
				sep := pt.sep
				if i == 0 {
					sep = paragraphSep
				}
				units = append(units, unit{
					text:    pt.text,
					sep:     sep,
					page:    pageIdx + 1,
					heading: heading,
				})
			}
		}
	}
	return units, paged, nil
}

// splitOversized splits a paragraph at sentence boundaries, hard-splitting
// any sentence that still exceeds the budget.
func (p *Processor) splitOversized(para string, budget int) []part {
	var out []part
	for _, sentence := range splitSentences(para) {
		if p.counter.Count(sentence) <= budget {
			out = append(out, part{text: sentence, sep: wordSep})
			continue
		}
		out = append(out, p.hardSplit(sentence, budget)...)
	}
	return out
}

// hardSplit packs words greedily and splits single words that exceed the
// budget. Pieces of one word are joined without a separator.
func (p *Processor) hardSplit(s string, budget int) []part {
	var out []part
	cur := ""
	for _, w := range strings.Fields(s) {
		if p.counter.Count(w) > budget {
			if cur != "" {
				out = append(out, part{text: cur, sep: wordSep})
				cur = ""
			}
			for i, runes := range p.splitWord(w, budget) {
				sep := ""
				if i == 0 {
					sep = wordSep
				}
				out = append(out, part{text: runes, sep: sep})
			}
			continue
		}
		if cur == "" {
			cur = w
			continue
		}
		if candidate := cur + wordSep + w; p.counter.Count(candidate) <= budget {
			cur = candidate
			continue
		}
		out = append(out, part{text: cur, sep: wordSep})
		cur = w
	}
	if cur != "" {
		out = append(out, part{text: cur, sep: wordSep})
	}
	return out
}

// splitWord cuts a run without spaces into rune slices that fit the budget.
func (p *Processor) splitWord(w string, budget int) []string {
	var out []string
	runes := []rune(w)
	for len(runes) > 0 {
		n := min(budget, len(runes))
		for n > 1 && p.counter.Count(string(runes[:n])) > budget {
			n /= 2
		}
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}

// pack joins units into pieces within the budget. Every piece after the
// first starts with the tail of its predecessor.
func (p *Processor) pack(units []unit) []piece {
	var out []piece
	var cur piece
	for _, u := range units {
		if cur.text == "" {
			cur = piece{text: u.text, page: u.page, heading: u.heading}
			continue
		}
		if candidate := cur.text + u.sep + u.text; p.counter.Count(candidate) <= p.targetTokens {
			cur.text = candidate
			continue
		}
		out = append(out, cur)
		cur = p.carry(cur.text, u)
	}
	if cur.text != "" {
		out = append(out, cur)
	}
	return out
}

// carry starts a piece with u, prefixed by the largest tail of prev that
// keeps the piece within the budget.
func (p *Processor) carry(prev string, u unit) piece {
	next := piece{text: u.text, page: u.page, heading: u.heading}
	for budget := p.overlapBudget(); budget > 0; budget-- {
		tail := p.tail(prev, budget)
		if tail == "" {
			break
		}
		if candidate := tail + u.sep + u.text; p.counter.Count(candidate) <= p.targetTokens {
			next.text = candidate
			break
		}
	}
	return next
}

// tail returns the longest word suffix of text within budget tokens. When
// the last word alone is over budget, its longest rune suffix is used.
func (p *Processor) tail(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	tail := ""
	for i := len(words) - 1; i >= 0; i-- {
		candidate := strings.Join(words[i:], wordSep)
		if p.counter.Count(candidate) > budget {
			break
		}
		tail = candidate
	}
	if tail != "" {
		return tail
	}
	runes := []rune(words[len(words)-1])
	for i := 1; i < len(runes); i++ {
		if candidate := string(runes[i:]); p.counter.Count(candidate) <= budget {
			return candidate
		}
	}
	return ""
}

// splitSentences cuts after '.', '!' or '?' followed by whitespace.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i < len(text) {
			next, _ := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(next) {
				continue
			}
		}
		if s := strings.TrimSpace(text[start:i]); s != "" {
			out = append(out, s)
		}
		start = i
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// isHeading reports whether a paragraph looks like a section title.
func isHeading(para string) bool {
	if strings.HasPrefix(para, "#") {
		return true
	}
	if strings.ContainsRune(para, '\n') || len(para) > 80 {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(para)
	if strings.ContainsRune(".!?,;:)", last) {
		return false
	}
	return len(strings.Fields(para)) <= 10 && strings.IndexFunc(para, unicode.IsLetter) >= 0
}
