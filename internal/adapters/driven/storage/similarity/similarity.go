// Package similarity ranks document chunks against a query. It is shared
// by the storage adapters so every backend orders results the same way.
package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// maxTermHits caps how much one repeated term contributes to a lexical score.
const maxTermHits = 3

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "how": true, "i": true,
	"in": true, "is": true, "it": true, "me": true, "my": true, "of": true,
	"on": true, "or": true, "that": true, "the": true, "this": true, "to": true,
	"with": true, "create": true, "build": true, "make": true, "using": true,
	"want": true, "please": true, "app": true, "application": true,
}

// Cosine returns the cosine similarity of two vectors, or 0 when they
// differ in length or either has zero magnitude.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Terms splits text into lower-cased words, dropping stop words and
// single characters.
func Terms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 || stopWords[f] {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// Lexical scores content by keyword overlap with the query terms.
// Each distinct query term contributes up to maxTermHits occurrences;
// the result is normalised to [0, 1].
func Lexical(queryTerms []string, content string) float64 {
	distinct := make(map[string]bool, len(queryTerms))
	for _, t := range queryTerms {
		distinct[t] = true
	}
	if len(distinct) == 0 {
		return 0
	}

	counts := make(map[string]int)
	for _, t := range Terms(content) {
		if distinct[t] {
			counts[t]++
		}
	}
	hits := 0
	for _, n := range counts {
		hits += min(n, maxTermHits)
	}
	return float64(hits) / float64(maxTermHits*len(distinct))
}

// Semantic reports whether cosine scoring applies: the query has a vector
// and every chunk carries one of the same length.
func Semantic(chunks []domain.Chunk, embedding []float32) bool {
	if len(embedding) == 0 {
		return false
	}
	for i := range chunks {
		if len(chunks[i].Embedding) != len(embedding) {
			return false
		}
	}
	return true
}

// Rank scores chunks against the query and returns the best k in
// descending score order, ties broken by ascending position. Cosine
// similarity is used when Semantic holds, keyword overlap otherwise.
func Rank(chunks []domain.Chunk, query string, embedding []float32, k int) []domain.ScoredChunk {
	if k <= 0 || len(chunks) == 0 {
		return nil
	}

	semantic := Semantic(chunks, embedding)
	terms := Terms(query)
	scored := make([]domain.ScoredChunk, len(chunks))
	for i, c := range chunks {
		var score float64
		if semantic {
			score = Cosine(embedding, c.Embedding)
		} else {
			score = Lexical(terms, c.Content)
		}
		scored[i] = domain.ScoredChunk{Chunk: c, Score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.Position < scored[j].Chunk.Position
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
