package technology

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Ensure Resolver implements the interface.
var _ driven.TechnologyResolver = (*Resolver)(nil)

// Resolver picks a technology profile from an explicit hint or by
// counting trigger keywords.
type Resolver struct {
	*Registry
}

// NewResolver creates a resolver over the given registry.
// A nil registry selects the embedded profiles.
func NewResolver(registry *Registry) *Resolver {
	if registry == nil {
		registry = Default()
	}
	return &Resolver{Registry: registry}
}

// Resolve returns the hinted profile when the hint names a known
// technology. Otherwise every profile is scored by the number of trigger
// occurrences across texts; the highest score wins, ties go to the
// earlier profile, and no hits at all yields the unknown profile.
//
// An unrecognised hint is ignored and reported through the warning.
func (r *Resolver) Resolve(hint string, texts ...string) (*domain.TechnologyProfile, string) {
	var warning string
	if strings.TrimSpace(hint) != "" {
		id := domain.ParseTechnologyID(hint)
		if p, ok := r.byID[id]; ok && !id.IsUnknown() {
			logger.Debug("technology: explicit hint %s", id)
			return p, ""
		}
		warning = fmt.Sprintf("unknown technology %q ignored; inferring from prompt", hint)
		logger.Warn("%s", warning)
	}

	text := strings.ToLower(strings.Join(texts, "\n"))
	var (
		best      *domain.TechnologyProfile
		bestScore int
	)
	for _, p := range r.profiles {
		score := Score(p, text)
		logger.Debug("technology: %s scored %d", p.ID, score)
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	if best == nil {
		return r.unknown, warning
	}
	return best, warning
}

// Score counts whole-word occurrences of the profile's triggers in text.
// text must already be lower case.
func Score(p *domain.TechnologyProfile, text string) int {
	score := 0
	for _, trigger := range p.Triggers {
		score += countWord(text, trigger)
	}
	return score
}

// Mentions reports whether text contains any of words as a whole word,
// ignoring case.
func Mentions(text string, words ...string) bool {
	text = strings.ToLower(text)
	for _, w := range words {
		if countWord(text, strings.ToLower(w)) > 0 {
			return true
		}
	}
	return false
}

// countWord counts occurrences of word in text that are not embedded in a
// longer identifier, so "react" does not match "reactive".
func countWord(text, word string) int {
	if word == "" {
		return 0
	}
	count := 0
	for offset := 0; ; {
		i := strings.Index(text[offset:], word)
		if i < 0 {
			return count
		}
		start := offset + i
		end := start + len(word)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
		}
		offset = start + 1
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
