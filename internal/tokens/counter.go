// Package tokens counts model tokens for chunk budgets and context caps.
package tokens

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Counter reports the number of tokens in a text.
type Counter interface {
	Count(text string) int
}

// TiktokenCounter counts with the GPT-4 (cl100k) encoding.
// A nil codec degrades to the 4-characters-per-token estimate.
type TiktokenCounter struct {
	codec tokenizer.Codec
}

var (
	defaultOnce    sync.Once
	defaultCounter *TiktokenCounter
)

// Default returns a shared counter. The codec is loaded once.
func Default() *TiktokenCounter {
	defaultOnce.Do(func() {
		defaultCounter = NewTiktoken()
	})
	return defaultCounter
}

// NewTiktoken creates a counter using the GPT-4 encoding.
func NewTiktoken() *TiktokenCounter {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return &TiktokenCounter{}
	}
	return &TiktokenCounter{codec: codec}
}

// Count returns the number of tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c == nil || c.codec == nil {
		return Estimate(text)
	}
	n, err := c.codec.Count(text)
	if err != nil {
		return Estimate(text)
	}
	return n
}

// Estimate approximates tokens as one per four bytes, rounding up.
func Estimate(text string) int {
	return (len(text) + 3) / 4
}

// WordCounter counts whitespace-separated words.
// It is predictable and is used where exact model tokens do not matter.
type WordCounter struct{}

// Count returns the number of words in text.
func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}
