package agent

import (
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
)

// TokenCounter estimates how many tokens a piece of text costs
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens using the cl100k_base encoding
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// Count returns the number of tokens in text
func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// HeuristicCounter approximates token counts from byte length.
// Used when the tiktoken encoding cannot be loaded, e.g. offline.
type HeuristicCounter struct{}

// Count returns an approximate token count for text
func (c *HeuristicCounter) Count(text string) int {
	return (len(text) + 3) / 4
}

// NewTokenCounter returns a tiktoken-backed counter, falling back to a
// byte-length heuristic when the encoding is unavailable
func NewTokenCounter(logger zerolog.Logger) TokenCounter {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("Failed to load tiktoken encoding, using heuristic token counter")
		return &HeuristicCounter{}
	}
	return &TiktokenCounter{encoding: encoding}
}
