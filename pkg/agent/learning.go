package agent

import (
	"fmt"
	"strings"
)

// LearningExtractor decides whether an exchange is worth remembering
// and produces the snippet to store
type LearningExtractor interface {
	Extract(userMessage, response string) (string, bool)
}

// learningKeywords mark questions whose answers tend to be reusable
var learningKeywords = []string{"how", "why", "what", "explain"}

// KeywordExtractor keeps exchanges whose question contains an
// explanatory keyword, truncated to a compact Q/A snippet
type KeywordExtractor struct{}

// NewKeywordExtractor creates a keyword-based learning extractor
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract returns a truncated Q/A snippet when the user message looks
// like an explanatory question
func (e *KeywordExtractor) Extract(userMessage, response string) (string, bool) {
	lowered := strings.ToLower(userMessage)

	matched := false
	for _, keyword := range learningKeywords {
		if strings.Contains(lowered, keyword) {
			matched = true
			break
		}
	}
	if !matched {
		return "", false
	}

	return fmt.Sprintf("Q: %s... A: %s...", truncate(userMessage, 100), truncate(response, 200)), true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
