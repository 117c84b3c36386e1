package agent

import (
	"context"
	"fmt"
)

// LLMProvider is an interface for LLM API providers
type LLMProvider interface {
	// Call makes a single LLM API call
	Call(ctx context.Context, request LLMRequest) (*LLMResponse, error)

	// Stream makes a streaming LLM API call, invoking onDelta for each text
	// fragment and returning the completed response once the stream ends
	Stream(ctx context.Context, request LLMRequest, onDelta func(string)) (*LLMResponse, error)

	// Provider returns the provider name
	Provider() string
}

// LLMRequest contains the request parameters for an LLM call
type LLMRequest struct {
	Model        string
	Messages     []Message
	Tools        []ToolDefinition
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// LLMResponse contains the response from the LLM
type LLMResponse struct {
	Content      string
	ToolCalls    []ToolCall
	OutputTokens int
}

// ProviderFactory creates LLM providers
type ProviderFactory struct{}

// NewProvider creates a new LLM provider based on auth profile
func (f *ProviderFactory) NewProvider(profile AuthProfile) (LLMProvider, error) {
	switch profile.Provider {
	case "anthropic":
		return NewAnthropicProvider(profile.APIKey), nil
	case "openai":
		return NewOpenAIProvider(profile.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", profile.Provider)
	}
}
