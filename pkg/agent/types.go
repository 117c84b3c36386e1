package agent

import "time"

// Message represents a message in the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCall represents a tool invocation requested by the backend
type ToolCall struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters"`
}

// ToolDefinition declares a tool the backend may invoke
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// TokenUsage tracks token consumption for a single request
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ProjectContext carries caller-supplied project information into the prompt
type ProjectContext struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Params contains input parameters for a single execution
type Params struct {
	Message   string           `json:"message"`
	SessionID string           `json:"session_id"`
	Template  string           `json:"template"`
	Project   *ProjectContext  `json:"project,omitempty"`
	Tools     []ToolDefinition `json:"tools,omitempty"`
}

// Result contains the outcome of a single execution
type Result struct {
	RequestID string        `json:"request_id"`
	Response  string        `json:"response"`
	ToolCalls []ToolCall    `json:"tool_calls,omitempty"`
	Usage     TokenUsage    `json:"usage"`
	Elapsed   time.Duration `json:"execution_time"`
	SessionID string        `json:"session_id"`
}

// AuthProfile represents authentication credentials for an LLM provider
type AuthProfile struct {
	ID       string `json:"id"`
	Provider string `json:"provider"` // "anthropic", "openai"
	APIKey   string `json:"api_key"`
	Priority int    `json:"priority"`
}
