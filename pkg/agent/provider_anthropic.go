package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements LLMProvider for Anthropic Claude
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Provider returns the provider name
func (p *AnthropicProvider) Provider() string {
	return "anthropic"
}

// buildParams converts the abstract request to Anthropic API parameters
func (p *AnthropicProvider) buildParams(request LLMRequest) anthropic.MessageNewParams {
	anthropicMessages := []anthropic.MessageParam{}

	for _, msg := range request.Messages {
		switch msg.Role {
		case "user":
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		case "assistant":
			anthropicMessages = append(anthropicMessages, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleAssistant,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(msg.Content),
				},
			})
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(request.Model),
		Messages:  anthropicMessages,
		MaxTokens: int64(request.MaxTokens),
	}

	if request.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: request.SystemPrompt},
		}
	}

	if request.Temperature > 0 {
		params.Temperature = anthropic.Float(request.Temperature)
	}

	if len(request.Tools) > 0 {
		tools := []anthropic.ToolUnionParam{}
		for _, tool := range request.Tools {
			toolParam := anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
			}

			if tool.InputSchema != nil {
				toolParam.InputSchema = anthropic.ToolInputSchemaParam{
					Properties: tool.InputSchema["properties"],
				}
				if required, ok := tool.InputSchema["required"].([]string); ok {
					toolParam.InputSchema.Required = required
				}
			}

			tools = append(tools, anthropic.ToolUnionParam{OfTool: &toolParam})
		}
		params.Tools = tools
	}

	return params
}

// parseMessage extracts content and tool calls from a completed message
func parseMessage(message *anthropic.Message) (*LLMResponse, error) {
	content := ""
	toolCalls := []ToolCall{}

	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += b.Text
		case anthropic.ToolUseBlock:
			var params map[string]interface{}
			if err := json.Unmarshal([]byte(b.JSON.Input.Raw()), &params); err != nil {
				return nil, fmt.Errorf("failed to parse tool input: %w", err)
			}
			toolCalls = append(toolCalls, ToolCall{
				ID:         b.ID,
				Name:       b.Name,
				Parameters: params,
			})
		}
	}

	return &LLMResponse{
		Content:      content,
		ToolCalls:    toolCalls,
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

// Call makes an API call to Anthropic Claude
func (p *AnthropicProvider) Call(ctx context.Context, request LLMRequest) (*LLMResponse, error) {
	response, err := p.client.Messages.New(ctx, p.buildParams(request))
	if err != nil {
		return nil, err
	}

	return parseMessage(response)
}

// Stream makes a streaming API call to Anthropic Claude
func (p *AnthropicProvider) Stream(ctx context.Context, request LLMRequest, onDelta func(string)) (*LLMResponse, error) {
	stream := p.client.Messages.NewStreaming(ctx, p.buildParams(request))
	defer stream.Close()

	// Accumulate the full message from events
	message := anthropic.Message{}

	for stream.Next() {
		event := stream.Current()

		if err := message.Accumulate(event); err != nil {
			return nil, fmt.Errorf("failed to accumulate stream event: %w", err)
		}

		switch evt := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := evt.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				onDelta(delta.Text)
			}
		}
	}

	if err := stream.Err(); err != nil {
		return nil, err
	}

	return parseMessage(&message)
}
