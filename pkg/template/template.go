package template

// DefaultTemplateName is the template guaranteed to resolve even when
// configuration loading fails entirely.
const DefaultTemplateName = "general_assistant"

// PromptTemplate is an immutable persona definition: a system prompt plus the
// generation parameters used when that persona is invoked.
type PromptTemplate struct {
	Name             string   `json:"name" mapstructure:"name"`
	Role             string   `json:"role" mapstructure:"role"`
	SystemPrompt     string   `json:"system_prompt" mapstructure:"system_prompt"`
	ContextVariables []string `json:"context_variables" mapstructure:"context_variables"`
	MaxTokens        int      `json:"max_tokens" mapstructure:"max_tokens"`
	Temperature      float64  `json:"temperature" mapstructure:"temperature"`
	Tools            []string `json:"tools" mapstructure:"tools"`
}

// builtinTemplates returns the hard-coded fallback set. These must cover the
// personas the coordinator knows about.
func builtinTemplates() map[string]PromptTemplate {
	return map[string]PromptTemplate{
		"general_assistant": {
			Name: "general_assistant",
			Role: "AI Development Assistant",
			SystemPrompt: `You are Mitra, an AI development assistant. You help developers with:
- Code analysis, debugging, and optimization
- Architecture decisions and best practices
- Project planning and task breakdown
- Technical documentation and explanations

Use your tools effectively and provide clear, actionable responses.`,
			MaxTokens:   4000,
			Temperature: 0.7,
		},
		"code_reviewer": {
			Name: "code_reviewer",
			Role: "Senior Code Reviewer",
			SystemPrompt: `You are a meticulous code reviewer focused on:
- Code quality, security, and performance
- Best practices and architectural patterns
- Bug detection and edge case analysis
- Suggestions for improvement

Provide detailed, constructive feedback with specific examples.`,
			MaxTokens:   3000,
			Temperature: 0.3,
		},
		"architect": {
			Name: "architect",
			Role: "Software Architect",
			SystemPrompt: `You are a software architect responsible for:
- System design and architectural patterns
- Scalability and performance planning
- Technology stack recommendations
- Integration strategy and API design

Focus on long-term maintainability and scalability.`,
			MaxTokens:   3500,
			Temperature: 0.5,
		},
	}
}
