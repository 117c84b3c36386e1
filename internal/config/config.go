package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main Mitra configuration
type Config struct {
	// AI provider credentials
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// Models
	Models ModelsConfig `json:"models" mapstructure:"models"`

	// Pricing used for cost estimation
	Pricing PricingConfig `json:"pricing" mapstructure:"pricing"`

	// Persistent memory
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`

	// Prompt templates
	Templates TemplatesConfig `json:"templates" mapstructure:"templates"`

	// Session lifecycle
	Sessions SessionsConfig `json:"sessions" mapstructure:"sessions"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// AIConfig holds AI provider configuration
type AIConfig struct {
	Profiles []AIProfile `json:"profiles" mapstructure:"profiles"`
}

// AIProfile represents an AI provider profile
type AIProfile struct {
	ID       string `json:"id" mapstructure:"id"`
	Provider string `json:"provider" mapstructure:"provider"` // anthropic, openai
	APIKey   string `json:"api_key" mapstructure:"api_key"`
	Priority int    `json:"priority" mapstructure:"priority"`
}

// ModelsConfig holds model configuration
type ModelsConfig struct {
	Default string            `json:"default" mapstructure:"default"`
	Aliases map[string]string `json:"aliases" mapstructure:"aliases"`
}

// PricingConfig holds per-thousand-token rates used for cost estimation
type PricingConfig struct {
	InputPer1K  float64 `json:"input_per_1k" mapstructure:"input_per_1k"`
	OutputPer1K float64 `json:"output_per_1k" mapstructure:"output_per_1k"`
}

// MemoryConfig holds persistent memory configuration
type MemoryConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// TemplatesConfig holds prompt template configuration
type TemplatesConfig struct {
	Path  string `json:"path" mapstructure:"path"`
	Watch bool   `json:"watch" mapstructure:"watch"`
}

// SessionsConfig holds session lifecycle configuration
type SessionsConfig struct {
	MaxAgeHours     int    `json:"max_age_hours" mapstructure:"max_age_hours"`
	JanitorSchedule string `json:"janitor_schedule" mapstructure:"janitor_schedule"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	File   string `json:"file" mapstructure:"file"`
	Pretty bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Profiles: []AIProfile{},
		},
		Models: ModelsConfig{
			Default: "claude-sonnet-4",
			Aliases: map[string]string{
				"sonnet": "claude-sonnet-4",
				"opus":   "claude-opus-4",
				"gpt4":   "gpt-4-turbo",
			},
		},
		Pricing: PricingConfig{
			InputPer1K:  0.003,
			OutputPer1K: 0.015,
		},
		Sessions: SessionsConfig{
			MaxAgeHours:     24,
			JanitorSchedule: "@hourly",
		},
		Templates: TemplatesConfig{
			Watch: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
		DataDir: "",
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// ResolveModel resolves a model alias to its full identifier
func (c *Config) ResolveModel(name string) string {
	if name == "" {
		return c.Models.Default
	}
	if resolved, ok := c.Models.Aliases[name]; ok {
		return resolved
	}
	return name
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.AI.Profiles) == 0 {
		return fmt.Errorf("no AI credentials configured: at least one AI profile is required")
	}

	for i, profile := range c.AI.Profiles {
		if profile.ID == "" {
			return fmt.Errorf("AI profile %d: ID is required", i)
		}
		if profile.Provider == "" {
			return fmt.Errorf("AI profile %s: provider is required", profile.ID)
		}
		if profile.APIKey == "" {
			return fmt.Errorf("AI profile %s: api_key is required", profile.ID)
		}
		if profile.Provider != "anthropic" && profile.Provider != "openai" {
			return fmt.Errorf("AI profile %s: invalid provider %s (must be: anthropic, openai)", profile.ID, profile.Provider)
		}
	}

	if c.Models.Default == "" {
		return fmt.Errorf("default model is required")
	}

	if c.Pricing.InputPer1K < 0 || c.Pricing.OutputPer1K < 0 {
		return fmt.Errorf("pricing rates cannot be negative")
	}

	if c.Sessions.MaxAgeHours <= 0 {
		return fmt.Errorf("session max age must be positive")
	}

	return nil
}
