package template

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"
)

// Registry holds named prompt templates. Resolution never fails: unknown
// names fall back to the default template, and a registry constructed with a
// missing or malformed configuration file serves the builtin set.
type Registry struct {
	templates map[string]PromptTemplate
	path      string
	logger    zerolog.Logger
	mu        sync.RWMutex
}

// Config holds registry configuration
type Config struct {
	Path   string // template configuration file, empty means builtins only
	Logger zerolog.Logger
}

// NewRegistry creates a registry and performs the initial load. The returned
// error reports a degraded load (builtins in use); the registry itself is
// always usable.
func NewRegistry(cfg Config) (*Registry, error) {
	r := &Registry{
		templates: builtinTemplates(),
		path:      cfg.Path,
		logger:    cfg.Logger,
	}

	if cfg.Path == "" {
		return r, nil
	}

	err := r.Reload()
	return r, err
}

// Resolve returns the template for name, falling back to the default
// template when the name is unknown.
func (r *Registry) Resolve(name string) PromptTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if tmpl, ok := r.templates[name]; ok {
		return tmpl
	}

	r.logger.Debug().Str("template", name).Msg("Unknown template, using default")
	return r.templates[DefaultTemplateName]
}

// Names returns the sorted list of registered template names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns the configuration file path the registry loads from
func (r *Registry) Path() string {
	return r.path
}

// Reload re-reads the configuration file. On any failure the builtin set is
// installed and the failure is reported, never raised to the point of leaving
// the registry empty.
func (r *Registry) Reload() error {
	templates, err := r.load()
	if err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("Template load failed, using builtin templates")
		templates = builtinTemplates()
	}

	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("template configuration degraded to builtins: %w", err)
	}

	r.logger.Info().Int("count", len(templates)).Str("path", r.path).Msg("Templates loaded")
	return nil
}

// load parses and validates the configuration file
func (r *Registry) load() (map[string]PromptTemplate, error) {
	if _, err := os.Stat(r.path); err != nil {
		return nil, fmt.Errorf("template file not readable: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(r.path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse template file: %w", err)
	}

	if err := validateSettings(v.AllSettings()); err != nil {
		return nil, err
	}

	var raw map[string]PromptTemplate
	if err := v.UnmarshalKey("templates", &raw); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}

	templates := make(map[string]PromptTemplate, len(raw))
	for name, tmpl := range raw {
		tmpl.Name = name
		if tmpl.MaxTokens == 0 {
			tmpl.MaxTokens = 4000
		}
		templates[name] = tmpl
	}

	// The default name must always resolve
	if _, ok := templates[DefaultTemplateName]; !ok {
		templates[DefaultTemplateName] = builtinTemplates()[DefaultTemplateName]
	}

	return templates, nil
}

// validateSettings checks the parsed document against ConfigSchema
func validateSettings(settings map[string]interface{}) error {
	schemaLoader := gojsonschema.NewStringLoader(ConfigSchema)
	documentLoader := gojsonschema.NewGoLoader(settings)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		errs := ""
		for _, desc := range result.Errors() {
			if errs != "" {
				errs += "; "
			}
			errs += desc.String()
		}
		return fmt.Errorf("invalid template configuration: %s", errs)
	}

	return nil
}
