package cli

import (
	"fmt"
	"sort"

	"github.com/adiwijaya/mitra/internal/config"
	"github.com/adiwijaya/mitra/internal/logger"
	"github.com/adiwijaya/mitra/internal/metrics"
	"github.com/adiwijaya/mitra/pkg/agent"
	"github.com/adiwijaya/mitra/pkg/coordinator"
	"github.com/adiwijaya/mitra/pkg/memory"
	"github.com/adiwijaya/mitra/pkg/session"
	"github.com/adiwijaya/mitra/pkg/template"
)

// app wires the full service graph for a command invocation
type app struct {
	cfg         *config.Config
	log         *logger.Logger
	templates   *template.Registry
	sessions    *session.Table
	memory      *memory.Store
	usage       *metrics.Usage
	metrics     *metrics.Metrics
	executor    *agent.Executor
	coordinator *coordinator.Coordinator
}

// newApp loads configuration and builds the executor stack. Credentials are
// validated here so every command fails the same way when unconfigured.
func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	zl := log.GetZerolog()

	registry, err := template.NewRegistry(template.Config{
		Path:   cfg.Templates.Path,
		Logger: zl,
	})
	if err != nil {
		zl.Warn().Err(err).Msg("Template configuration unusable, builtin templates in effect")
	}

	store, err := memory.NewStore(memory.Config{
		Path:   cfg.Memory.Path,
		Logger: zl,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open memory store: %w", err)
	}

	profile := selectProfile(cfg)
	provider, err := (&agent.ProviderFactory{}).NewProvider(agent.AuthProfile{
		ID:       profile.ID,
		Provider: profile.Provider,
		APIKey:   profile.APIKey,
		Priority: profile.Priority,
	})
	if err != nil {
		return nil, err
	}

	table := session.NewTable(zl)
	usage := metrics.NewUsage()
	procMetrics := metrics.NewMetrics()

	executor, err := agent.NewExecutor(agent.Config{
		Provider:  provider,
		Model:     cfg.ResolveModel(""),
		Templates: registry,
		Sessions:  table,
		Memory:    store,
		Usage:     usage,
		Metrics:   procMetrics,
		Pricing: agent.Pricing{
			InputPer1K:  cfg.Pricing.InputPer1K,
			OutputPer1K: cfg.Pricing.OutputPer1K,
		},
		Logger: zl,
	})
	if err != nil {
		return nil, err
	}

	coord, err := coordinator.NewCoordinator(coordinator.Config{
		Executor: executor,
		Logger:   zl,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:         cfg,
		log:         log,
		templates:   registry,
		sessions:    table,
		memory:      store,
		usage:       usage,
		metrics:     procMetrics,
		executor:    executor,
		coordinator: coord,
	}, nil
}

// selectProfile picks the highest-priority AI profile
func selectProfile(cfg *config.Config) config.AIProfile {
	profiles := append([]config.AIProfile(nil), cfg.AI.Profiles...)
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Priority > profiles[j].Priority
	})
	return profiles[0]
}

// Close releases app resources
func (a *app) Close() error {
	return a.log.Close()
}
