package session

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Janitor periodically evicts stale contexts from a table
type Janitor struct {
	table    *Table
	maxAge   time.Duration
	cron     *cron.Cron
	logger   zerolog.Logger
	onEvict  func(removed int)
	schedule string
}

// JanitorConfig holds janitor configuration
type JanitorConfig struct {
	Table    *Table
	MaxAge   time.Duration
	Schedule string           // cron spec, e.g. "@hourly"
	Logger   zerolog.Logger
	OnEvict  func(removed int) // optional, called after each sweep
}

// NewJanitor creates a janitor. Start must be called to begin sweeping.
func NewJanitor(cfg JanitorConfig) (*Janitor, error) {
	if cfg.Table == nil {
		return nil, fmt.Errorf("table is required")
	}
	if cfg.MaxAge <= 0 {
		return nil, fmt.Errorf("max age must be positive")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@hourly"
	}

	return &Janitor{
		table:    cfg.Table,
		maxAge:   cfg.MaxAge,
		schedule: cfg.Schedule,
		logger:   cfg.Logger,
		onEvict:  cfg.OnEvict,
	}, nil
}

// Start schedules the sweep
func (j *Janitor) Start() error {
	c := cron.New()

	if _, err := c.AddFunc(j.schedule, j.Sweep); err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", j.schedule, err)
	}

	c.Start()
	j.cron = c

	j.logger.Info().
		Str("schedule", j.schedule).
		Dur("max_age", j.maxAge).
		Msg("Session janitor started")

	return nil
}

// Stop stops the sweep schedule, waiting for a running sweep to finish
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// Sweep evicts stale contexts once
func (j *Janitor) Sweep() {
	removed := j.table.EvictOlderThan(j.maxAge)
	if j.onEvict != nil {
		j.onEvict(removed)
	}
}
