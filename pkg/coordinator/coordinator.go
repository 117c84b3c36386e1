// Package coordinator chains specialized agent personas over a shared
// request executor. Agents run sequentially; each later agent sees a
// condensed summary of the work the earlier agents produced.
package coordinator

import (
	"context"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/adiwijaya/mitra/pkg/agent"
	"github.com/adiwijaya/mitra/pkg/template"
)

// previousWorkLimit caps how much of each earlier response is carried
// forward into the next agent's task
const previousWorkLimit = 200

// Executor is the subset of the request executor the coordinator needs
type Executor interface {
	Execute(ctx context.Context, params agent.Params) (*agent.Result, error)
}

// AgentRun pairs an agent name with the result it produced, in run order
type AgentRun struct {
	Agent  string       `json:"agent"`
	Result agent.Result `json:"result"`
}

// Config holds coordinator configuration
type Config struct {
	Executor Executor
	// Agents maps agent names to template names. Defaults to the builtin
	// persona set when empty.
	Agents map[string]string
	Logger zerolog.Logger
}

// Coordinator runs multi-agent tasks
type Coordinator struct {
	executor Executor
	agents   map[string]string
	logger   zerolog.Logger
}

// defaultAgents maps the builtin agent names onto prompt templates
func defaultAgents() map[string]string {
	return map[string]string{
		"architect":     "architect",
		"reviewer":      "code_reviewer",
		"code_reviewer": "code_reviewer",
		"assistant":     template.DefaultTemplateName,
	}
}

// NewCoordinator creates a coordinator
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}

	agents := cfg.Agents
	if len(agents) == 0 {
		agents = defaultAgents()
	}

	return &Coordinator{
		executor: cfg.Executor,
		agents:   agents,
		logger:   cfg.Logger,
	}, nil
}

// Agents returns the known agent names mapped to their templates
func (c *Coordinator) Agents() map[string]string {
	out := make(map[string]string, len(c.agents))
	for name, tmpl := range c.agents {
		out[name] = tmpl
	}
	return out
}

// buildTask composes the per-agent task: the persona framing plus summaries
// of the work earlier agents already produced
func buildTask(agentName, task string, previous []AgentRun) string {
	agentTask := fmt.Sprintf("As a %s, please help with: %s", agentName, task)

	if len(previous) == 0 {
		return agentTask
	}

	summaries := make([]string, 0, len(previous))
	for _, run := range previous {
		summaries = append(summaries, fmt.Sprintf("%s: %s...", run.Agent, excerpt(run.Result.Response, previousWorkLimit)))
	}

	return agentTask + fmt.Sprintf("\n\nPrevious agent work:\n%s", strings.Join(summaries, "\n"))
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// Coordinate runs the named agents sequentially against task. Unknown agent
// names are skipped. Each agent gets its own derived session so the chained
// conversations do not interleave. On failure the runs completed so far are
// returned alongside the error.
func (c *Coordinator) Coordinate(ctx context.Context, task, sessionID string, agentNames []string, project *agent.ProjectContext) ([]AgentRun, error) {
	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	c.logger.Info().
		Str("run_id", runID).
		Str("session_id", sessionID).
		Strs("agents", agentNames).
		Msg("Starting multi-agent task")

	runs := []AgentRun{}

	for _, agentName := range agentNames {
		templateName, ok := c.agents[agentName]
		if !ok {
			c.logger.Warn().
				Str("run_id", runID).
				Str("agent", agentName).
				Msg("Skipping unknown agent")
			continue
		}

		result, err := c.executor.Execute(ctx, agent.Params{
			Message:   buildTask(agentName, task, runs),
			SessionID: fmt.Sprintf("%s_%s", sessionID, agentName),
			Template:  templateName,
			Project:   project,
		})
		if err != nil {
			c.logger.Error().
				Str("run_id", runID).
				Str("agent", agentName).
				Err(err).
				Msg("Agent failed, aborting task")
			return runs, fmt.Errorf("agent %s failed: %w", agentName, err)
		}

		c.logger.Info().
			Str("run_id", runID).
			Str("agent", agentName).
			Str("request_id", result.RequestID).
			Msg("Agent completed")

		runs = append(runs, AgentRun{Agent: agentName, Result: *result})
	}

	c.logger.Info().
		Str("run_id", runID).
		Int("completed", len(runs)).
		Msg("Multi-agent task completed")

	return runs, nil
}
