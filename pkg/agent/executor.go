package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adiwijaya/mitra/internal/metrics"
	"github.com/adiwijaya/mitra/pkg/memory"
	"github.com/adiwijaya/mitra/pkg/session"
	"github.com/adiwijaya/mitra/pkg/template"
)

const (
	defaultMaxRetries = 3
	defaultBackoffMin = 4 * time.Second
	defaultBackoffMax = 10 * time.Second

	historyWindow      = 10
	maxPromptLearnings = 5
	promptRecentTools  = 3
)

// Pricing holds the per-1K-token USD rates used for cost estimation
type Pricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

// DefaultPricing returns the standard pricing rates
func DefaultPricing() Pricing {
	return Pricing{InputPer1K: 0.003, OutputPer1K: 0.015}
}

// Config holds executor configuration
type Config struct {
	Provider  LLMProvider
	Model     string
	Templates *template.Registry
	Sessions  *session.Table
	Memory    *memory.Store
	Usage     *metrics.Usage
	Metrics   *metrics.Metrics
	Tokens    TokenCounter
	Extractor LearningExtractor
	Pricing   Pricing

	MaxRetries int
	BackoffMin time.Duration
	BackoffMax time.Duration

	Logger zerolog.Logger
}

// Executor sends contextualized requests to an LLM backend. It owns prompt
// assembly, retry, usage accounting, and the post-success session and memory
// updates.
type Executor struct {
	provider  LLMProvider
	model     string
	templates *template.Registry
	sessions  *session.Table
	memory    *memory.Store
	usage     *metrics.Usage
	metrics   *metrics.Metrics
	tokens    TokenCounter
	extractor LearningExtractor
	pricing   Pricing

	maxRetries int
	backoffMin time.Duration
	backoffMax time.Duration

	logger zerolog.Logger

	// sessionLocks serializes executions per session so concurrent requests
	// against the same conversation do not interleave their history appends
	sessionLocks map[string]*sync.Mutex
	locksMu      sync.Mutex
}

// NewExecutor creates a request executor
func NewExecutor(cfg Config) (*Executor, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.Templates == nil {
		return nil, fmt.Errorf("template registry is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session table is required")
	}

	if cfg.Usage == nil {
		cfg.Usage = metrics.NewUsage()
	}
	if cfg.Tokens == nil {
		cfg.Tokens = NewTokenCounter(cfg.Logger)
	}
	if cfg.Extractor == nil {
		cfg.Extractor = NewKeywordExtractor()
	}
	if cfg.Pricing.InputPer1K == 0 && cfg.Pricing.OutputPer1K == 0 {
		cfg.Pricing = DefaultPricing()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BackoffMin <= 0 {
		cfg.BackoffMin = defaultBackoffMin
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = defaultBackoffMax
	}

	return &Executor{
		provider:     cfg.Provider,
		model:        cfg.Model,
		templates:    cfg.Templates,
		sessions:     cfg.Sessions,
		memory:       cfg.Memory,
		usage:        cfg.Usage,
		metrics:      cfg.Metrics,
		tokens:       cfg.Tokens,
		extractor:    cfg.Extractor,
		pricing:      cfg.Pricing,
		maxRetries:   cfg.MaxRetries,
		backoffMin:   cfg.BackoffMin,
		backoffMax:   cfg.BackoffMax,
		logger:       cfg.Logger,
		sessionLocks: make(map[string]*sync.Mutex),
	}, nil
}

// Usage returns the usage aggregate the executor records into
func (e *Executor) Usage() *metrics.Usage {
	return e.usage
}

// Sessions returns the session table the executor records into
func (e *Executor) Sessions() *session.Table {
	return e.sessions
}

func (e *Executor) sessionLock(sessionID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	lock, ok := e.sessionLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		e.sessionLocks[sessionID] = lock
	}
	return lock
}

// recordProject folds caller-supplied project info into the session so later
// requests on the same session keep it without re-sending
func (e *Executor) recordProject(params Params) {
	if params.Project == nil || params.Project.Name == "" {
		return
	}

	values := map[string]interface{}{"name": params.Project.Name}
	if params.Project.Description != "" {
		values["description"] = params.Project.Description
	}
	e.sessions.SetProjectContext(params.SessionID, values)
}

// buildPrompt assembles the system prompt and message history for a request.
// The system prompt is the template's prompt followed by a Current Context
// block holding project info, recent learnings, and recently used tools.
func (e *Executor) buildPrompt(tmpl template.PromptTemplate, params Params) (string, []Message) {
	contextParts := []string{}

	if params.Project != nil && params.Project.Name != "" {
		contextParts = append(contextParts, fmt.Sprintf("Project: %s", params.Project.Name))
		if params.Project.Description != "" {
			contextParts = append(contextParts, fmt.Sprintf("Description: %s", params.Project.Description))
		}
	}

	if e.memory != nil {
		learnings := e.memory.RecentLearnings(maxPromptLearnings)
		if len(learnings) > 0 {
			contextParts = append(contextParts, "Recent Learnings:")
			for _, l := range learnings {
				contextParts = append(contextParts, fmt.Sprintf("- %s", l.Learning))
			}
		}
	}

	recentTools := e.sessions.RecentTools(params.SessionID, promptRecentTools)
	if len(recentTools) > 0 {
		contextParts = append(contextParts, fmt.Sprintf("Recent Tools Used: %s", strings.Join(recentTools, ", ")))
	}

	systemPrompt := tmpl.SystemPrompt
	if len(contextParts) > 0 {
		systemPrompt += fmt.Sprintf("\n\nCurrent Context:\n%s", strings.Join(contextParts, "\n"))
	}

	messages := []Message{}
	for _, msg := range e.sessions.RecentHistory(params.SessionID, historyWindow) {
		messages = append(messages, Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, Message{Role: "user", Content: params.Message})

	return systemPrompt, messages
}

// estimateInputTokens counts the tokens of the assembled prompt
func (e *Executor) estimateInputTokens(systemPrompt string, messages []Message) int {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	for _, msg := range messages {
		sb.WriteString("\n")
		sb.WriteString(msg.Content)
	}
	return e.tokens.Count(sb.String())
}

// estimateCost converts token counts to an estimated USD cost
func (e *Executor) estimateCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1000*e.pricing.InputPer1K +
		float64(outputTokens)/1000*e.pricing.OutputPer1K
}

// callWithRetry runs the LLM call with exponential backoff. Rate-limit and
// transient errors are retried up to maxRetries attempts; terminal errors
// abort immediately.
func (e *Executor) callWithRetry(ctx context.Context, request LLMRequest, sessionID string) (*LLMResponse, error) {
	backoff := e.backoffMin

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		response, err := e.provider.Call(ctx, request)
		if err == nil {
			return response, nil
		}
		lastErr = err

		backendErr := Classify(err)
		if backendErr.Kind == KindRateLimited {
			e.usage.RecordRateLimit()
		}
		if !backendErr.Retryable() || attempt == e.maxRetries {
			break
		}

		e.logger.Warn().
			Str("session_id", sessionID).
			Str("provider", e.provider.Provider()).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Err(err).
			Msg("Backend request failed, retrying")

		if e.metrics != nil {
			e.metrics.RetriesTotal.WithLabelValues(e.provider.Provider()).Inc()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > e.backoffMax {
			backoff = e.backoffMax
		}
	}

	return nil, lastErr
}

// recordSuccess updates the conversation, usage aggregates, Prometheus
// counters, and persistent memory after a completed request. Memory write
// failures are logged and swallowed; the response already succeeded.
func (e *Executor) recordSuccess(params Params, response *LLMResponse, inputTokens int, elapsed time.Duration) {
	cost := e.estimateCost(inputTokens, response.OutputTokens)
	e.usage.RecordSuccess(inputTokens, response.OutputTokens, cost)

	if e.metrics != nil {
		provider := e.provider.Provider()
		e.metrics.RequestsTotal.WithLabelValues(provider, "success").Inc()
		e.metrics.RequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
		e.metrics.TokensTotal.WithLabelValues("input").Add(float64(inputTokens))
		e.metrics.TokensTotal.WithLabelValues("output").Add(float64(response.OutputTokens))
		e.metrics.CostUSD.Add(cost)
	}

	e.sessions.AppendExchange(params.SessionID, params.Message, response.Content)

	if len(response.ToolCalls) > 0 {
		names := make([]string, 0, len(response.ToolCalls))
		for _, tc := range response.ToolCalls {
			names = append(names, tc.Name)
		}
		e.sessions.RecordToolUses(params.SessionID, names)
	}

	if e.memory != nil {
		if learning, ok := e.extractor.Extract(params.Message, response.Content); ok {
			if err := e.memory.AppendLearning(params.SessionID, learning); err != nil {
				e.logger.Error().
					Str("session_id", params.SessionID).
					Err(err).
					Msg("Failed to store learning")
			} else if e.metrics != nil {
				e.metrics.LearningsStored.Inc()
			}
		}
	}
}

// Execute sends a contextualized message and returns the completed result
func (e *Executor) Execute(ctx context.Context, params Params) (*Result, error) {
	lock := e.sessionLock(params.SessionID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	requestID := uuid.New().String()

	tmpl := e.templates.Resolve(params.Template)
	e.sessions.GetOrCreate(params.SessionID)
	e.recordProject(params)

	systemPrompt, messages := e.buildPrompt(tmpl, params)
	inputTokens := e.estimateInputTokens(systemPrompt, messages)

	e.logger.Info().
		Str("request_id", requestID).
		Str("session_id", params.SessionID).
		Str("template", tmpl.Name).
		Int("input_tokens", inputTokens).
		Msg("Sending backend request")

	request := LLMRequest{
		Model:        e.model,
		Messages:     messages,
		Tools:        params.Tools,
		Temperature:  tmpl.Temperature,
		MaxTokens:    tmpl.MaxTokens,
		SystemPrompt: systemPrompt,
	}

	response, err := e.callWithRetry(ctx, request, params.SessionID)
	if err != nil {
		e.usage.RecordError()
		if e.metrics != nil {
			e.metrics.RequestsTotal.WithLabelValues(e.provider.Provider(), "error").Inc()
		}

		e.logger.Error().
			Str("request_id", requestID).
			Str("session_id", params.SessionID).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("Backend request failed")

		return nil, fmt.Errorf("backend request failed: %w", err)
	}

	elapsed := time.Since(start)
	e.recordSuccess(params, response, inputTokens, elapsed)

	e.logger.Info().
		Str("request_id", requestID).
		Str("session_id", params.SessionID).
		Dur("elapsed", elapsed).
		Int("input_tokens", inputTokens).
		Int("output_tokens", response.OutputTokens).
		Float64("cost_usd", e.estimateCost(inputTokens, response.OutputTokens)).
		Msg("Backend request completed")

	return &Result{
		RequestID: requestID,
		Response:  response.Content,
		ToolCalls: response.ToolCalls,
		Usage: TokenUsage{
			InputTokens:  inputTokens,
			OutputTokens: response.OutputTokens,
			TotalTokens:  inputTokens + response.OutputTokens,
		},
		Elapsed:   elapsed,
		SessionID: params.SessionID,
	}, nil
}

// ExecuteStream sends a contextualized message, invoking onDelta for each
// text fragment as it arrives. The call is made once, without retry; once
// deltas have been delivered the request cannot be transparently replayed.
// After the stream completes the exchange is appended to the conversation
// history, without tool or learning updates.
func (e *Executor) ExecuteStream(ctx context.Context, params Params, onDelta func(string)) (*Result, error) {
	lock := e.sessionLock(params.SessionID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	requestID := uuid.New().String()

	tmpl := e.templates.Resolve(params.Template)
	e.sessions.GetOrCreate(params.SessionID)
	e.recordProject(params)

	systemPrompt, messages := e.buildPrompt(tmpl, params)
	inputTokens := e.estimateInputTokens(systemPrompt, messages)

	request := LLMRequest{
		Model:        e.model,
		Messages:     messages,
		Temperature:  tmpl.Temperature,
		MaxTokens:    tmpl.MaxTokens,
		SystemPrompt: systemPrompt,
	}

	response, err := e.provider.Stream(ctx, request, onDelta)
	if err != nil {
		e.usage.RecordError()
		if e.metrics != nil {
			e.metrics.RequestsTotal.WithLabelValues(e.provider.Provider(), "error").Inc()
		}

		e.logger.Error().
			Str("request_id", requestID).
			Str("session_id", params.SessionID).
			Err(err).
			Msg("Backend stream failed")

		return nil, fmt.Errorf("backend stream failed: %w", err)
	}

	elapsed := time.Since(start)

	cost := e.estimateCost(inputTokens, response.OutputTokens)
	e.usage.RecordSuccess(inputTokens, response.OutputTokens, cost)

	if e.metrics != nil {
		provider := e.provider.Provider()
		e.metrics.RequestsTotal.WithLabelValues(provider, "success").Inc()
		e.metrics.RequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
		e.metrics.TokensTotal.WithLabelValues("input").Add(float64(inputTokens))
		e.metrics.TokensTotal.WithLabelValues("output").Add(float64(response.OutputTokens))
		e.metrics.CostUSD.Add(cost)
	}

	e.sessions.AppendExchange(params.SessionID, params.Message, response.Content)

	return &Result{
		RequestID: requestID,
		Response:  response.Content,
		Usage: TokenUsage{
			InputTokens:  inputTokens,
			OutputTokens: response.OutputTokens,
			TotalTokens:  inputTokens + response.OutputTokens,
		},
		Elapsed:   elapsed,
		SessionID: params.SessionID,
	}, nil
}
