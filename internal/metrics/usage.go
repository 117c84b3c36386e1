package metrics

import (
	"sync"
	"time"
)

// Usage is a process-wide rollup of backend API consumption. It is owned by
// whoever constructs it and passed explicitly to the request executor; there
// is no package-level instance.
type Usage struct {
	mu sync.Mutex

	totalRequests int64
	inputTokens   int64
	outputTokens  int64
	rateLimitHits int64
	errors        int64
	costUSD       float64
	lastRequest   time.Time
}

// UsageSnapshot is a point-in-time copy of the aggregate, with the derived
// ratios the status surface reports.
type UsageSnapshot struct {
	TotalRequests         int64     `json:"total_requests"`
	InputTokens           int64     `json:"total_tokens_input"`
	OutputTokens          int64     `json:"total_tokens_output"`
	RateLimitHits         int64     `json:"rate_limit_hits"`
	Errors                int64     `json:"errors"`
	CostUSD               float64   `json:"total_cost_usd"`
	LastRequest           time.Time `json:"last_request"`
	AverageCostPerRequest float64   `json:"average_cost_per_request"`
	TokensPerDollar       float64   `json:"tokens_per_dollar"`
}

// NewUsage creates an empty usage aggregate
func NewUsage() *Usage {
	return &Usage{}
}

// RecordSuccess records a completed backend request
func (u *Usage) RecordSuccess(inputTokens, outputTokens int, cost float64) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.totalRequests++
	u.inputTokens += int64(inputTokens)
	u.outputTokens += int64(outputTokens)
	u.costUSD += cost
	u.lastRequest = time.Now()
}

// RecordError records a terminally failed backend request
func (u *Usage) RecordError() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.errors++
}

// RecordRateLimit records a rate-limit response, whether or not the request
// eventually succeeded after retrying
func (u *Usage) RecordRateLimit() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.rateLimitHits++
}

// Snapshot returns a copy of the current aggregate
func (u *Usage) Snapshot() UsageSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()

	snap := UsageSnapshot{
		TotalRequests: u.totalRequests,
		InputTokens:   u.inputTokens,
		OutputTokens:  u.outputTokens,
		RateLimitHits: u.rateLimitHits,
		Errors:        u.errors,
		CostUSD:       u.costUSD,
		LastRequest:   u.lastRequest,
	}

	if u.totalRequests > 0 {
		snap.AverageCostPerRequest = u.costUSD / float64(u.totalRequests)
	}
	if u.costUSD > 0 {
		snap.TokensPerDollar = float64(u.inputTokens+u.outputTokens) / u.costUSD
	}

	return snap
}

// Errors returns the current error count
func (u *Usage) Errors() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.errors
}

// Reset clears the aggregate. Operator action only.
func (u *Usage) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.totalRequests = 0
	u.inputTokens = 0
	u.outputTokens = 0
	u.rateLimitHits = 0
	u.errors = 0
	u.costUSD = 0
	u.lastRequest = time.Time{}
}
