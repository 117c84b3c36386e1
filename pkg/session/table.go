package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// maxRecentTools caps the recent-tool list per session
const maxRecentTools = 10

// Message is a single role-tagged conversation entry
type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// ConversationContext is the mutable per-session record
type ConversationContext struct {
	SessionID      string                 `json:"session_id"`
	ProjectContext map[string]interface{} `json:"project_context"`
	MemorySnippets []string               `json:"memory_snippets"`
	RecentTools    []string               `json:"recent_tools"`
	History        []Message              `json:"conversation_history"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// clone returns a deep copy so callers cannot mutate table-owned state
func (c *ConversationContext) clone() ConversationContext {
	out := ConversationContext{
		SessionID: c.SessionID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	if c.ProjectContext != nil {
		out.ProjectContext = make(map[string]interface{}, len(c.ProjectContext))
		for k, v := range c.ProjectContext {
			out.ProjectContext[k] = v
		}
	}
	out.MemorySnippets = append([]string(nil), c.MemorySnippets...)
	out.RecentTools = append([]string(nil), c.RecentTools...)
	out.History = append([]Message(nil), c.History...)

	return out
}

// Table is the in-memory session context table. It exclusively owns every
// ConversationContext; all reads hand out copies.
type Table struct {
	contexts map[string]*ConversationContext
	logger   zerolog.Logger
	mu       sync.RWMutex
}

// NewTable creates an empty session table
func NewTable(logger zerolog.Logger) *Table {
	return &Table{
		contexts: make(map[string]*ConversationContext),
		logger:   logger,
	}
}

// GetOrCreate returns a copy of the context for sessionID, creating an empty
// one on first use.
func (t *Table) GetOrCreate(sessionID string) ConversationContext {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.getOrCreateLocked(sessionID).clone()
}

func (t *Table) getOrCreateLocked(sessionID string) *ConversationContext {
	if ctx, ok := t.contexts[sessionID]; ok {
		return ctx
	}

	now := time.Now()
	ctx := &ConversationContext{
		SessionID:      sessionID,
		ProjectContext: make(map[string]interface{}),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	t.contexts[sessionID] = ctx

	t.logger.Debug().Str("session_id", sessionID).Msg("Session context created")
	return ctx
}

// AppendExchange appends a user/assistant message pair to a session's
// history and refreshes its updated timestamp.
func (t *Table) AppendExchange(sessionID, userText, assistantText string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx := t.getOrCreateLocked(sessionID)
	ctx.History = append(ctx.History,
		Message{Role: "user", Content: userText},
		Message{Role: "assistant", Content: assistantText},
	)
	ctx.UpdatedAt = time.Now()
}

// RecordToolUses appends tool names to a session's recent-tool list,
// keeping only the newest entries.
func (t *Table) RecordToolUses(sessionID string, toolNames []string) {
	if len(toolNames) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ctx := t.getOrCreateLocked(sessionID)
	ctx.RecentTools = append(ctx.RecentTools, toolNames...)
	if len(ctx.RecentTools) > maxRecentTools {
		ctx.RecentTools = ctx.RecentTools[len(ctx.RecentTools)-maxRecentTools:]
	}
	ctx.UpdatedAt = time.Now()
}

// SetProjectContext merges key/value pairs into a session's project context
func (t *Table) SetProjectContext(sessionID string, values map[string]interface{}) {
	if len(values) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ctx := t.getOrCreateLocked(sessionID)
	for k, v := range values {
		ctx.ProjectContext[k] = v
	}
	ctx.UpdatedAt = time.Now()
}

// RecentHistory returns up to the last n history entries, chronological
func (t *Table) RecentHistory(sessionID string, n int) []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ctx, ok := t.contexts[sessionID]
	if !ok || n <= 0 {
		return nil
	}

	history := ctx.History
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return append([]Message(nil), history...)
}

// RecentTools returns up to the last n recorded tool names, newest last
func (t *Table) RecentTools(sessionID string, n int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ctx, ok := t.contexts[sessionID]
	if !ok || n <= 0 {
		return nil
	}

	tools := ctx.RecentTools
	if len(tools) > n {
		tools = tools[len(tools)-n:]
	}
	return append([]string(nil), tools...)
}

// Reset deletes a session's context entirely. Resetting an absent id is a
// no-op.
func (t *Table) Reset(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.contexts[sessionID]; !ok {
		return
	}

	delete(t.contexts, sessionID)
	t.logger.Info().Str("session_id", sessionID).Msg("Session context reset")
}

// EvictOlderThan removes every context whose updated timestamp precedes
// now-maxAge and returns the number removed.
func (t *Table) EvictOlderThan(maxAge time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for sessionID, ctx := range t.contexts {
		if ctx.UpdatedAt.Before(cutoff) {
			delete(t.contexts, sessionID)
			removed++
		}
	}

	if removed > 0 {
		t.logger.Info().Int("removed", removed).Msg("Evicted stale session contexts")
	}

	return removed
}

// Len returns the number of live contexts
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.contexts)
}

// Sessions returns the ids of all live contexts
func (t *Table) Sessions() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.contexts))
	for id := range t.contexts {
		ids = append(ids, id)
	}
	return ids
}
