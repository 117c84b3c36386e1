package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// maxLearnings caps the reserved learning list, oldest evicted first
	maxLearnings = 50

	learningsKey   = "recent_learnings"
	lastUpdatedKey = "last_updated"
)

// Learning is one condensed question/answer summary
type Learning struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Learning  string    `json:"learning"`
}

// Store is the file-backed memory store. A single mutex serializes every
// read-modify-write cycle so concurrent learning appends cannot lose updates.
type Store struct {
	path   string
	logger zerolog.Logger
	mu     sync.Mutex
}

// Config holds store configuration
type Config struct {
	Path   string
	Logger zerolog.Logger
}

// NewStore creates a store. The backing file is created lazily on first
// write; only the parent directory is prepared here.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("memory path is required")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create memory directory: %w", err)
	}

	return &Store{
		path:   cfg.Path,
		logger: cfg.Logger,
	}, nil
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Read returns the current persisted state. A missing file yields empty
// state; a corrupt file yields empty state and a log entry, never an error.
func (s *Store) Read() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readLocked()
}

func (s *Store) readLocked() map[string]interface{} {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error().Err(err).Str("path", s.path).Msg("Failed to read memory file")
		}
		return map[string]interface{}{}
	}

	var state map[string]interface{}
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("Memory file corrupt, starting empty")
		return map[string]interface{}{}
	}

	return state
}

// Write merges updates into the persisted state (shallow merge, later values
// win), stamps last_updated, and persists atomically.
func (s *Store) Write(updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.readLocked()
	for k, v := range updates {
		state[k] = v
	}

	return s.writeLocked(state)
}

func (s *Store) writeLocked(state map[string]interface{}) error {
	state[lastUpdatedKey] = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory state: %w", err)
	}

	// Atomic replace: temp file then rename
	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp memory file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace memory file: %w", err)
	}

	s.logger.Debug().Int("keys", len(state)).Msg("Memory state written")
	return nil
}

// AppendLearning appends a learning record, truncates the list to the newest
// entries, and persists.
func (s *Store) AppendLearning(sessionID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.readLocked()
	learnings := decodeLearnings(state[learningsKey], s.logger)

	learnings = append(learnings, Learning{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Learning:  text,
	})

	if len(learnings) > maxLearnings {
		learnings = learnings[len(learnings)-maxLearnings:]
	}

	state[learningsKey] = learnings

	return s.writeLocked(state)
}

// RecentLearnings returns up to the n newest learning records, oldest first
func (s *Store) RecentLearnings(n int) []Learning {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return nil
	}

	learnings := decodeLearnings(s.readLocked()[learningsKey], s.logger)
	if len(learnings) > n {
		learnings = learnings[len(learnings)-n:]
	}
	return learnings
}

// decodeLearnings converts the raw reserved-list value back into records.
// Unrecognizable entries are dropped rather than failing the whole store.
func decodeLearnings(raw interface{}, logger zerolog.Logger) []Learning {
	if raw == nil {
		return nil
	}

	// Fast path: already typed (same-process append after append)
	if typed, ok := raw.([]Learning); ok {
		return typed
	}

	data, err := json.Marshal(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to re-encode learning list, dropping")
		return nil
	}

	var learnings []Learning
	if err := json.Unmarshal(data, &learnings); err != nil {
		logger.Warn().Err(err).Msg("Learning list malformed, dropping")
		return nil
	}

	return learnings
}
