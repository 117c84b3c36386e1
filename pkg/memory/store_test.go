package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(Config{
		Path:   filepath.Join(t.TempDir(), "memory.json"),
		Logger: zerolog.New(os.Stdout).Level(zerolog.ErrorLevel),
	})
	require.NoError(t, err)
	return store
}

func TestNewStore(t *testing.T) {
	t.Run("should require a path", func(t *testing.T) {
		_, err := NewStore(Config{})
		assert.Error(t, err)
	})

	t.Run("should create parent directory", func(t *testing.T) {
		base := t.TempDir()
		store, err := NewStore(Config{
			Path:   filepath.Join(base, "nested", "memory.json"),
			Logger: zerolog.Nop(),
		})
		require.NoError(t, err)

		info, err := os.Stat(filepath.Dir(store.Path()))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestRead(t *testing.T) {
	t.Run("should return empty state for missing file", func(t *testing.T) {
		store := testStore(t)
		assert.Empty(t, store.Read())
	})

	t.Run("should return empty state for corrupt file", func(t *testing.T) {
		store := testStore(t)
		require.NoError(t, os.WriteFile(store.Path(), []byte("{broken"), 0600))

		assert.Empty(t, store.Read())
	})
}

func TestWrite(t *testing.T) {
	t.Run("should round-trip written keys", func(t *testing.T) {
		store := testStore(t)

		require.NoError(t, store.Write(map[string]interface{}{
			"project_language": "go",
			"style":            "tabs",
		}))

		state := store.Read()
		assert.Equal(t, "go", state["project_language"])
		assert.Equal(t, "tabs", state["style"])
		assert.Contains(t, state, "last_updated")
	})

	t.Run("should shallow merge with later values winning", func(t *testing.T) {
		store := testStore(t)

		require.NoError(t, store.Write(map[string]interface{}{"a": "1", "b": "2"}))
		require.NoError(t, store.Write(map[string]interface{}{"b": "3"}))

		state := store.Read()
		assert.Equal(t, "1", state["a"])
		assert.Equal(t, "3", state["b"])
	})

	t.Run("should not leave a temp file behind", func(t *testing.T) {
		store := testStore(t)
		require.NoError(t, store.Write(map[string]interface{}{"k": "v"}))

		_, err := os.Stat(store.Path() + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})
}

func TestAppendLearning(t *testing.T) {
	t.Run("should append and read back records", func(t *testing.T) {
		store := testStore(t)

		require.NoError(t, store.AppendLearning("s1", "Q: how do goroutines work?... A: lightweight threads..."))
		require.NoError(t, store.AppendLearning("s2", "Q: what is a mutex?... A: mutual exclusion lock..."))

		learnings := store.RecentLearnings(5)
		require.Len(t, learnings, 2)
		assert.Equal(t, "s1", learnings[0].SessionID)
		assert.Equal(t, "s2", learnings[1].SessionID)
		assert.False(t, learnings[1].Timestamp.IsZero())
	})

	t.Run("should cap list at fifty newest entries", func(t *testing.T) {
		store := testStore(t)

		for i := 0; i < 51; i++ {
			require.NoError(t, store.AppendLearning("s1", fmt.Sprintf("learning %d", i)))
		}

		learnings := store.RecentLearnings(100)
		require.Len(t, learnings, 50)
		assert.Equal(t, "learning 1", learnings[0].Learning) // oldest evicted
		assert.Equal(t, "learning 50", learnings[49].Learning)
	})

	t.Run("should survive process restart", func(t *testing.T) {
		store := testStore(t)
		require.NoError(t, store.AppendLearning("s1", "persisted"))

		reopened, err := NewStore(Config{Path: store.Path(), Logger: zerolog.Nop()})
		require.NoError(t, err)

		learnings := reopened.RecentLearnings(1)
		require.Len(t, learnings, 1)
		assert.Equal(t, "persisted", learnings[0].Learning)
	})

	t.Run("should preserve unrelated keys", func(t *testing.T) {
		store := testStore(t)
		require.NoError(t, store.Write(map[string]interface{}{"pinned": true}))

		require.NoError(t, store.AppendLearning("s1", "something"))

		assert.Equal(t, true, store.Read()["pinned"])
	})
}

func TestRecentLearnings(t *testing.T) {
	t.Run("should return newest n oldest first", func(t *testing.T) {
		store := testStore(t)
		for i := 0; i < 8; i++ {
			require.NoError(t, store.AppendLearning("s1", fmt.Sprintf("l%d", i)))
		}

		learnings := store.RecentLearnings(5)
		require.Len(t, learnings, 5)
		assert.Equal(t, "l3", learnings[0].Learning)
		assert.Equal(t, "l7", learnings[4].Learning)
	})

	t.Run("should tolerate malformed learning list on disk", func(t *testing.T) {
		store := testStore(t)
		state := map[string]interface{}{"recent_learnings": "not a list"}
		data, _ := json.Marshal(state)
		require.NoError(t, os.WriteFile(store.Path(), data, 0600))

		assert.Empty(t, store.RecentLearnings(5))
		// Appends recover from the bad list
		require.NoError(t, store.AppendLearning("s1", "fresh"))
		assert.Len(t, store.RecentLearnings(5), 1)
	})
}
