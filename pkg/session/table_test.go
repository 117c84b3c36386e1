package session

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *Table {
	return NewTable(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
}

func TestGetOrCreate(t *testing.T) {
	t.Run("should create empty context for new session", func(t *testing.T) {
		table := testTable()

		ctx := table.GetOrCreate("s1")

		assert.Equal(t, "s1", ctx.SessionID)
		assert.Empty(t, ctx.History)
		assert.Empty(t, ctx.RecentTools)
		assert.False(t, ctx.CreatedAt.IsZero())
		assert.False(t, ctx.CreatedAt.After(ctx.UpdatedAt))
	})

	t.Run("should return same context on repeat calls", func(t *testing.T) {
		table := testTable()

		first := table.GetOrCreate("s1")
		table.AppendExchange("s1", "hi", "hello")
		second := table.GetOrCreate("s1")

		assert.Equal(t, first.CreatedAt, second.CreatedAt)
		assert.Len(t, second.History, 2)
	})

	t.Run("should hand out copies not table-owned state", func(t *testing.T) {
		table := testTable()
		table.AppendExchange("s1", "a", "b")

		ctx := table.GetOrCreate("s1")
		ctx.History[0].Content = "mutated"
		ctx.ProjectContext["k"] = "v"

		assert.Equal(t, "a", table.GetOrCreate("s1").History[0].Content)
		assert.Empty(t, table.GetOrCreate("s1").ProjectContext)
	})
}

func TestAppendExchange(t *testing.T) {
	t.Run("should append chronological role-tagged pair", func(t *testing.T) {
		table := testTable()

		table.AppendExchange("s1", "how do channels work?", "they are typed conduits")
		table.AppendExchange("s1", "and select?", "it waits on several")

		history := table.GetOrCreate("s1").History
		require.Len(t, history, 4)
		assert.Equal(t, Message{Role: "user", Content: "how do channels work?"}, history[0])
		assert.Equal(t, Message{Role: "assistant", Content: "they are typed conduits"}, history[1])
		assert.Equal(t, "user", history[2].Role)
		assert.Equal(t, "assistant", history[3].Role)
	})

	t.Run("should refresh updated timestamp", func(t *testing.T) {
		table := testTable()

		before := table.GetOrCreate("s1").UpdatedAt
		time.Sleep(5 * time.Millisecond)
		table.AppendExchange("s1", "q", "a")

		assert.True(t, table.GetOrCreate("s1").UpdatedAt.After(before))
	})
}

func TestRecordToolUses(t *testing.T) {
	t.Run("should cap recent tools at ten newest", func(t *testing.T) {
		table := testTable()

		for i := 0; i < 25; i++ {
			table.RecordToolUses("s1", []string{fmt.Sprintf("tool_%d", i)})
		}

		tools := table.GetOrCreate("s1").RecentTools
		require.Len(t, tools, 10)
		assert.Equal(t, "tool_15", tools[0])
		assert.Equal(t, "tool_24", tools[9])
	})

	t.Run("should ignore empty input", func(t *testing.T) {
		table := testTable()
		table.RecordToolUses("s1", nil)

		assert.Equal(t, 0, table.Len())
	})
}

func TestRecentHistoryAndTools(t *testing.T) {
	table := testTable()
	for i := 0; i < 8; i++ {
		table.AppendExchange("s1", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}
	table.RecordToolUses("s1", []string{"read_file", "grep", "run_tests", "git_diff"})

	t.Run("should return last n history entries chronological", func(t *testing.T) {
		recent := table.RecentHistory("s1", 10)
		require.Len(t, recent, 10)
		assert.Equal(t, "a3", recent[0].Content)
		assert.Equal(t, "a7", recent[9].Content)
	})

	t.Run("should return last n tools newest last", func(t *testing.T) {
		assert.Equal(t, []string{"grep", "run_tests", "git_diff"}, table.RecentTools("s1", 3))
	})

	t.Run("should return nil for unknown session", func(t *testing.T) {
		assert.Nil(t, table.RecentHistory("nope", 10))
		assert.Nil(t, table.RecentTools("nope", 3))
	})
}

func TestReset(t *testing.T) {
	t.Run("should remove context and start fresh afterwards", func(t *testing.T) {
		table := testTable()
		table.AppendExchange("s1", "q", "a")

		table.Reset("s1")

		assert.Equal(t, 0, table.Len())
		ctx := table.GetOrCreate("s1")
		assert.Empty(t, ctx.History)
	})

	t.Run("should be a no-op for absent id", func(t *testing.T) {
		table := testTable()
		table.Reset("ghost")
		assert.Equal(t, 0, table.Len())
	})
}

func TestEvictOlderThan(t *testing.T) {
	t.Run("should remove everything with zero max age", func(t *testing.T) {
		table := testTable()
		table.GetOrCreate("s1")
		table.GetOrCreate("s2")
		time.Sleep(time.Millisecond)

		removed := table.EvictOlderThan(0)

		assert.Equal(t, 2, removed)
		assert.Equal(t, 0, table.Len())
	})

	t.Run("should keep everything when max age exceeds context age", func(t *testing.T) {
		table := testTable()
		table.GetOrCreate("s1")
		table.GetOrCreate("s2")

		removed := table.EvictOlderThan(time.Hour)

		assert.Equal(t, 0, removed)
		assert.Equal(t, 2, table.Len())
	})
}


func TestSetProjectContext(t *testing.T) {
	t.Run("should merge values into the session", func(t *testing.T) {
		table := testTable()

		table.SetProjectContext("s1", map[string]interface{}{"name": "shop"})
		table.SetProjectContext("s1", map[string]interface{}{"description": "marketplace"})

		ctx := table.GetOrCreate("s1")
		assert.Equal(t, "shop", ctx.ProjectContext["name"])
		assert.Equal(t, "marketplace", ctx.ProjectContext["description"])
	})

	t.Run("should overwrite existing keys", func(t *testing.T) {
		table := testTable()

		table.SetProjectContext("s1", map[string]interface{}{"name": "old"})
		table.SetProjectContext("s1", map[string]interface{}{"name": "new"})

		assert.Equal(t, "new", table.GetOrCreate("s1").ProjectContext["name"])
	})

	t.Run("should ignore empty value maps", func(t *testing.T) {
		table := testTable()

		table.SetProjectContext("s1", nil)

		assert.Equal(t, 0, table.Len())
	})
}
