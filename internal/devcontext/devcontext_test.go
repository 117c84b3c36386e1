package devcontext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	t.Run("should detect technologies from marker files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM scratch\n"), 0644))

		dc := Analyze(context.Background(), dir, zerolog.Nop())

		require.NotNil(t, dc.Project)
		assert.Contains(t, dc.Project.Technologies, "Go")
		assert.Contains(t, dc.Project.Technologies, "Docker")
		assert.NotContains(t, dc.Project.Technologies, "Rust")
	})

	t.Run("should degrade gracefully outside a git repository", func(t *testing.T) {
		dir := t.TempDir()

		dc := Analyze(context.Background(), dir, zerolog.Nop())

		assert.Nil(t, dc.Git)
		assert.NotNil(t, dc.Project)
		assert.Equal(t, dir, dc.Root)
	})
}

func TestSummary(t *testing.T) {
	t.Run("should include project name and technologies", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example\n"), 0644))

		summary := Analyze(context.Background(), dir, zerolog.Nop()).Summary()

		assert.Contains(t, summary, "Project: "+filepath.Base(dir))
		assert.Contains(t, summary, "Location: "+dir)
		assert.Contains(t, summary, "Technologies: Go")
	})

	t.Run("should omit git lines when not in a repository", func(t *testing.T) {
		summary := Analyze(context.Background(), t.TempDir(), zerolog.Nop()).Summary()

		assert.NotContains(t, summary, "Git branch")
	})
}
