package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	t.Run("command metadata", func(t *testing.T) {
		cmd := GetRootCmd()
		assert.Equal(t, "mitra", cmd.Use)
		assert.Equal(t, version, cmd.Version)
	})

	t.Run("global flags", func(t *testing.T) {
		cmd := GetRootCmd()
		assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
		assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	})

	t.Run("subcommands registered", func(t *testing.T) {
		cmd := GetRootCmd()

		names := map[string]bool{}
		for _, c := range cmd.Commands() {
			names[c.Name()] = true
		}

		for _, expected := range []string{"chat", "coordinate", "status", "serve"} {
			assert.True(t, names[expected], "%s command should exist", expected)
		}
	})

	t.Run("help text", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"--help"})

		output := &bytes.Buffer{}
		cmd.SetOut(output)

		err := cmd.Execute()
		require.NoError(t, err)

		assert.Contains(t, output.String(), "AI development assistant")
	})
}

func TestChatCommand(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		assert.NotNil(t, chatCmd.Flags().Lookup("template"))
		assert.NotNil(t, chatCmd.Flags().Lookup("session"))
		assert.NotNil(t, chatCmd.Flags().Lookup("stream"))
		assert.NotNil(t, chatCmd.Flags().Lookup("project"))
	})

	t.Run("requires a message argument", func(t *testing.T) {
		err := chatCmd.Args(chatCmd, []string{})
		assert.Error(t, err)

		err = chatCmd.Args(chatCmd, []string{"hello"})
		assert.NoError(t, err)
	})
}

func TestCoordinateCommand(t *testing.T) {
	t.Run("flags and defaults", func(t *testing.T) {
		flag := coordinateCmd.Flags().Lookup("agents")
		require.NotNil(t, flag)
		assert.Equal(t, "architect,reviewer", flag.DefValue)
	})

	t.Run("requires a task argument", func(t *testing.T) {
		err := coordinateCmd.Args(coordinateCmd, []string{})
		assert.Error(t, err)
	})
}
