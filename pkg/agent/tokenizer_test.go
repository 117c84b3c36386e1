package agent

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestHeuristicCounter(t *testing.T) {
	counter := &HeuristicCounter{}

	t.Run("should approximate four bytes per token", func(t *testing.T) {
		assert.Equal(t, 0, counter.Count(""))
		assert.Equal(t, 1, counter.Count("abcd"))
		assert.Equal(t, 2, counter.Count("abcde"))
		assert.Equal(t, 25, counter.Count(strings.Repeat("x", 100)))
	})
}

func TestNewTokenCounter(t *testing.T) {
	t.Run("should always return a usable counter", func(t *testing.T) {
		counter := NewTokenCounter(zerolog.Nop())

		assert.NotNil(t, counter)
		assert.Greater(t, counter.Count("hello world, how are tokens counted?"), 0)
	})
}
