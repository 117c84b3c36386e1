package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Run("should classify rate limit responses", func(t *testing.T) {
		for _, err := range []error{
			errors.New("429 too many requests"),
			errors.New("rate limit exceeded"),
			errors.New("anthropic: overloaded_error"),
		} {
			classified := Classify(err)
			assert.Equal(t, KindRateLimited, classified.Kind, err.Error())
			assert.True(t, classified.Retryable())
		}
	})

	t.Run("should classify transient server and network errors", func(t *testing.T) {
		for _, err := range []error{
			errors.New("500 internal server error"),
			errors.New("502 bad gateway"),
			errors.New("503 service unavailable"),
			errors.New("read tcp: econnreset"),
			errors.New("dial tcp: connection refused"),
			errors.New("request timeout"),
		} {
			classified := Classify(err)
			assert.Equal(t, KindTransient, classified.Kind, err.Error())
			assert.True(t, classified.Retryable())
		}
	})

	t.Run("should classify everything else as terminal", func(t *testing.T) {
		for _, err := range []error{
			errors.New("401 unauthorized"),
			errors.New("invalid request: missing model"),
		} {
			classified := Classify(err)
			assert.Equal(t, KindTerminal, classified.Kind, err.Error())
			assert.False(t, classified.Retryable())
		}
	})

	t.Run("should treat context cancellation as terminal", func(t *testing.T) {
		assert.Equal(t, KindTerminal, Classify(context.Canceled).Kind)
		assert.Equal(t, KindTerminal, Classify(context.DeadlineExceeded).Kind)
	})

	t.Run("should preserve an existing classification", func(t *testing.T) {
		original := &BackendError{Kind: KindRateLimited, Err: errors.New("slow down")}
		wrapped := fmt.Errorf("call failed: %w", original)

		assert.Same(t, original, Classify(wrapped))
	})

	t.Run("should unwrap to the underlying error", func(t *testing.T) {
		underlying := errors.New("503 service unavailable")
		classified := Classify(underlying)

		require.ErrorIs(t, classified, underlying)
	})

	t.Run("should return nil for nil", func(t *testing.T) {
		assert.Nil(t, Classify(nil))
	})
}

func TestErrorHelpers(t *testing.T) {
	t.Run("should report retryability", func(t *testing.T) {
		assert.True(t, IsRetryable(errors.New("503 service unavailable")))
		assert.False(t, IsRetryable(errors.New("401 unauthorized")))
		assert.False(t, IsRetryable(nil))
	})

	t.Run("should detect rate limits", func(t *testing.T) {
		assert.True(t, IsRateLimited(errors.New("429 too many requests")))
		assert.False(t, IsRateLimited(errors.New("503 service unavailable")))
		assert.False(t, IsRateLimited(nil))
	})
}
