package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Jitter: 0.2}
}

func TestDo(t *testing.T) {
	t.Run("succeeds first attempt", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts and wraps last error", func(t *testing.T) {
		sentinel := errors.New("persistent failure")
		calls := 0
		err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) error {
			calls++
			return sentinel
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := Do(ctx, fastPolicy(5), func(ctx context.Context) error {
			calls++
			cancel()
			return errors.New("transient")
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero attempts coerced to one", func(t *testing.T) {
		calls := 0
		_ = Do(context.Background(), Policy{}, func(ctx context.Context) error {
			calls++
			return errors.New("x")
		})
		assert.Equal(t, 1, calls)
	})
}

func TestJittered(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := jittered(base, 0.2)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
	assert.Equal(t, base, jittered(base, 0))
}
