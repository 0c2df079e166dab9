package retrypkg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func retryFlaky(err error) bool { return errors.Is(err, errFlaky) }

func TestDo(t *testing.T) {
	policy := Policy{Attempts: 3, BaseDelay: time.Microsecond, Retryable: retryFlaky}

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		t.Parallel()

		calls := 0
		got, err := Do(context.Background(), policy, func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errFlaky
			}
			return 42, nil
		})

		require.NoError(t, err)
		require.Equal(t, 42, got)
		require.Equal(t, 3, calls)
	})

	t.Run("GivesUp", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := Do(context.Background(), policy, func(context.Context) (int, error) {
			calls++
			return 0, errFlaky
		})

		require.ErrorIs(t, err, errFlaky)
		require.Equal(t, 3, calls)
	})

	t.Run("PermanentError", func(t *testing.T) {
		t.Parallel()

		permanent := errors.New("permanent")
		calls := 0
		_, err := Do(context.Background(), policy, func(context.Context) (int, error) {
			calls++
			return 0, permanent
		})

		require.Equal(t, permanent, err)
		require.Equal(t, 1, calls)
	})

	t.Run("NoRetryableFunc", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := Do(context.Background(), Policy{Attempts: 5}, func(context.Context) (int, error) {
			calls++
			return 0, errFlaky
		})

		require.Equal(t, errFlaky, err)
		require.Equal(t, 1, calls)
	})

	t.Run("ZeroAttemptsCallsOnce", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := Do(context.Background(), Policy{Retryable: retryFlaky}, func(context.Context) (int, error) {
			calls++
			return 0, errFlaky
		})

		require.ErrorIs(t, err, errFlaky)
		require.Equal(t, 1, calls)
	})

	t.Run("ZeroBaseDelay", func(t *testing.T) {
		t.Parallel()

		calls := 0
		start := time.Now()
		_, err := Do(context.Background(), Policy{Attempts: 4, Retryable: retryFlaky}, func(context.Context) (int, error) {
			calls++
			return 0, errFlaky
		})

		require.ErrorIs(t, err, errFlaky)
		require.Equal(t, 4, calls)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		slow := Policy{Attempts: 5, BaseDelay: time.Hour, Retryable: retryFlaky}
		calls := 0
		_, err := Do(ctx, slow, func(context.Context) (int, error) {
			calls++
			return 0, errFlaky
		})

		require.Equal(t, errFlaky, err)
		require.Equal(t, 1, calls)
	})
}
