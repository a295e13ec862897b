package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForN(t *testing.T) {
	t.Run("covers every index exactly once", func(t *testing.T) {
		const n = 1003
		hits := make([]int32, n)

		err := ForN(context.Background(), n, 7, func(start, end int) error {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
			return nil
		})
		require.NoError(t, err)

		for i, h := range hits {
			require.Equal(t, int32(1), h, "index %d", i)
		}
	})

	t.Run("zero n is a no-op", func(t *testing.T) {
		called := false
		err := ForN(context.Background(), 0, 4, func(start, end int) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("propagates worker error", func(t *testing.T) {
		wantErr := errors.New("boom")
		err := ForN(context.Background(), 100, 4, func(start, end int) error {
			if start == 0 {
				return wantErr
			}
			return nil
		})
		require.ErrorIs(t, err, wantErr)
	})

	t.Run("respects cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := ForN(ctx, 1000, 2, func(start, end int) error {
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}
