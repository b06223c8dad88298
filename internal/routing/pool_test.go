package routing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunPoolVisitsEveryIndex(t *testing.T) {
	var seen [50]atomic.Int32
	err := runPool(context.Background(), 4, len(seen), func(idx int) error {
		seen[idx].Add(1)
		return nil
	})
	assert.NoError(t, err)
	for i := range seen {
		assert.Equal(t, int32(1), seen[i].Load(), "index %d", i)
	}
}

func TestRunPoolJoinsErrors(t *testing.T) {
	errOdd := errors.New("odd row")
	err := runPool(context.Background(), 3, 6, func(idx int) error {
		if idx%2 == 1 {
			return errOdd
		}
		return nil
	})
	assert.ErrorIs(t, err, errOdd)
}

func TestRunPoolCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	err := runPool(ctx, 1, 10, func(idx int) error {
		calls.Add(1)
		if idx == 0 {
			cancel()
			// Keep the only worker busy so the dispatcher sees the cancellation.
			time.Sleep(50 * time.Millisecond)
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, calls.Load(), int32(10))
}

func TestRunPoolCancelledAfterLastIndex(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := runPool(ctx, 1, 3, func(idx int) error {
		if idx == 2 {
			cancel()
		}
		return nil
	})
	assert.NoError(t, err, "all work was done before the cancellation")
}

func TestRunPoolAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := runPool(ctx, 2, 5, func(int) error {
		calls.Add(1)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}
