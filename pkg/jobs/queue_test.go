package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesTasks(t *testing.T) {
	var sum atomic.Int64
	q := New("sum", func(_ context.Context, task Task[int]) error {
		sum.Add(int64(task.Payload))
		return nil
	}, Options{Workers: 3})
	q.Start(context.Background())
	defer q.Stop()

	for i := 1; i <= 10; i++ {
		require.NoError(t, q.Submit("t", i))
	}
	q.Drain()
	assert.Equal(t, int64(55), sum.Load())
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	q := New("flaky", func(_ context.Context, task Task[string]) error {
		if calls.Add(1) < 3 {
			return errors.New("boom")
		}
		return nil
	}, Options{MaxRetries: 5, Backoff: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Submit("mail-1", "hello"))
	q.Drain()
	assert.Equal(t, int32(3), calls.Load())
}

func TestQueueAbandonsAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	q := New("broken", func(context.Context, Task[string]) error {
		calls.Add(1)
		return errors.New("always")
	}, Options{MaxRetries: 2, Backoff: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Submit("x", "y"))
	q.Drain()
	assert.Equal(t, int32(3), calls.Load())
}

func TestSubmitBeforeStart(t *testing.T) {
	q := New("idle", func(context.Context, Task[int]) error { return nil }, Options{})
	err := q.Submit("x", 1)
	assert.ErrorIs(t, err, ErrQueueClosed)
}
