package auth_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/viabilize/viabilize-auth"
)

var fastRetry = auth.RetryPolicy{
	MaxAttempts:     4,
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
}

func TestTaskRunner_RunsQueuedTasks(t *testing.T) {
	runner := auth.NewTaskRunner(3, 32)

	var count atomic.Int32
	for range 20 {
		ok := runner.Go("count", func(context.Context) error {
			count.Add(1)
			return nil
		})
		require.True(t, ok)
	}

	require.NoError(t, runner.Close(context.Background()))
	assert.Equal(t, int32(20), count.Load())
}

func TestTaskRunner_RetriesUntilSuccess(t *testing.T) {
	runner := auth.NewTaskRunner(1, 4, auth.WithRetryPolicy(fastRetry))

	var attempts atomic.Int32
	runner.GoWithRetry("flaky", func(context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("smtp unavailable")
		}
		return nil
	})

	require.NoError(t, runner.Close(context.Background()))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestTaskRunner_RetryGivesUp(t *testing.T) {
	runner := auth.NewTaskRunner(1, 4, auth.WithRetryPolicy(fastRetry))

	var attempts atomic.Int32
	runner.GoWithRetry("down", func(context.Context) error {
		attempts.Add(1)
		return errors.New("smtp unavailable")
	})

	require.NoError(t, runner.Close(context.Background()))
	assert.Equal(t, int32(fastRetry.MaxAttempts), attempts.Load())
}

func TestTaskRunner_PermanentErrorStopsRetry(t *testing.T) {
	runner := auth.NewTaskRunner(1, 4, auth.WithRetryPolicy(fastRetry))

	var attempts atomic.Int32
	runner.GoWithRetry("rejected", func(context.Context) error {
		attempts.Add(1)
		return backoff.Permanent(errors.New("mailbox unavailable"))
	})

	require.NoError(t, runner.Close(context.Background()))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestTaskRunner_GoDoesNotRetry(t *testing.T) {
	runner := auth.NewTaskRunner(1, 4, auth.WithRetryPolicy(fastRetry))

	var attempts atomic.Int32
	runner.Go("once", func(context.Context) error {
		attempts.Add(1)
		return errors.New("failed")
	})

	require.NoError(t, runner.Close(context.Background()))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestTaskRunner_QueueFull(t *testing.T) {
	runner := auth.NewTaskRunner(1, 1)

	release := make(chan struct{})
	started := make(chan struct{})

	require.True(t, runner.Go("block", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	require.True(t, runner.Go("queued", func(context.Context) error { return nil }))
	assert.False(t, runner.Go("overflow", func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, runner.Close(context.Background()))
}

func TestTaskRunner_RejectsAfterClose(t *testing.T) {
	runner := auth.NewTaskRunner(1, 4)
	require.NoError(t, runner.Close(context.Background()))
	require.NoError(t, runner.Close(context.Background()))

	assert.False(t, runner.Go("late", func(context.Context) error { return nil }))
	assert.False(t, runner.GoWithRetry("late", func(context.Context) error { return nil }))
}

func TestTaskRunner_CloseTimesOut(t *testing.T) {
	runner := auth.NewTaskRunner(1, 1)

	var cancelled atomic.Bool
	started := make(chan struct{})
	runner.Go("slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := runner.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Eventually(t, cancelled.Load, time.Second, 5*time.Millisecond)
}

func TestTaskRunner_RecoversPanics(t *testing.T) {
	runner := auth.NewTaskRunner(1, 4)

	var ran atomic.Bool
	runner.Go("panics", func(context.Context) error { panic("boom") })
	runner.Go("after", func(context.Context) error {
		ran.Store(true)
		return nil
	})

	require.NoError(t, runner.Close(context.Background()))
	assert.True(t, ran.Load())
}
