package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPool_RunsJobsInOrderWithOneWorker(t *testing.T) {
	pool := NewPool(zap.NewNop(), 1, 16)
	pool.Start(context.Background())

	var (
		mu    sync.Mutex
		order []int
	)
	for i := range 10 {
		ok := pool.Submit(Job{
			Name: "record",
			Run: func(context.Context) error {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, i)
				return nil
			},
		})
		require.True(t, ok)
	}

	pool.Stop()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestPool_FailedJobDoesNotStopWorkers(t *testing.T) {
	pool := NewPool(zap.NewNop(), 2, 8)
	pool.Start(context.Background())

	var done atomic.Int32
	pool.Submit(Job{Name: "fails", Run: func(context.Context) error { return errors.New("boom") }})
	pool.Submit(Job{Name: "ok", Run: func(context.Context) error { done.Add(1); return nil }})
	pool.Submit(Job{Name: "ok", Run: func(context.Context) error { done.Add(1); return nil }})

	pool.Stop()
	assert.Equal(t, int32(2), done.Load())
}

func TestPool_QueueFull(t *testing.T) {
	pool := NewPool(zap.NewNop(), 1, 1)
	pool.Start(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, pool.Submit(Job{Name: "blocker", Run: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}))
	<-started

	require.True(t, pool.Submit(Job{Name: "queued", Run: func(context.Context) error { return nil }}))
	assert.False(t, pool.Submit(Job{Name: "dropped", Run: func(context.Context) error { return nil }}))

	close(release)
	pool.Stop()
}

func TestPool_GracefulShutdown(t *testing.T) {
	pool := NewPool(zap.NewNop(), 2, 8)
	pool.Start(context.Background())

	var finished atomic.Int32
	for range 4 {
		pool.Submit(Job{Name: "slow", Run: func(context.Context) error {
			time.Sleep(20 * time.Millisecond)
			finished.Add(1)
			return nil
		}})
	}

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker pool did not stop gracefully within 5 seconds")
	}

	assert.Equal(t, int32(4), finished.Load(), "queued jobs are drained before Stop returns")
	assert.False(t, pool.Submit(Job{Name: "late", Run: func(context.Context) error { return nil }}))

	pool.Stop()
}
