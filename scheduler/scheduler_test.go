package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryStopsWhenStepDeclines(t *testing.T) {
	var n atomic.Int32
	task := Every(context.Background(), time.Millisecond, func() bool {
		return n.Add(1) < 5
	})
	assert.Equal(t, Finished, task.Wait())
	assert.Equal(t, 5, task.Ticks())
	assert.False(t, task.Running())
}

func TestBatchRunsExactlyN(t *testing.T) {
	var n atomic.Int32
	task := Batch(context.Background(), 50, 0, func() bool {
		n.Add(1)
		return true
	})
	assert.Equal(t, Exhausted, task.Wait())
	assert.Equal(t, int32(50), n.Load())
	assert.Equal(t, 50, task.Ticks())
}

func TestBatchZero(t *testing.T) {
	task := Batch(context.Background(), -1, time.Millisecond, func() bool {
		t.Fatal("step must not run")
		return false
	})
	assert.Equal(t, Exhausted, task.Wait())
}

func TestStopIsIdempotent(t *testing.T) {
	task := Every(context.Background(), time.Hour, func() bool { return true })
	require.True(t, task.Running())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task.Stop()
		}()
	}
	wg.Wait()
	assert.Equal(t, Canceled, task.Wait())

	task.Stop()
	assert.Equal(t, Canceled, task.Reason())
	assert.Zero(t, task.Ticks())
}

func TestStopAfterFinish(t *testing.T) {
	task := Batch(context.Background(), 1, 0, func() bool { return true })
	assert.Equal(t, Exhausted, task.Wait())
	task.Stop()
	assert.Equal(t, Exhausted, task.Reason())
}

func TestNilTask(t *testing.T) {
	var task *Task
	assert.NotPanics(t, task.Stop)
	assert.False(t, task.Running())
	assert.Equal(t, Canceled, task.Wait())
}

func TestParentContextCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := Every(ctx, time.Hour, func() bool { return true })
	cancel()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not observe parent cancellation")
	}
	assert.Equal(t, Canceled, task.Reason())
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "canceled", Canceled.String())
}
