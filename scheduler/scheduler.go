// Package scheduler drives step functions on a fixed cadence.
//
// A Task is the cancellable handle behind the descent animation and the
// "simulate N trials" batch. The step functions themselves stay pure; only the
// loop lives here.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// StepFunc performs one tick and reports whether the task should continue
type StepFunc func() bool

// Reason tells why a task finished
type Reason int

const (
	// Pending means the task is still running.
	Pending Reason = iota
	// Finished means the step function asked to stop.
	Finished
	// Exhausted means a batch ran all of its ticks.
	Exhausted
	// Canceled means Stop was called or the parent context ended.
	Canceled
)

func (r Reason) String() string {
	switch r {
	case Finished:
		return "finished"
	case Exhausted:
		return "exhausted"
	case Canceled:
		return "canceled"
	default:
		return "pending"
	}
}

// Task is a running loop
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	ticks  int
	reason Reason
}

// Every calls step every interval until step returns false or the task is
// stopped. The first call happens after one interval.
func Every(ctx context.Context, interval time.Duration, step StepFunc) *Task {
	return start(ctx, interval, -1, step)
}

// Batch calls step up to n times, one per interval. A zero interval runs the
// batch back to back while still honoring Stop between ticks.
func Batch(ctx context.Context, n int, interval time.Duration, step StepFunc) *Task {
	if n < 0 {
		n = 0
	}
	return start(ctx, interval, n, step)
}

func start(ctx context.Context, interval time.Duration, limit int, step StepFunc) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go t.loop(ctx, interval, limit, step)
	return t
}

func (t *Task) loop(ctx context.Context, interval time.Duration, limit int, step StepFunc) {
	defer close(t.done)
	defer t.cancel()

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if limit >= 0 && t.Ticks() >= limit {
			t.finish(Exhausted)
			return
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				t.finish(Canceled)
				return
			case <-tick:
			}
		} else if ctx.Err() != nil {
			t.finish(Canceled)
			return
		}

		more := step()
		t.mu.Lock()
		t.ticks++
		t.mu.Unlock()
		if !more {
			t.finish(Finished)
			return
		}
	}
}

func (t *Task) finish(r Reason) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.reason == Pending {
		t.reason = r
	}
}

// Stop cancels the task. It is safe to call on a nil task, more than once,
// and after the task has already ended.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.cancel()
}

// Wait blocks until the loop exits and returns why it ended
func (t *Task) Wait() Reason {
	if t == nil {
		return Canceled
	}
	<-t.done
	return t.Reason()
}

// Done is closed when the loop exits
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Ticks returns how many times step has run
func (t *Task) Ticks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}

// Reason returns why the task ended, or Pending while it runs
func (t *Task) Reason() Reason {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}

// Running reports whether the loop is still active
func (t *Task) Running() bool {
	if t == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}
