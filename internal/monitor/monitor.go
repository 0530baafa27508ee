package monitor

import (
	"context"
	"sync"
	"time"
)

// Task runs fn on a fixed interval until stopped. A tick that arrives while
// fn is still running is dropped by the ticker, so fn never overlaps itself.
type Task struct {
	name      string
	interval  time.Duration
	immediate bool
	fn        func(context.Context)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewTask creates a stopped task. When immediate is set the first run happens
// as soon as the task starts instead of after one interval.
func NewTask(name string, interval time.Duration, immediate bool, fn func(context.Context)) *Task {
	if interval <= 0 {
		interval = time.Second
	}
	done := make(chan struct{})
	close(done)
	return &Task{
		name:      name,
		interval:  interval,
		immediate: immediate,
		fn:        fn,
		doneCh:    done,
	}
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Interval returns the tick period.
func (t *Task) Interval() time.Duration { return t.interval }

// Running reports whether further firings are enabled.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Start launches the loop in a goroutine. ctx bounds the whole lifetime and
// is handed to every run. Starting a running task is a no-op.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.running = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	go t.run(ctx, t.stopCh, t.doneCh)
}

// Stop disables further firings. A run already in progress is not
// interrupted and Stop does not wait for it; use Wait for that.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.running = false
	close(t.stopCh)
}

// Wait blocks until the most recently started loop has returned.
func (t *Task) Wait() {
	t.mu.Lock()
	done := t.doneCh
	t.mu.Unlock()
	<-done
}

func (t *Task) run(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	if t.immediate && !stopped(ctx, stopCh) {
		t.fn(ctx)
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if stopped(ctx, stopCh) {
				return
			}
			t.fn(ctx)
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func stopped(ctx context.Context, stopCh chan struct{}) bool {
	select {
	case <-stopCh:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
