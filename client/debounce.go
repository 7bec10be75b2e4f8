package client

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs at most one delayed task at a time. Triggering with a new
// key cancels the pending or running task; triggering again with the key
// already in flight is a no-op.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	seq    uint64
	key    string
	cancel context.CancelFunc
}

// NewDebouncer creates a new Debouncer waiting delay before each task
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the debounce delay. fn receives a context
// that is cancelled when a newer key supersedes it or parent is done.
func (d *Debouncer) Trigger(parent context.Context, key string, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		if d.key == key {
			return
		}
		d.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	d.seq++
	seq := d.seq
	d.key = key
	d.cancel = cancel

	go func() {
		defer d.finish(seq, cancel)

		timer := time.NewTimer(d.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		fn(ctx)
	}()
}

// Cancel drops the pending or running task, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
		d.key = ""
	}
}

func (d *Debouncer) finish(seq uint64, cancel context.CancelFunc) {
	cancel()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seq == seq {
		d.cancel = nil
		d.key = ""
	}
}
