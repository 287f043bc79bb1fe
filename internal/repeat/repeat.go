// Package repeat runs a function on a fixed interval until stopped. It backs
// press-and-hold weight adjustment: one call as the press starts, then one
// per interval while the press lasts.
package repeat

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the hold-repeat period used when none is given.
const DefaultInterval = 200 * time.Millisecond

// Func is the repeated task. A non-nil error stops the Repeater.
type Func func(ctx context.Context) error

// Repeater is a handle on a running repeat loop. The loop goroutine exits
// before Stop returns, and also exits on its own when the parent context is
// cancelled or fn fails.
type Repeater struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	err   error
	count int
}

// Start calls fn once immediately and then every interval. A non-positive
// interval means DefaultInterval.
func Start(ctx context.Context, interval time.Duration, fn Func) *Repeater {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	r := &Repeater{cancel: cancel, done: make(chan struct{})}
	go r.run(ctx, interval, fn)
	return r
}

func (r *Repeater) run(ctx context.Context, interval time.Duration, fn Func) {
	defer close(r.done)

	if !r.fire(ctx, fn) {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.fire(ctx, fn) {
				return
			}
		}
	}
}

// fire runs fn once and reports whether the loop should continue.
func (r *Repeater) fire(ctx context.Context, fn Func) bool {
	if ctx.Err() != nil {
		return false
	}
	err := fn(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	if err != nil {
		r.err = err
		return false
	}
	return true
}

// Stop ends the loop, waits for it to exit and returns the error that
// stopped it, if any. Stop is safe to call more than once.
func (r *Repeater) Stop() error {
	r.cancel()
	<-r.done
	return r.Err()
}

// Done is closed once the loop has exited.
func (r *Repeater) Done() <-chan struct{} {
	return r.done
}

// Err returns the error returned by fn, or nil.
func (r *Repeater) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Count returns how many times fn has run.
func (r *Repeater) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
