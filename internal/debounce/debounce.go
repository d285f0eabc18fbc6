// Package debounce delays an action until a burst of triggers goes quiet.
package debounce

import (
	"sync"
	"time"
)

// DefaultInterval is the quiet period used for search inputs.
const DefaultInterval = 400 * time.Millisecond

// Debouncer calls fn with the last value passed to Trigger once no further
// Trigger has happened for the interval. fn runs on its own goroutine.
type Debouncer[T any] struct {
	interval time.Duration
	fn       func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	gen     uint64
	stopped bool
}

func New[T any](interval time.Duration, fn func(T)) *Debouncer[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Debouncer[T]{interval: interval, fn: fn}
}

// Trigger records value and restarts the quiet period.
func (d *Debouncer[T]) Trigger(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = value
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() { d.fire(gen) })
}

// Flush runs a pending call now. It reports whether one was pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.timer == nil || !d.timer.Stop() {
		d.mu.Unlock()
		return false
	}
	d.timer = nil
	value := d.pending
	d.mu.Unlock()
	d.fn(value)
	return true
}

// Stop drops any pending call; later Triggers are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// A timer that already fired cannot be stopped; gen tells it apart.
	if gen != d.gen || d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	value := d.pending
	d.mu.Unlock()
	d.fn(value)
}
