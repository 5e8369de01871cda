// Package busy tracks in-flight operations behind a single debounced
// visibility flag, suitable for driving a progress indicator.
package busy

import (
	"context"
	"sync"
	"time"
)

// Debounce thresholds. Show waits out quick bursts so the indicator does not
// flicker; hide lingers so back-to-back operations read as one.
const (
	ShowDelay = 120 * time.Millisecond
	HideDelay = 200 * time.Millisecond
)

// Tracker counts in-flight operations. The visibility flag follows the count
// with a debounce: it turns on ShowDelay after the count leaves zero (unless
// the count returns to zero first) and turns off HideDelay after the count
// hits zero (unless it rises again). Safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	count     int
	visible   bool
	showDelay time.Duration
	hideDelay time.Duration
	pending   *time.Timer
}

// New returns a Tracker with the contract delays.
func New() *Tracker { return NewWithDelays(ShowDelay, HideDelay) }

// NewWithDelays returns a Tracker with custom debounce delays. Tests use this
// to compress time.
func NewWithDelays(show, hide time.Duration) *Tracker {
	return &Tracker{showDelay: show, hideDelay: hide}
}

// Add records one in-flight operation.
func (t *Tracker) Add() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	if t.count == 1 {
		t.schedule(t.showDelay, true)
	}
}

// Done records the completion of one operation. Extra calls are ignored
// rather than driving the count negative.
func (t *Tracker) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count > 0 {
		t.count--
	}
	if t.count == 0 {
		t.schedule(t.hideDelay, false)
	}
}

// Run executes fn inside an Add/Done pair. Done runs on every exit path and
// fn's error is returned as-is.
func (t *Tracker) Run(ctx context.Context, fn func(context.Context) error) error {
	t.Add()
	defer t.Done()
	return fn(ctx)
}

// Count reports the number of in-flight operations.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Visible reports the debounced indicator state.
func (t *Tracker) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// schedule replaces any pending transition. Holding a single timer means a
// count that bounces off zero cancels the stale show or hide automatically.
// Caller must hold t.mu.
func (t *Tracker) schedule(d time.Duration, show bool) {
	if t.pending != nil {
		t.pending.Stop()
	}
	t.pending = time.AfterFunc(d, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if show && t.count > 0 {
			t.visible = true
		} else if !show && t.count == 0 {
			t.visible = false
		}
	})
}
