package index

import (
	"sync"

	"github.com/hupe1980/regindex/tracker"
)

// Lifecycle guards the open/close state of an index under its own lock,
// separate from the index's key maps.
//
// An index is opened once and closed once; Open after Close fails.
type Lifecycle struct {
	mu      sync.Mutex
	ctx     tracker.Context
	tracker tracker.Tracker
	closed  bool
}

// Open binds to ctx and opens a tracker that feeds c. The tracker's
// initial population is delivered after the lock is released, since it
// calls back into the index.
func (lc *Lifecycle) Open(ctx tracker.Context, c tracker.Customizer) error {
	if ctx == nil {
		return ErrNilContext
	}

	lc.mu.Lock()
	if lc.closed {
		lc.mu.Unlock()
		return ErrClosed
	}
	if lc.ctx != nil {
		lc.mu.Unlock()
		return ErrAlreadyOpen
	}
	t := ctx.NewTracker(c)
	lc.ctx = ctx
	lc.tracker = t
	lc.mu.Unlock()

	t.Open()
	return nil
}

// Close releases the tracker.
func (lc *Lifecycle) Close() error {
	lc.mu.Lock()
	if lc.ctx == nil {
		lc.mu.Unlock()
		return ErrNotOpen
	}
	t := lc.tracker
	lc.ctx = nil
	lc.tracker = nil
	lc.closed = true
	lc.mu.Unlock()

	t.Close()
	return nil
}

// IsOpen reports whether the index is bound to a tracker context.
func (lc *Lifecycle) IsOpen() bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.ctx != nil
}

// CheckOpen returns ErrNotOpen unless the index is open.
func (lc *Lifecycle) CheckOpen() error {
	if !lc.IsOpen() {
		return ErrNotOpen
	}
	return nil
}
