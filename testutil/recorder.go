package testutil

import (
	"sync"

	"github.com/hupe1980/regindex/model"
)

// Recorder is a Listener that records the events it receives.
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

// ServiceChanged implements model.Listener.
func (r *Recorder) ServiceChanged(ev model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns the number of recorded events.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
