// Package tracker defines the boundary to the external service tracker
// that discovers registrations, modifications and unregistrations and
// feeds them to the filter indices.
//
// An index opens one tracker for all services of all types. Open delivers
// the current population synchronously through the Customizer, followed by
// live events until Close.
package tracker

import "github.com/hupe1980/regindex/model"

// Customizer receives the tracked service stream.
type Customizer interface {
	AddedService(ref model.Reference)
	ModifiedService(ref model.Reference)
	RemovedService(ref model.Reference)
}

// Tracker is an opened subscription to the service stream.
type Tracker interface {
	// Open starts tracking. The initial population is delivered before
	// Open returns.
	Open()
	// Close stops tracking. No callbacks are delivered after Close returns.
	Close()
}

// Context creates trackers. It plays the role of the registry context an
// index is opened with.
type Context interface {
	// NewTracker returns an unopened tracker over all services, including
	// those not visible to the caller's class space.
	NewTracker(c Customizer) Tracker
}
