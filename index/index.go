// Package index defines the FilterIndex contract shared by the filter
// index strategies and the lifecycle bookkeeping they embed.
package index

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/regindex/model"
	"github.com/hupe1980/regindex/tracker"
)

var (
	// ErrAlreadyOpen is returned by Open on an index that is open.
	ErrAlreadyOpen = errors.New("filter index already open")
	// ErrNotOpen is returned by Close and queries on an index that is not open.
	ErrNotOpen = errors.New("filter index not open")
	// ErrClosed is returned by Open on an index that was closed.
	ErrClosed = errors.New("filter index closed")
	// ErrNilContext is returned by Open without a tracker context.
	ErrNilContext = errors.New("nil tracker context")
	// ErrNilListener is returned when a nil listener is added or removed.
	ErrNilListener = errors.New("nil service listener")
	// ErrNotApplicable is returned when a listener is added with a filter
	// the index cannot derive a key from.
	ErrNotApplicable = errors.New("filter not applicable to index")
)

// FilterIndex turns filter matching into keyed lookups for the filters it
// recognizes.
//
// A dispatcher asks IsApplicable first and only routes queries and listener
// registrations for class/filter pairs the index accepted. IsApplicable is
// a pure structural test; it never fails, it declines.
type FilterIndex interface {
	tracker.Customizer
	fmt.Stringer

	// Name identifies the index in logs and metrics.
	Name() string

	Open(ctx tracker.Context) error
	Close() error

	IsApplicable(class, filter string) bool
	GetAllServiceReferences(class, filter string) ([]model.Reference, error)

	AddServiceListener(l model.Listener, filter string) error
	RemoveServiceListener(l model.Listener) error

	Add(ref model.Reference)
	Modify(ref model.Reference)
	Remove(ref model.Reference)
	Swap(old, new model.Reference)

	// ServiceChanged notifies, once each and outside any index lock, every
	// listener filed under a key derived from the event's reference.
	ServiceChanged(ev model.Event)

	Stats() Stats
}

// Stats is a point-in-time size summary of an index.
type Stats struct {
	// Keys is the number of distinct reference keys.
	Keys int
	// References is the number of indexed references.
	References int
	// ListenerKeys is the number of distinct listener keys.
	ListenerKeys int
	// Listeners is the number of registered listeners.
	Listeners int
}

// MetricsCollector receives per-index measurements. The root package's
// collector satisfies it.
type MetricsCollector interface {
	// RecordIndexed is called after a reference is (re)indexed; keys is the
	// number of keys it is now filed under, zero when it was removed.
	RecordIndexed(index string, keys int)

	// RecordDispatch is called for every ServiceChanged with the number of
	// listeners notified.
	RecordDispatch(index string, listeners int)
}

// NoopMetricsCollector discards all measurements.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIndexed(string, int)  {}
func (NoopMetricsCollector) RecordDispatch(string, int) {}

// Options configures an index.
type Options struct {
	Logger  *slog.Logger
	Metrics MetricsCollector
}

// Option configures an index.
type Option func(*Options)

// WithLogger sets the logger. Nil discards log output.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithMetrics sets the metrics collector. Nil disables collection.
func WithMetrics(m MetricsCollector) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetricsCollector{}
	}
	return o
}

// Notify delivers ev to every listener in order on the calling goroutine.
func Notify(listeners []model.Listener, ev model.Event) {
	for _, l := range listeners {
		l.ServiceChanged(ev)
	}
}
