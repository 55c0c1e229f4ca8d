// Package fastpath holds the reference bookkeeping shared by the adapter
// and aspect filter indices: services are bucketed by the ids a
// (|(service.id=S)(aspect=S)) clause matches them under, each bucket
// ordered by ranking.
package fastpath

import (
	"log/slog"
	"sync"

	"github.com/hupe1980/regindex/index"
	"github.com/hupe1980/regindex/internal/listeners"
	"github.com/hupe1980/regindex/internal/rankset"
	"github.com/hupe1980/regindex/metadata"
	"github.com/hupe1980/regindex/model"
	"github.com/hupe1980/regindex/tracker"
)

// Base implements the lifecycle, tracker callbacks and reference maps of a
// fast-path index. The embedding index supplies filter recognition and
// listener filing.
type Base struct {
	name    string
	logger  *slog.Logger
	metrics index.MetricsCollector

	lc index.Lifecycle

	mu      sync.RWMutex
	buckets map[model.ServiceID]*rankset.Set
	idsOf   map[model.ServiceID][]model.ServiceID

	// Listeners guards the embedding index's listener maps.
	Listeners *listeners.Table
}

// NewBase creates the shared state of the index called name.
func NewBase(name string, opts ...index.Option) *Base {
	o := index.NewOptions(opts...)
	return &Base{
		name:      name,
		logger:    o.Logger.With("index", name),
		metrics:   o.Metrics,
		buckets:   make(map[model.ServiceID]*rankset.Set),
		idsOf:     make(map[model.ServiceID][]model.ServiceID),
		Listeners: listeners.NewTable(),
	}
}

// Name implements index.FilterIndex.
func (b *Base) Name() string { return b.name }

// Logger returns the index logger.
func (b *Base) Logger() *slog.Logger { return b.logger }

// RecordDispatch forwards to the metrics collector.
func (b *Base) RecordDispatch(n int) { b.metrics.RecordDispatch(b.name, n) }

// Open starts tracking every service visible through ctx.
func (b *Base) Open(ctx tracker.Context) error {
	if err := b.lc.Open(ctx, b); err != nil {
		return err
	}
	b.mu.RLock()
	n := len(b.idsOf)
	b.mu.RUnlock()
	b.logger.Info("filter index opened", "references", n)
	return nil
}

// Close stops tracking and drops every indexed reference.
func (b *Base) Close() error {
	if err := b.lc.Close(); err != nil {
		return err
	}
	b.mu.Lock()
	clear(b.buckets)
	clear(b.idsOf)
	b.mu.Unlock()
	b.logger.Info("filter index closed")
	return nil
}

// CheckOpen returns index.ErrNotOpen unless the index is open.
func (b *Base) CheckOpen() error { return b.lc.CheckOpen() }

// AddedService implements tracker.Customizer.
func (b *Base) AddedService(ref model.Reference) { b.Add(ref) }

// ModifiedService implements tracker.Customizer.
func (b *Base) ModifiedService(ref model.Reference) { b.Modify(ref) }

// RemovedService implements tracker.Customizer.
func (b *Base) RemovedService(ref model.Reference) { b.Remove(ref) }

// Add files ref under its match ids.
func (b *Base) Add(ref model.Reference) {
	if ref == nil {
		return
	}
	b.mu.Lock()
	ids, ranking := derive(ref)
	b.unindexLocked(ref.ID())
	b.indexLocked(ref, ids, ranking)
	b.mu.Unlock()

	b.logger.Debug("service indexed", "service.id", ref.ID(), "ranking", ranking)
	b.metrics.RecordIndexed(b.name, len(ids))
}

// Modify refiles ref under its current match ids and ranking in one
// critical section.
func (b *Base) Modify(ref model.Reference) { b.Add(ref) }

// Remove unfiles ref from the buckets it was last filed under.
func (b *Base) Remove(ref model.Reference) {
	if ref == nil {
		return
	}
	b.mu.Lock()
	found := b.unindexLocked(ref.ID())
	b.mu.Unlock()

	if !found {
		b.logger.Warn("removing service that was not indexed", "service.id", ref.ID())
		return
	}
	b.logger.Debug("service unindexed", "service.id", ref.ID())
	b.metrics.RecordIndexed(b.name, 0)
}

// Swap indexes new and removes old in one critical section.
func (b *Base) Swap(old, new model.Reference) {
	if old == nil || new == nil {
		return
	}
	b.mu.Lock()
	ids, ranking := derive(new)
	b.unindexLocked(new.ID())
	b.indexLocked(new, ids, ranking)
	if old.ID() != new.ID() {
		b.unindexLocked(old.ID())
	}
	b.mu.Unlock()

	b.logger.Debug("service swapped", "old", old.ID(), "new", new.ID())
}

// pinned answers every Properties call with one snapshot.
type pinned struct {
	model.Reference
	props metadata.Properties
}

func (p pinned) Properties() metadata.Properties { return p.props }

// derive reads ref's properties once and returns its match ids and
// ranking. Callers hold b.mu.
func derive(ref model.Reference) ([]model.ServiceID, int64) {
	p := pinned{Reference: ref, props: ref.Properties()}
	return model.MatchIDs(p), model.Ranking(p)
}

func (b *Base) indexLocked(ref model.Reference, ids []model.ServiceID, ranking int64) {
	for _, id := range ids {
		s, ok := b.buckets[id]
		if !ok {
			s = &rankset.Set{}
			b.buckets[id] = s
		}
		s.Insert(ref, ranking)
	}
	b.idsOf[ref.ID()] = ids
}

func (b *Base) unindexLocked(sid model.ServiceID) bool {
	ids, ok := b.idsOf[sid]
	if !ok {
		return false
	}
	for _, id := range ids {
		s, ok := b.buckets[id]
		if !ok {
			continue
		}
		s.Remove(sid)
		if s.Len() == 0 {
			delete(b.buckets, id)
		}
	}
	delete(b.idsOf, sid)
	return true
}

// Lookup returns, in bucket order, the references filed under id that are
// published under class.
func (b *Base) Lookup(id model.ServiceID, class string) []model.Reference {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.buckets[id]
	if !ok {
		return nil
	}
	return s.All(nil, classFilter(class))
}

// LookupAtMost is Lookup restricted to references without a ranking or
// with a ranking <= ceiling.
func (b *Base) LookupAtMost(id model.ServiceID, class string, ceiling int64) []model.Reference {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.buckets[id]
	if !ok {
		return nil
	}
	return s.AtMost(nil, ceiling, classFilter(class))
}

func classFilter(class string) func(model.Reference) bool {
	return func(ref model.Reference) bool {
		return model.HasObjectClass(ref, class)
	}
}

// ReferenceStats returns the number of id buckets and indexed references.
func (b *Base) ReferenceStats() (keys, refs int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.buckets), len(b.idsOf)
}
