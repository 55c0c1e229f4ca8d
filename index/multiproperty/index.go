package multiproperty

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/regindex/index"
	"github.com/hupe1980/regindex/internal/compositekey"
	"github.com/hupe1980/regindex/internal/listeners"
	"github.com/hupe1980/regindex/model"
	"github.com/hupe1980/regindex/tracker"
)

// bucket holds the references filed under one key in indexing order. ids
// mirrors refs for constant-time membership tests.
type bucket struct {
	refs []model.Reference
	ids  *roaring64.Bitmap
}

func newBucket() *bucket {
	return &bucket{ids: roaring64.New()}
}

func (b *bucket) add(ref model.Reference) {
	if !b.ids.CheckedAdd(uint64(ref.ID())) {
		return
	}
	b.refs = append(b.refs, ref)
}

func (b *bucket) remove(id model.ServiceID) {
	if !b.ids.CheckedRemove(uint64(id)) {
		return
	}
	for i, r := range b.refs {
		if r.ID() == id {
			b.refs = append(b.refs[:i], b.refs[i+1:]...)
			return
		}
	}
}

// Index is a filter index over a fixed set of properties. References are
// filed under every key their properties derive (see Spec.Keys); a filter
// that is a conjunction of equality clauses over exactly those properties
// is answered with one map lookup.
//
// The reference maps, the listener maps and the open/close state each have
// their own lock. Listener callbacks run with no lock held.
type Index struct {
	spec    Spec
	name    string
	logger  *slog.Logger
	metrics index.MetricsCollector

	lc index.Lifecycle

	mu      sync.RWMutex
	buckets *compositekey.Map[*bucket]
	keysOf  map[model.ServiceID][]compositekey.Key

	// postings is guarded by the listeners table lock.
	listeners *listeners.Table
	postings  *listeners.Postings[compositekey.Key]
}

var _ index.FilterIndex = (*Index)(nil)

// New creates an index for the given spec string (see ParseSpec).
func New(spec string, opts ...index.Option) (*Index, error) {
	s, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	return NewWithSpec(s, opts...), nil
}

// NewWithSpec creates an index for a parsed spec.
func NewWithSpec(spec Spec, opts ...index.Option) *Index {
	o := index.NewOptions(opts...)
	name := "multiproperty:" + spec.String()
	return &Index{
		spec:      spec,
		name:      name,
		logger:    o.Logger.With("index", name),
		metrics:   o.Metrics,
		buckets:   compositekey.NewMap[*bucket](),
		keysOf:    make(map[model.ServiceID][]compositekey.Key),
		listeners: listeners.NewTable(),
		postings:  listeners.NewPostingsWith[compositekey.Key](compositekey.NewMap[*roaring.Bitmap]()),
	}
}

// Name implements index.FilterIndex.
func (x *Index) Name() string { return x.name }

// Spec returns the spec the index was built with.
func (x *Index) Spec() Spec { return x.spec }

// Open starts tracking every service visible through ctx.
func (x *Index) Open(ctx tracker.Context) error {
	if err := x.lc.Open(ctx, x); err != nil {
		return err
	}
	x.logger.Info("filter index opened", "references", x.referenceCount())
	return nil
}

// Close stops tracking and drops every indexed reference. Registered
// listeners are kept.
func (x *Index) Close() error {
	if err := x.lc.Close(); err != nil {
		return err
	}

	x.mu.Lock()
	x.buckets = compositekey.NewMap[*bucket]()
	clear(x.keysOf)
	x.mu.Unlock()

	x.logger.Info("filter index closed")
	return nil
}

// IsApplicable reports whether the class/filter pair reduces to a key of
// this index. It never fails.
func (x *Index) IsApplicable(class, filter string) bool {
	_, ok := x.spec.FilterKey(class, filter)
	return ok
}

// IsApplicableReference reports whether ref carries every required
// property and is therefore indexed.
func (x *Index) IsApplicableReference(ref model.Reference) bool {
	return ref != nil && x.spec.Indexable(ref.Properties())
}

// GetAllServiceReferences returns the references filed under the key of
// the class/filter pair, in indexing order. A pair that is not applicable
// yields no references.
func (x *Index) GetAllServiceReferences(class, filter string) ([]model.Reference, error) {
	if err := x.lc.CheckOpen(); err != nil {
		return nil, err
	}
	key, ok := x.spec.FilterKey(class, filter)
	if !ok {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	b, ok := x.buckets.Get(key)
	if !ok {
		return nil, nil
	}
	out := make([]model.Reference, len(b.refs))
	copy(out, b.refs)
	return out, nil
}

// AddServiceListener files l under the key of filter. Registering l again
// moves it to the new filter's key.
func (x *Index) AddServiceListener(l model.Listener, filter string) error {
	if l == nil {
		return index.ErrNilListener
	}
	key, ok := x.spec.FilterKey("", filter)
	if !ok {
		return fmt.Errorf("%w: %s", index.ErrNotApplicable, filter)
	}

	x.listeners.Register(l, filter,
		func(h uint32) { x.postings.Add(key, h) },
		x.unfileListener,
	)
	x.logger.Debug("listener added", "filter", filter, "key", key.String())
	return nil
}

// RemoveServiceListener unfiles l from the key of the filter it was added
// with. Removing an unknown listener is a no-op.
func (x *Index) RemoveServiceListener(l model.Listener) error {
	if l == nil {
		return index.ErrNilListener
	}
	if x.listeners.Unregister(l, x.unfileListener) {
		x.logger.Debug("listener removed")
	}
	return nil
}

// unfileListener runs under the listeners table lock.
func (x *Index) unfileListener(h uint32, filter string) {
	if key, ok := x.spec.FilterKey("", filter); ok {
		x.postings.Remove(key, h)
	}
}

// ServiceChanged notifies every listener filed under a key of the event's
// reference, each once, in registration order.
func (x *Index) ServiceChanged(ev model.Event) {
	if !x.IsApplicableReference(ev.Reference) {
		return
	}
	keys := x.spec.Keys(ev.Reference.Properties())
	ls := x.listeners.Collect(func(acc *roaring.Bitmap) {
		for _, k := range keys {
			x.postings.OrInto(acc, k)
		}
	})
	x.metrics.RecordDispatch(x.name, len(ls))
	index.Notify(ls, ev)
}

// AddedService implements tracker.Customizer.
func (x *Index) AddedService(ref model.Reference) { x.Add(ref) }

// ModifiedService implements tracker.Customizer.
func (x *Index) ModifiedService(ref model.Reference) { x.Modify(ref) }

// RemovedService implements tracker.Customizer.
func (x *Index) RemovedService(ref model.Reference) { x.Remove(ref) }

// Add files ref under the keys its properties derive. References missing
// a required property are not indexed; one that was indexed before is
// unfiled.
func (x *Index) Add(ref model.Reference) {
	if ref == nil {
		return
	}
	n := x.refile(ref)
	x.logger.Debug("service indexed", "service.id", ref.ID(), "keys", n)
	x.metrics.RecordIndexed(x.name, n)
}

// Modify moves ref from the keys it was last filed under to the keys its
// current properties derive. A reference that lost a required property is
// removed.
func (x *Index) Modify(ref model.Reference) {
	if ref == nil {
		return
	}
	n := x.refile(ref)
	x.logger.Debug("service reindexed", "service.id", ref.ID(), "keys", n)
	x.metrics.RecordIndexed(x.name, n)
}

// refile reads ref's properties and moves it to the keys they derive in
// one critical section, so concurrent refiles of the same reference leave
// it under the keys of the properties read last. It returns the number of
// keys ref is filed under.
func (x *Index) refile(ref model.Reference) int {
	x.mu.Lock()
	defer x.mu.Unlock()

	keys := x.keysLocked(ref)
	x.unindexLocked(ref.ID())
	x.indexLocked(ref, keys)
	return len(keys)
}

// keysLocked derives ref's keys from one read of its properties.
func (x *Index) keysLocked(ref model.Reference) []compositekey.Key {
	props := ref.Properties()
	if !x.spec.Indexable(props) {
		return nil
	}
	return x.spec.Keys(props)
}

// Remove unfiles ref from the keys it was last filed under.
func (x *Index) Remove(ref model.Reference) {
	if ref == nil {
		return
	}
	x.mu.Lock()
	found := x.unindexLocked(ref.ID())
	x.mu.Unlock()

	if found {
		x.logger.Debug("service unindexed", "service.id", ref.ID())
		x.metrics.RecordIndexed(x.name, 0)
	}
}

// Swap replaces old by new in one critical section: new is indexed before
// old is removed.
func (x *Index) Swap(old, new model.Reference) {
	if old == nil || new == nil {
		return
	}
	x.mu.Lock()
	keys := x.keysLocked(new)
	if old.ID() == new.ID() {
		x.unindexLocked(old.ID())
		x.indexLocked(new, keys)
	} else {
		x.unindexLocked(new.ID())
		x.indexLocked(new, keys)
		x.unindexLocked(old.ID())
	}
	x.mu.Unlock()

	x.logger.Debug("service swapped", "old", old.ID(), "new", new.ID())
}

func (x *Index) indexLocked(ref model.Reference, keys []compositekey.Key) {
	if len(keys) == 0 {
		return
	}
	for _, k := range keys {
		b, ok := x.buckets.Get(k)
		if !ok {
			b = newBucket()
			x.buckets.Put(k, b)
		}
		b.add(ref)
	}
	x.keysOf[ref.ID()] = keys
}

func (x *Index) unindexLocked(id model.ServiceID) bool {
	keys, ok := x.keysOf[id]
	if !ok {
		return false
	}
	for _, k := range keys {
		b, ok := x.buckets.Get(k)
		if !ok {
			continue
		}
		b.remove(id)
		if len(b.refs) == 0 {
			x.buckets.Delete(k)
		}
	}
	delete(x.keysOf, id)
	return true
}

func (x *Index) referenceCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.keysOf)
}

// Stats implements index.FilterIndex.
func (x *Index) Stats() index.Stats {
	var st index.Stats

	x.mu.RLock()
	st.Keys = x.buckets.Len()
	st.References = len(x.keysOf)
	x.mu.RUnlock()

	x.listeners.View(func() {
		st.ListenerKeys = x.postings.Len()
	})
	st.Listeners = x.listeners.Len()
	return st
}

// String summarizes the index: key->listeners, key->references and
// listener->filter counts.
func (x *Index) String() string {
	st := x.Stats()
	return fmt.Sprintf("MultiPropertyFilterIndex[%s, K2L: %d, K2SR: %d, L2F: %d]",
		x.spec, st.ListenerKeys, st.Keys, st.Listeners)
}
