// Package adapter implements the fast-path filter index for the filter
// shape adapter chaining generates:
//
//	(&(objectClass=C)(|(service.id=S)(aspect=S)))
//
// The shape is recognized by scanning its literal skeleton; no filter
// expression is built. Services are bucketed by S, so a query or an event
// touches only the services and listeners of one original service.
package adapter

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/regindex/index"
	"github.com/hupe1980/regindex/internal/fastpath"
	"github.com/hupe1980/regindex/internal/filter"
	"github.com/hupe1980/regindex/internal/listeners"
	"github.com/hupe1980/regindex/model"
)

// Name is the index name used in logs and metrics.
const Name = "adapter"

type listenerKey struct {
	id    model.ServiceID
	class string
}

// Index is the adapter fast-path index.
type Index struct {
	*fastpath.Base

	// postings is guarded by Base.Listeners.
	postings *listeners.Postings[listenerKey]
}

var _ index.FilterIndex = (*Index)(nil)

// New creates an adapter index.
func New(opts ...index.Option) *Index {
	return &Index{
		Base:     fastpath.NewBase(Name, opts...),
		postings: listeners.NewPostings[listenerKey](),
	}
}

// Filter renders the filter this index recognizes for class and id.
func Filter(class string, id model.ServiceID) string {
	return filter.AdapterFilter(class, uint64(id))
}

func scan(class, f string) (filter.AdapterShape, bool) {
	shape, ok := filter.ScanAdapter(f)
	if !ok || (class != "" && class != shape.Class) {
		return filter.AdapterShape{}, false
	}
	return shape, true
}

// IsApplicable reports whether f has the adapter shape and agrees with
// class when one is given.
func (x *Index) IsApplicable(class, f string) bool {
	_, ok := scan(class, f)
	return ok
}

// GetAllServiceReferences returns the services published under the
// shape's class whose service.id or aspect equals its id, ordered by
// ranking then service id.
func (x *Index) GetAllServiceReferences(class, f string) ([]model.Reference, error) {
	if err := x.CheckOpen(); err != nil {
		return nil, err
	}
	shape, ok := scan(class, f)
	if !ok {
		return nil, nil
	}
	return x.Lookup(model.ServiceID(shape.ID), shape.Class), nil
}

// AddServiceListener files l under the shape's (id, class).
func (x *Index) AddServiceListener(l model.Listener, f string) error {
	if l == nil {
		return index.ErrNilListener
	}
	shape, ok := filter.ScanAdapter(f)
	if !ok {
		return fmt.Errorf("%w: %s", index.ErrNotApplicable, f)
	}
	key := listenerKey{id: model.ServiceID(shape.ID), class: shape.Class}
	x.Listeners.Register(l, f,
		func(h uint32) { x.postings.Add(key, h) },
		x.unfile,
	)
	return nil
}

// RemoveServiceListener unfiles l using the filter it was added with.
func (x *Index) RemoveServiceListener(l model.Listener) error {
	if l == nil {
		return index.ErrNilListener
	}
	x.Listeners.Unregister(l, x.unfile)
	return nil
}

func (x *Index) unfile(h uint32, f string) {
	if shape, ok := filter.ScanAdapter(f); ok {
		x.postings.Remove(listenerKey{id: model.ServiceID(shape.ID), class: shape.Class}, h)
	}
}

// ServiceChanged notifies the listeners filed under any (id, class) the
// event's service matches.
func (x *Index) ServiceChanged(ev model.Event) {
	ref := ev.Reference
	if ref == nil {
		return
	}
	ids := model.MatchIDs(ref)
	classes := model.ObjectClasses(ref)

	ls := x.Listeners.Collect(func(acc *roaring.Bitmap) {
		for _, id := range ids {
			for _, c := range classes {
				x.postings.OrInto(acc, listenerKey{id: id, class: c})
			}
		}
	})
	x.RecordDispatch(len(ls))
	index.Notify(ls, ev)
}

// Stats implements index.FilterIndex.
func (x *Index) Stats() index.Stats {
	var st index.Stats
	st.Keys, st.References = x.ReferenceStats()
	x.Listeners.View(func() {
		st.ListenerKeys = x.postings.Len()
	})
	st.Listeners = x.Listeners.Len()
	return st
}

func (x *Index) String() string {
	st := x.Stats()
	return fmt.Sprintf("AdapterFilterIndex[S2L: %d, S2SR: %d, L2F: %d]", st.ListenerKeys, st.Keys, st.Listeners)
}
