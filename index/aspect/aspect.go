// Package aspect implements the fast-path filter index for the filter
// shape aspect chaining generates:
//
//	(&(objectClass=C)(&(|(!(ranking=*))(ranking<=R))(|(service.id=S)(aspect=S))))
//
// Services are bucketed by S and ordered by ranking. The ranking ceiling R
// is applied at query time against the live ranking, so it is not part of
// the bucket key. Listeners under one (S, C) are kept sorted by R, and an
// event notifies exactly those whose ceiling admits the service's ranking.
package aspect

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/regindex/index"
	"github.com/hupe1980/regindex/internal/fastpath"
	"github.com/hupe1980/regindex/internal/filter"
	"github.com/hupe1980/regindex/model"
)

// Name is the index name used in logs and metrics.
const Name = "aspect"

type listenerKey struct {
	id    model.ServiceID
	class string
}

type ceilingEntry struct {
	ceiling int64
	handle  uint32
}

func compareEntries(a, b ceilingEntry) int {
	if c := cmp.Compare(a.ceiling, b.ceiling); c != 0 {
		return c
	}
	return cmp.Compare(a.handle, b.handle)
}

// Index is the aspect fast-path index.
type Index struct {
	*fastpath.Base

	// byKey holds, per (id, class), entries sorted ascending by ceiling.
	// Guarded by Base.Listeners.
	byKey map[listenerKey][]ceilingEntry
}

var _ index.FilterIndex = (*Index)(nil)

// New creates an aspect index.
func New(opts ...index.Option) *Index {
	return &Index{
		Base:  fastpath.NewBase(Name, opts...),
		byKey: make(map[listenerKey][]ceilingEntry),
	}
}

// Filter renders the filter this index recognizes for class, id and
// ranking ceiling.
func Filter(class string, id model.ServiceID, ranking int64) string {
	return filter.AspectFilter(class, uint64(id), ranking)
}

func scan(class, f string) (filter.AspectShape, bool) {
	shape, ok := filter.ScanAspect(f)
	if !ok || (class != "" && class != shape.Class) {
		return filter.AspectShape{}, false
	}
	return shape, true
}

// IsApplicable reports whether f has the aspect shape and agrees with
// class when one is given.
func (x *Index) IsApplicable(class, f string) bool {
	_, ok := scan(class, f)
	return ok
}

// GetAllServiceReferences returns the services published under the
// shape's class whose service.id or aspect equals its id and whose
// current ranking is absent or at most the shape's ceiling, ordered by
// ranking then service id.
func (x *Index) GetAllServiceReferences(class, f string) ([]model.Reference, error) {
	if err := x.CheckOpen(); err != nil {
		return nil, err
	}
	shape, ok := scan(class, f)
	if !ok {
		return nil, nil
	}
	return x.LookupAtMost(model.ServiceID(shape.ID), shape.Class, shape.Ranking), nil
}

// AddServiceListener files l under the shape's (id, class) at its ranking
// ceiling.
func (x *Index) AddServiceListener(l model.Listener, f string) error {
	if l == nil {
		return index.ErrNilListener
	}
	shape, ok := filter.ScanAspect(f)
	if !ok {
		return fmt.Errorf("%w: %s", index.ErrNotApplicable, f)
	}
	x.Listeners.Register(l, f,
		func(h uint32) { x.file(shape, h) },
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

func keyOf(shape filter.AspectShape) listenerKey {
	return listenerKey{id: model.ServiceID(shape.ID), class: shape.Class}
}

func (x *Index) file(shape filter.AspectShape, h uint32) {
	k := keyOf(shape)
	e := ceilingEntry{ceiling: shape.Ranking, handle: h}
	entries := x.byKey[k]
	i, _ := slices.BinarySearchFunc(entries, e, compareEntries)
	x.byKey[k] = slices.Insert(entries, i, e)
}

func (x *Index) unfile(h uint32, f string) {
	shape, ok := filter.ScanAspect(f)
	if !ok {
		return
	}
	k := keyOf(shape)
	entries := x.byKey[k]
	i, found := slices.BinarySearchFunc(entries, ceilingEntry{ceiling: shape.Ranking, handle: h}, compareEntries)
	if !found {
		return
	}
	entries = slices.Delete(entries, i, i+1)
	if len(entries) == 0 {
		delete(x.byKey, k)
		return
	}
	x.byKey[k] = entries
}

// ServiceChanged notifies the listeners filed under any (id, class) the
// event's service matches whose ceiling is >= the service's ranking. A
// service without a ranking satisfies every ceiling.
func (x *Index) ServiceChanged(ev model.Event) {
	ref := ev.Reference
	if ref == nil {
		return
	}
	ids := model.MatchIDs(ref)
	classes := model.ObjectClasses(ref)
	ranking, ranked := model.LookupRanking(ref)

	ls := x.Listeners.Collect(func(acc *roaring.Bitmap) {
		for _, id := range ids {
			for _, c := range classes {
				entries := x.byKey[listenerKey{id: id, class: c}]
				start := 0
				if ranked {
					// First entry whose ceiling admits ranking; every later
					// entry has a higher or equal ceiling.
					start, _ = slices.BinarySearchFunc(entries, ranking, func(e ceilingEntry, r int64) int {
						return cmp.Compare(e.ceiling, r)
					})
				}
				for _, e := range entries[start:] {
					acc.Add(e.handle)
				}
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
		st.ListenerKeys = len(x.byKey)
	})
	st.Listeners = x.Listeners.Len()
	return st
}

func (x *Index) String() string {
	st := x.Stats()
	return fmt.Sprintf("AspectFilterIndex[S2R2L: %d, S2SR: %d, L2F: %d]", st.ListenerKeys, st.Keys, st.Listeners)
}
