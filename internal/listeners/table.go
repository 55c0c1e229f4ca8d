package listeners

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/regindex/model"
)

// Entry is what the table remembers about a registered listener.
type Entry struct {
	Handle uint32
	Filter string
}

// Table assigns each registered listener a handle and remembers the filter
// it was registered with, so that removal re-derives keys from the
// original filter rather than from current service state.
//
// The table lock also guards the owner's key->listener posting lists: the
// file/unfile/gather callbacks run with it held. Handles are assigned in
// registration order and are never shared by two live listeners, so a
// gathered bitmap iterates in registration order until the handle counter
// wraps after 2^32 registrations.
type Table struct {
	mu       sync.Mutex
	next     uint32
	byHandle map[uint32]model.Listener
	entries  map[model.Listener]Entry
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		byHandle: make(map[uint32]model.Listener),
		entries:  make(map[model.Listener]Entry),
	}
}

// Register records l with filter and calls file to index its handle. A
// listener registered again is first unfiled from its previous filter.
func (t *Table) Register(l model.Listener, filter string, file func(handle uint32), unfile func(handle uint32, filter string)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.entries[l]; ok {
		unfile(old.Handle, old.Filter)
		delete(t.byHandle, old.Handle)
	}
	h := t.nextFreeLocked()
	t.byHandle[h] = l
	t.entries[l] = Entry{Handle: h, Filter: filter}
	file(h)
}

// nextFreeLocked advances the counter past handles still held by a live
// listener.
func (t *Table) nextFreeLocked() uint32 {
	for {
		h := t.next
		t.next++
		if _, live := t.byHandle[h]; !live {
			return h
		}
	}
}

// Unregister forgets l and calls unfile with the handle and original
// filter. It reports whether l was registered.
func (t *Table) Unregister(l model.Listener, unfile func(handle uint32, filter string)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[l]
	if !ok {
		return false
	}
	delete(t.entries, l)
	delete(t.byHandle, e.Handle)
	unfile(e.Handle, e.Filter)
	return true
}

// Collect lets gather add handles to an accumulator while the lock is
// held, then resolves the union to listeners. The returned slice is owned
// by the caller; callbacks must be invoked after Collect returns, never
// under the lock.
func (t *Table) Collect(gather func(acc *roaring.Bitmap)) []model.Listener {
	acc := roaring.New()

	t.mu.Lock()
	defer t.mu.Unlock()

	gather(acc)
	if acc.IsEmpty() {
		return nil
	}
	out := make([]model.Listener, 0, acc.GetCardinality())
	it := acc.Iterator()
	for it.HasNext() {
		if l, ok := t.byHandle[it.Next()]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Lookup returns the entry of l.
func (t *Table) Lookup(l model.Listener) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[l]
	return e, ok
}

// Len returns the number of registered listeners.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// View runs fn with the table lock held, for reading posting-list sizes.
func (t *Table) View(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn()
}
