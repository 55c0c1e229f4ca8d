package listeners

import (
	"math"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/regindex/internal/compositekey"
	"github.com/hupe1980/regindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(model.Event) {}

func TestTable_RegisterCollectUnregister(t *testing.T) {
	tbl := NewTable()
	post := NewPostings[string]()

	file := func(key string) func(uint32) {
		return func(h uint32) { post.Add(key, h) }
	}
	unfile := func(h uint32, filter string) { post.Remove(filter, h) }

	l1 := model.ListenerFunc(noop)
	l2 := model.ListenerFunc(noop)
	tbl.Register(l1, "a", file("a"), unfile)
	tbl.Register(l2, "a", file("a"), unfile)

	got := tbl.Collect(func(acc *roaring.Bitmap) {
		post.OrInto(acc, "a")
		post.OrInto(acc, "a")
		post.OrInto(acc, "missing")
	})
	require.Len(t, got, 2)
	assert.True(t, got[0] == l1, "registration order")
	assert.True(t, got[1] == l2)

	e, ok := tbl.Lookup(l1)
	require.True(t, ok)
	assert.Equal(t, "a", e.Filter)

	assert.True(t, tbl.Unregister(l1, unfile))
	assert.False(t, tbl.Unregister(l1, unfile))
	assert.Equal(t, 1, tbl.Len())

	got = tbl.Collect(func(acc *roaring.Bitmap) { post.OrInto(acc, "a") })
	require.Len(t, got, 1)
	assert.True(t, got[0] == l2)
}

func TestTable_ReRegisterMovesListener(t *testing.T) {
	tbl := NewTable()
	post := NewPostings[string]()
	unfile := func(h uint32, filter string) { post.Remove(filter, h) }

	l := model.ListenerFunc(noop)
	tbl.Register(l, "a", func(h uint32) { post.Add("a", h) }, unfile)
	tbl.Register(l, "b", func(h uint32) { post.Add("b", h) }, unfile)

	assert.Equal(t, 1, post.Len(), "old key pruned")
	assert.Equal(t, 1, tbl.Len())

	got := tbl.Collect(func(acc *roaring.Bitmap) { post.OrInto(acc, "a") })
	assert.Empty(t, got)
}

func TestTable_CollectOutsideLock(t *testing.T) {
	tbl := NewTable()
	post := NewPostings[int]()
	unfile := func(h uint32, _ string) { post.Remove(1, h) }

	var self model.Listener
	self = model.ListenerFunc(func(model.Event) {
		// Re-entering the table from a callback must not deadlock.
		tbl.Unregister(self, unfile)
	})
	tbl.Register(self, "x", func(h uint32) { post.Add(1, h) }, unfile)

	for _, l := range tbl.Collect(func(acc *roaring.Bitmap) { post.OrInto(acc, 1) }) {
		l.ServiceChanged(model.Event{Kind: model.Registered})
	}
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 0, post.Len())
}

func TestTable_HandleWrapSkipsLiveHandles(t *testing.T) {
	tbl := NewTable()
	post := NewPostings[string]()
	unfile := func(h uint32, filter string) { post.Remove(filter, h) }
	file := func(h uint32) { post.Add("k", h) }

	a := model.ListenerFunc(noop)
	b := model.ListenerFunc(noop)
	c := model.ListenerFunc(noop)

	tbl.Register(a, "k", file, unfile)
	tbl.next = math.MaxUint32
	tbl.Register(b, "k", file, unfile)
	tbl.Register(c, "k", file, unfile)

	ea, _ := tbl.Lookup(a)
	eb, _ := tbl.Lookup(b)
	ec, _ := tbl.Lookup(c)
	assert.Equal(t, uint32(0), ea.Handle)
	assert.Equal(t, uint32(math.MaxUint32), eb.Handle)
	assert.Equal(t, uint32(1), ec.Handle, "handle 0 is still held by a")

	got := tbl.Collect(func(acc *roaring.Bitmap) { post.OrInto(acc, "k") })
	require.Len(t, got, 3)

	// Unregistering c must leave a filed.
	require.True(t, tbl.Unregister(c, unfile))
	got = tbl.Collect(func(acc *roaring.Bitmap) { post.OrInto(acc, "k") })
	require.Len(t, got, 2)
	assert.True(t, got[0] == a)
	assert.True(t, got[1] == b)
}

func TestPostings_CompositeKeys(t *testing.T) {
	post := NewPostingsWith[compositekey.Key](compositekey.NewMap[*roaring.Bitmap]())

	k1 := compositekey.New().With("objectClass", "a.A").With("cid", "1")
	k2 := compositekey.New().With("CID", "1").With("objectclass", "a.A")
	other := compositekey.New().With("objectClass", "a.A").With("cid", "2")

	post.Add(k1, 1)
	post.Add(k2, 2)
	post.Add(other, 3)
	assert.Equal(t, 2, post.Len(), "equal keys share one posting list")

	acc := roaring.New()
	post.OrInto(acc, compositekey.New().With("cid", "1").With("objectClass", "a.A"))
	assert.Equal(t, []uint32{1, 2}, acc.ToArray())

	post.Remove(k2, 1)
	post.Remove(k1, 2)
	post.Remove(other, 9)
	assert.Equal(t, 1, post.Len())

	acc.Clear()
	post.OrInto(acc, k1)
	assert.True(t, acc.IsEmpty())
}
