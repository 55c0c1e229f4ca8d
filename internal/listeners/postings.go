package listeners

import "github.com/RoaringBitmap/roaring/v2"

// Store is the key->bitmap map behind Postings. Keys that are not
// comparable, such as compositekey.Key, bring their own map.
type Store[K any] interface {
	Get(k K) (*roaring.Bitmap, bool)
	Put(k K, b *roaring.Bitmap)
	Delete(k K) bool
	Len() int
}

type mapStore[K comparable] map[K]*roaring.Bitmap

func (m mapStore[K]) Get(k K) (*roaring.Bitmap, bool) {
	b, ok := m[k]
	return b, ok
}

func (m mapStore[K]) Put(k K, b *roaring.Bitmap) { m[k] = b }

func (m mapStore[K]) Delete(k K) bool {
	_, ok := m[k]
	delete(m, k)
	return ok
}

func (m mapStore[K]) Len() int { return len(m) }

// Postings maps a key to the bitmap of listener handles filed under it.
// Empty bitmaps are pruned. Postings is guarded by the owning Table's lock.
type Postings[K any] struct {
	s Store[K]
}

// NewPostings creates empty posting lists over a built-in map.
func NewPostings[K comparable]() *Postings[K] {
	return &Postings[K]{s: make(mapStore[K])}
}

// NewPostingsWith creates posting lists over s, which must be empty.
func NewPostingsWith[K any](s Store[K]) *Postings[K] {
	return &Postings[K]{s: s}
}

// Add files handle h under k.
func (p *Postings[K]) Add(k K, h uint32) {
	b, ok := p.s.Get(k)
	if !ok {
		b = roaring.New()
		p.s.Put(k, b)
	}
	b.Add(h)
}

// Remove unfiles handle h from k.
func (p *Postings[K]) Remove(k K, h uint32) {
	b, ok := p.s.Get(k)
	if !ok {
		return
	}
	b.Remove(h)
	if b.IsEmpty() {
		p.s.Delete(k)
	}
}

// OrInto adds the handles filed under k to acc.
func (p *Postings[K]) OrInto(acc *roaring.Bitmap, k K) {
	if b, ok := p.s.Get(k); ok {
		acc.Or(b)
	}
}

// Len returns the number of non-empty keys.
func (p *Postings[K]) Len() int { return p.s.Len() }
