package compositekey

type slot[V any] struct {
	key   Key
	value V
}

// Map is a hash map keyed by Key. Collisions of the order-independent
// hash are resolved with Equal.
//
// Map is not safe for concurrent use; owners guard it with their own lock.
type Map[V any] struct {
	buckets map[uint64][]slot[V]
	n       int
}

// NewMap creates an empty map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{buckets: make(map[uint64][]slot[V])}
}

// Get returns the value stored under k.
func (m *Map[V]) Get(k Key) (V, bool) {
	for _, s := range m.buckets[k.hash] {
		if s.key.Equal(k) {
			return s.value, true
		}
	}
	var zero V
	return zero, false
}

// Put stores v under k, replacing any previous value.
func (m *Map[V]) Put(k Key, v V) {
	b := m.buckets[k.hash]
	for i := range b {
		if b[i].key.Equal(k) {
			b[i].value = v
			return
		}
	}
	m.buckets[k.hash] = append(b, slot[V]{key: k, value: v})
	m.n++
}

// Delete removes k and reports whether it was present.
func (m *Map[V]) Delete(k Key) bool {
	b := m.buckets[k.hash]
	for i := range b {
		if !b[i].key.Equal(k) {
			continue
		}
		if len(b) == 1 {
			delete(m.buckets, k.hash)
		} else {
			b[i] = b[len(b)-1]
			b[len(b)-1] = slot[V]{}
			m.buckets[k.hash] = b[:len(b)-1]
		}
		m.n--
		return true
	}
	return false
}

// Len returns the number of keys.
func (m *Map[V]) Len() int { return m.n }

// Range calls fn for every entry until fn returns false. Iteration order
// is unspecified.
func (m *Map[V]) Range(fn func(k Key, v V) bool) {
	for _, b := range m.buckets {
		for _, s := range b {
			if !fn(s.key, s.value) {
				return
			}
		}
	}
}
