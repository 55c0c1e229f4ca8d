package compositekey

import (
	"cmp"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Pair is one (property name, property value) component of a Key.
type Pair struct {
	Name  string
	Value string
}

func comparePairs(a, b Pair) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Value, b.Value)
}

// hashPair hashes one pair. The separator byte keeps ("ab","c") and
// ("a","bc") apart.
func hashPair(p Pair) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(p.Name)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(p.Value)
	return d.Sum64()
}

// Key is an unordered set of (name, value) pairs. Names are compared
// case-insensitively, values exactly.
//
// Two keys are equal iff they hold the same pairs; the hash is the sum of
// per-pair hashes, so it does not depend on insertion order.
type Key struct {
	pairs []Pair // sorted, no duplicates
	hash  uint64
}

// New builds a key from pairs in any order.
func New(pairs ...Pair) Key {
	var k Key
	for _, p := range pairs {
		k = k.With(p.Name, p.Value)
	}
	return k
}

// With returns a copy of k extended by name=value. Adding a pair that is
// already present returns an equal key.
func (k Key) With(name, value string) Key {
	p := Pair{Name: strings.ToLower(name), Value: value}
	i, found := slices.BinarySearchFunc(k.pairs, p, comparePairs)
	if found {
		return k
	}
	pairs := make([]Pair, 0, len(k.pairs)+1)
	pairs = append(pairs, k.pairs[:i]...)
	pairs = append(pairs, p)
	pairs = append(pairs, k.pairs[i:]...)
	return Key{pairs: pairs, hash: k.hash + hashPair(p)}
}

// Hash returns the order-independent hash of k.
func (k Key) Hash() uint64 { return k.hash }

// Len returns the number of pairs.
func (k Key) Len() int { return len(k.pairs) }

// IsEmpty reports whether k holds no pairs.
func (k Key) IsEmpty() bool { return len(k.pairs) == 0 }

// Pairs returns the pairs in canonical order.
func (k Key) Pairs() []Pair { return slices.Clone(k.pairs) }

// Equal reports whether k and o hold the same pairs.
func (k Key) Equal(o Key) bool {
	if k.hash != o.hash || len(k.pairs) != len(o.pairs) {
		return false
	}
	for i := range k.pairs {
		if k.pairs[i] != o.pairs[i] {
			return false
		}
	}
	return true
}

// String renders the key as name=value pairs joined by ';' in canonical
// order.
func (k Key) String() string {
	var b strings.Builder
	for i, p := range k.pairs {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}
