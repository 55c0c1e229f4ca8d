// Package compositekey implements the order-independent composite key the
// filter indices hash on.
//
// A Key is a set of (name, value) pairs. Keys built from the same pairs in
// any order are Equal and share a Hash; a key built from a strict subset of
// another key's pairs is never Equal to it.
//
//	a := compositekey.New(compositekey.Pair{"key1", "abc"}, compositekey.Pair{"key2", "efg"})
//	b := compositekey.New(compositekey.Pair{"key2", "efg"}, compositekey.Pair{"key1", "abc"})
//	a.Equal(b) // true
//
// Map stores values by Key, bucketing on the xxhash-based hash.
package compositekey
