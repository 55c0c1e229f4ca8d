package compositekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_OrderIndependentEquality(t *testing.T) {
	a := New(Pair{"key1", "abc"}, Pair{"key2", "efg"})
	b := New(Pair{"key2", "efg"}, Pair{"key1", "abc"})

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, "key1=abc;key2=efg", a.String())
	assert.Equal(t, a.String(), b.String())
}

func TestKey_SubsetNotEqual(t *testing.T) {
	two := New(Pair{"key1", "abc"}, Pair{"key2", "efg"})
	three := New(Pair{"key1", "abc"}, Pair{"key2", "efg"}, Pair{"key3", "hij"})

	assert.False(t, two.Equal(three))
	assert.False(t, three.Equal(two))
	assert.NotEqual(t, two.Hash(), three.Hash())
}

func TestKey_NamesCaseInsensitive(t *testing.T) {
	a := New(Pair{"objectClass", "x"})
	b := New(Pair{"OBJECTCLASS", "x"})
	c := New(Pair{"objectclass", "X"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestKey_DuplicatePairIgnored(t *testing.T) {
	a := New(Pair{"a", "1"})
	b := a.With("a", "1")

	assert.True(t, a.Equal(b))
	assert.Equal(t, 1, b.Len())
}

func TestKey_SameNameManyValues(t *testing.T) {
	a := New(Pair{"objectclass", "A"}, Pair{"objectclass", "B"})
	b := New(Pair{"objectclass", "B"}, Pair{"objectclass", "A"})

	assert.True(t, a.Equal(b))
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, "objectclass=A;objectclass=B", a.String())
}

func TestKey_SeparatorPreventsAliasing(t *testing.T) {
	a := New(Pair{"ab", "c"})
	b := New(Pair{"a", "bc"})
	assert.False(t, a.Equal(b))
}

func TestKey_Empty(t *testing.T) {
	assert.True(t, Key{}.IsEmpty())
	assert.True(t, New().Equal(Key{}))
	assert.Equal(t, uint64(0), Key{}.Hash())
	assert.False(t, Key{}.With("a", "1").IsEmpty())
}

func TestMap_PutGetDelete(t *testing.T) {
	m := NewMap[int]()
	k1 := New(Pair{"a", "1"}, Pair{"b", "2"})
	k2 := New(Pair{"b", "2"}, Pair{"a", "1"})
	k3 := New(Pair{"a", "1"})

	m.Put(k1, 10)
	v, ok := m.Get(k2)
	require.True(t, ok)
	assert.Equal(t, 10, v)

	_, ok = m.Get(k3)
	assert.False(t, ok)

	m.Put(k2, 20)
	assert.Equal(t, 1, m.Len())
	v, _ = m.Get(k1)
	assert.Equal(t, 20, v)

	m.Put(k3, 30)
	assert.Equal(t, 2, m.Len())

	assert.True(t, m.Delete(k1))
	assert.False(t, m.Delete(k1))
	assert.Equal(t, 1, m.Len())

	var seen []string
	m.Range(func(k Key, v int) bool {
		seen = append(seen, k.String())
		return true
	})
	assert.Equal(t, []string{"a=1"}, seen)
}

func TestMap_HashCollisionResolvedByEqual(t *testing.T) {
	m := NewMap[string]()
	k1 := New(Pair{"a", "1"})
	// Forge a distinct key with the same hash.
	k2 := Key{pairs: []Pair{{"z", "9"}}, hash: k1.hash}

	m.Put(k1, "one")
	m.Put(k2, "two")
	assert.Equal(t, 2, m.Len())

	v, _ := m.Get(k1)
	assert.Equal(t, "one", v)
	v, _ = m.Get(k2)
	assert.Equal(t, "two", v)

	assert.True(t, m.Delete(k1))
	v, ok := m.Get(k2)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}
