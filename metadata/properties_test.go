package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperties_CaseInsensitiveGet(t *testing.T) {
	p := NewProperties(map[string]Value{
		"objectClass": Strings("foo.Bar"),
		"cid":         String("cid1"),
	})

	v, ok := p.Get("OBJECTCLASS")
	require.True(t, ok)
	assert.True(t, v.IsMulti())
	assert.Equal(t, "foo.Bar", v.String())

	assert.True(t, p.Has("CID"))
	assert.False(t, p.Has("context"))
	assert.Equal(t, 2, p.Len())
}

func TestProperties_KeysSorted(t *testing.T) {
	p := NewProperties(map[string]Value{
		"b":           Int(1),
		"objectClass": String("x"),
		"A":           Int(2),
	})
	assert.Equal(t, []string{"A", "b", "objectClass"}, p.Keys())
}

func TestProperties_WithWithoutCopy(t *testing.T) {
	p := NewProperties(map[string]Value{"cid": String("one")})

	q := p.With("CID", String("two"))
	r := q.Without("cid")

	v, _ := p.Get("cid")
	assert.Equal(t, "one", v.String())
	v, _ = q.Get("cid")
	assert.Equal(t, "two", v.String())
	assert.False(t, r.Has("cid"))

	var zero Properties
	z := zero.With("ranking", Int(5))
	assert.Equal(t, 1, z.Len())
}

func TestValue_Rendering(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"int", Int(-7), "-7"},
		{"float", Float(2), "2.0"},
		{"fraction", Float(3.25), "3.25"},
		{"bool", Bool(true), "true"},
		{"string", String("abc"), "abc"},
		{"array", Strings("a", "b"), "a,b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestValue_ToInt64(t *testing.T) {
	n, ok := Int(10).ToInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(10), n)

	n, ok = String("42").ToInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	_, ok = String("x").ToInt64()
	assert.False(t, ok)
	_, ok = Bool(true).ToInt64()
	assert.False(t, ok)
}

func TestValue_EqualOrderSensitive(t *testing.T) {
	assert.True(t, Strings("a", "b").Equal(Strings("a", "b")))
	assert.False(t, Strings("a", "b").Equal(Strings("b", "a")))
	assert.False(t, Int(1).Equal(String("1")))
	assert.Len(t, String("x").Values(), 1)
}
