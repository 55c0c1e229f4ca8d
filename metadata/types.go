package metadata

import (
	"math"
	"strconv"
	"unique"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindBool represents a boolean value.
	KindBool
	// KindArray represents a multi-valued property.
	KindArray
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// Value is a service property value: either a scalar or an ordered
// sequence of scalars.
//
// The representation avoids reflection and fmt-based stringification so
// that key derivation stays allocation-light on the event path.
type Value struct {
	Kind Kind
	I64  int64
	F64  float64
	s    unique.Handle[string] // interned string
	B    bool
	A    []Value
}

// Int returns an int64 Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a float64 Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, s: unique.Make(v)} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Array returns a multi-valued Value.
func Array(v []Value) Value { return Value{Kind: KindArray, A: v} }

// Strings returns a multi-valued Value holding the given strings.
func Strings(v ...string) Value {
	a := make([]Value, len(v))
	for i := range v {
		a[i] = String(v[i])
	}
	return Array(a)
}

// IsMulti reports whether the value is multi-valued.
func (v Value) IsMulti() bool { return v.Kind == KindArray }

// Values returns the scalars held by v. A scalar is returned as a
// single-element slice.
func (v Value) Values() []Value {
	if v.Kind == KindArray {
		return v.A
	}
	return []Value{v}
}

// String renders a scalar the way it appears on the right-hand side of a
// filter clause. Arrays render their elements separated by commas.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		if v.F64 == math.Trunc(v.F64) && !math.IsInf(v.F64, 0) {
			return strconv.FormatFloat(v.F64, 'f', 1, 64)
		}
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindString:
		return v.s.Value()
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindArray:
		buf := make([]byte, 0, 16*len(v.A))
		for i := range v.A {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, v.A[i].String()...)
		}
		return string(buf)
	default:
		return ""
	}
}

// ToInt64 converts integer-like values. Strings holding a base-10 integer
// are accepted since registries commonly carry numeric properties as text.
func (v Value) ToInt64() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.I64, true
	case KindString:
		n, err := strconv.ParseInt(v.s.Value(), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Equal reports whether two values hold the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.I64 == o.I64
	case KindFloat:
		return v.F64 == o.F64
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.B == o.B
	case KindArray:
		if len(v.A) != len(o.A) {
			return false
		}
		for i := range v.A {
			if !v.A[i].Equal(o.A[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) clone() Value {
	if v.Kind != KindArray || len(v.A) == 0 {
		return v
	}
	arrayCopy := make([]Value, len(v.A))
	for i := range v.A {
		arrayCopy[i] = v.A[i].clone()
	}
	return Value{Kind: KindArray, A: arrayCopy}
}
