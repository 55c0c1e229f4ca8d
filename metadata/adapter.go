package metadata

import (
	"fmt"
	"math"
)

// FromAny converts a Go value into a typed Value.
//
// This exists as an adapter layer for registries that hand out untyped
// property maps. Slices become multi-valued properties.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Value{}, fmt.Errorf("property value out of range: %d", x)
		}
		return Int(int64(x)), nil
	case []Value:
		return Array(x), nil
	case []string:
		return Strings(x...), nil
	case []any:
		arr := make([]Value, len(x))
		for i := range x {
			vv, err := FromAny(x[i])
			if err != nil {
				return Value{}, err
			}
			if vv.IsMulti() {
				return Value{}, fmt.Errorf("nested multi-valued property at index %d", i)
			}
			arr[i] = vv
		}
		return Array(arr), nil
	case []int64:
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = Int(x[i])
		}
		return Array(arr), nil
	default:
		return Value{}, fmt.Errorf("unsupported property value type %T", v)
	}
}

// PropertiesFromAny converts an untyped property map into Properties.
func PropertiesFromAny(m map[string]any) (Properties, error) {
	typed := make(map[string]Value, len(m))
	for k, v := range m {
		vv, err := FromAny(v)
		if err != nil {
			return Properties{}, fmt.Errorf("property %q: %w", k, err)
		}
		typed[k] = vv
	}
	return NewProperties(typed), nil
}
