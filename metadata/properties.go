package metadata

import (
	"slices"
	"strings"
)

type entry struct {
	name  string // spelling as registered
	value Value
}

// Properties is a property bag with case-insensitive names.
//
// The zero value is empty and ready to use. Properties is not safe for
// concurrent mutation; references publish a new bag on modification.
type Properties struct {
	entries map[string]entry // lower-cased name -> entry
}

// NewProperties builds a property bag from m. When two names differ only
// in case the lexically greater spelling wins, so the result does not
// depend on map iteration order.
func NewProperties(m map[string]Value) Properties {
	p := Properties{entries: make(map[string]entry, len(m))}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		p.entries[strings.ToLower(name)] = entry{name: name, value: m[name].clone()}
	}
	return p
}

// Get returns the value stored under name, ignoring case.
func (p Properties) Get(name string) (Value, bool) {
	e, ok := p.entries[strings.ToLower(name)]
	return e.value, ok
}

// Has reports whether name is present, ignoring case.
func (p Properties) Has(name string) bool {
	_, ok := p.entries[strings.ToLower(name)]
	return ok
}

// Keys returns the property names as registered, sorted case-insensitively.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		keys = append(keys, e.name)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return keys
}

// Len returns the number of properties.
func (p Properties) Len() int { return len(p.entries) }

// With returns a copy of p with name set to v.
func (p Properties) With(name string, v Value) Properties {
	out := p.Clone()
	if out.entries == nil {
		out.entries = make(map[string]entry, 1)
	}
	out.entries[strings.ToLower(name)] = entry{name: name, value: v.clone()}
	return out
}

// Without returns a copy of p with name removed.
func (p Properties) Without(name string) Properties {
	out := p.Clone()
	delete(out.entries, strings.ToLower(name))
	return out
}

// Clone returns a deep copy of p.
func (p Properties) Clone() Properties {
	if p.entries == nil {
		return Properties{}
	}
	out := Properties{entries: make(map[string]entry, len(p.entries))}
	for k, e := range p.entries {
		out.entries[k] = entry{name: e.name, value: e.value.clone()}
	}
	return out
}
