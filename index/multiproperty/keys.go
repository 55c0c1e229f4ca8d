package multiproperty

import (
	"slices"
	"strings"

	"github.com/hupe1980/regindex/internal/compositekey"
	"github.com/hupe1980/regindex/internal/filter"
	"github.com/hupe1980/regindex/metadata"
	"github.com/hupe1980/regindex/model"
)

// Indexable reports whether props carries every required property.
func (s Spec) Indexable(props metadata.Properties) bool {
	for _, p := range s.props {
		if !p.Optional && !props.Has(p.Name) {
			return false
		}
	}
	return true
}

// Keys derives the keys a reference with props is filed under.
//
// Each property contributes a set of variants, and the keys are the
// Cartesian product of the variants of all properties in spec order:
//
//   - a scalar contributes one variant;
//   - a multi-valued property marked '#' contributes one variant per value;
//   - any other multi-valued property contributes one variant per
//     contiguous run of its sorted, distinct values, so n values give
//     n(n+1)/2 variants;
//   - an optional property that is present also contributes the empty
//     variant, so filters that do not name it still find the reference.
//
// An absent property contributes nothing. Keys does not check Indexable.
func (s Spec) Keys(props metadata.Properties) []compositekey.Key {
	acc := []compositekey.Key{{}}
	for _, p := range s.props {
		v, ok := props.Get(p.Name)
		if !ok {
			continue
		}
		variants := p.variants(v)
		if p.Optional {
			variants = append([][]string{nil}, variants...)
		}
		acc = product(acc, p.Name, variants)
		if len(acc) == 0 {
			return nil
		}
	}
	return dedupe(acc)
}

// variants returns the value combinations v contributes.
func (p Property) variants(v metadata.Value) [][]string {
	if !v.IsMulti() {
		return [][]string{{v.String()}}
	}

	vals := make([]string, 0, len(v.A))
	for _, e := range v.Values() {
		vals = append(vals, e.String())
	}
	slices.SortFunc(vals, compareFold)
	vals = slices.Compact(vals)

	if p.NoPermutation {
		out := make([][]string, len(vals))
		for i, s := range vals {
			out[i] = []string{s}
		}
		return out
	}

	out := make([][]string, 0, len(vals)*(len(vals)+1)/2)
	for i := range vals {
		for j := i; j < len(vals); j++ {
			out = append(out, vals[i:j+1])
		}
	}
	return out
}

func compareFold(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func product(acc []compositekey.Key, name string, variants [][]string) []compositekey.Key {
	out := make([]compositekey.Key, 0, len(acc)*len(variants))
	for _, k := range acc {
		for _, vs := range variants {
			nk := k
			for _, val := range vs {
				nk = nk.With(name, val)
			}
			out = append(out, nk)
		}
	}
	return out
}

func dedupe(keys []compositekey.Key) []compositekey.Key {
	seen := compositekey.NewMap[struct{}]()
	out := keys[:0]
	for _, k := range keys {
		if _, dup := seen.Get(k); dup {
			continue
		}
		seen.Put(k, struct{}{})
		out = append(out, k)
	}
	return out
}

// FilterKey derives the single key a class/filter pair looks up. ok is
// false when the pair is not a conjunction of equality clauses naming
// every required property and only spec properties, or when class
// contradicts the filter's objectClass clauses.
//
// An empty filter stands for the class alone. A '#' property may be named
// at most once, since references are filed once per value.
func (s Spec) FilterKey(class, f string) (compositekey.Key, bool) {
	var clauses []filter.Clause
	if f != "" {
		var ok bool
		clauses, ok = filter.ParseConjunction(f)
		if !ok {
			return compositekey.Key{}, false
		}
	} else if class == "" {
		return compositekey.Key{}, false
	}

	if class != "" {
		named, matched := false, false
		for _, c := range clauses {
			if strings.EqualFold(c.Name, model.PropertyObjectClass) {
				named = true
				matched = matched || c.Value == class
			}
		}
		if named && !matched {
			return compositekey.Key{}, false
		}
		if !named {
			clauses = append(clauses, filter.Clause{Name: model.PropertyObjectClass, Value: class})
		}
	}

	var key compositekey.Key
	seen := make(map[string]int, len(s.props))
	for _, c := range clauses {
		p, ok := s.Lookup(c.Name)
		if !ok {
			return compositekey.Key{}, false
		}
		seen[p.Name]++
		if p.NoPermutation && seen[p.Name] > 1 {
			return compositekey.Key{}, false
		}
		key = key.With(p.Name, c.Value)
	}
	for _, p := range s.props {
		if !p.Optional && seen[p.Name] == 0 {
			return compositekey.Key{}, false
		}
	}
	return key, true
}
