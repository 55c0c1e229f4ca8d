package multiproperty

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSpec is the sentinel wrapped by every *SpecError.
var ErrInvalidSpec = errors.New("invalid index spec")

// SpecError describes an unusable index spec token.
type SpecError struct {
	Token  string
	Reason string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("invalid index spec token %q: %s", e.Token, e.Reason)
}

func (e *SpecError) Unwrap() error { return ErrInvalidSpec }

const (
	markOptional      = '!'
	markNoPermutation = '#'
)

// Property is one configured property of a Spec.
type Property struct {
	// Name is the lower-cased property name.
	Name string
	// Optional properties need not be present on a reference or named by a
	// filter. When present on a reference they are indexed alongside a
	// variant without them.
	Optional bool
	// NoPermutation indexes a multi-valued property once per value instead
	// of once per contiguous run of sorted values.
	NoPermutation bool
}

func (p Property) String() string {
	var b strings.Builder
	if p.Optional {
		b.WriteByte(markOptional)
	}
	if p.NoPermutation {
		b.WriteByte(markNoPermutation)
	}
	b.WriteString(p.Name)
	return b.String()
}

// Spec is the immutable, ordered list of properties an index derives its
// keys from.
type Spec struct {
	props  []Property
	byName map[string]int
}

// ParseSpec parses a comma-separated list of property names. Each name may
// carry a leading '!' (optional) and/or '#' (no permutation) marker:
//
//	objectClass,cid,!context
//	objectClass,#tags
//
// Names are case-insensitive. At least one property must be required.
func ParseSpec(s string) (Spec, error) {
	spec := Spec{byName: make(map[string]int)}
	required := 0

	for tok := range strings.SplitSeq(s, ",") {
		raw := tok
		tok = strings.TrimSpace(tok)

		var p Property
	markers:
		for len(tok) > 0 {
			switch tok[0] {
			case markOptional:
				if p.Optional {
					return Spec{}, &SpecError{Token: raw, Reason: "repeated '!' marker"}
				}
				p.Optional = true
			case markNoPermutation:
				if p.NoPermutation {
					return Spec{}, &SpecError{Token: raw, Reason: "repeated '#' marker"}
				}
				p.NoPermutation = true
			default:
				break markers
			}
			tok = tok[1:]
		}
		if tok == "" {
			return Spec{}, &SpecError{Token: raw, Reason: "empty property name"}
		}
		if strings.ContainsAny(tok, "()=*&|!#;<>~\\ \t") {
			return Spec{}, &SpecError{Token: raw, Reason: "illegal character in property name"}
		}
		p.Name = strings.ToLower(tok)
		if _, dup := spec.byName[p.Name]; dup {
			return Spec{}, &SpecError{Token: raw, Reason: "duplicate property"}
		}
		spec.byName[p.Name] = len(spec.props)
		spec.props = append(spec.props, p)
		if !p.Optional {
			required++
		}
	}

	if required == 0 {
		return Spec{}, &SpecError{Token: s, Reason: "no required property"}
	}
	return spec, nil
}

// MustParseSpec is like ParseSpec but panics on error. It is intended for
// package-level spec literals.
func MustParseSpec(s string) Spec {
	spec, err := ParseSpec(s)
	if err != nil {
		panic(err)
	}
	return spec
}

// Properties returns the configured properties in spec order.
func (s Spec) Properties() []Property {
	out := make([]Property, len(s.props))
	copy(out, s.props)
	return out
}

// Lookup returns the property named name, case-insensitively.
func (s Spec) Lookup(name string) (Property, bool) {
	i, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return Property{}, false
	}
	return s.props[i], true
}

// String renders the spec in its canonical, parseable form.
func (s Spec) String() string {
	parts := make([]string, len(s.props))
	for i, p := range s.props {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}
