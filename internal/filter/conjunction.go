package filter

import "strings"

// Clause is one equality assertion (name=value) of a filter.
type Clause struct {
	Name  string
	Value string
}

// maxAndDepth bounds nesting: a top-level conjunction may contain one
// level of nested conjunctions, as in (&(objectClass=X)(&(a=b)(c=d))).
const maxAndDepth = 2

// ParseConjunction recognizes filters built only from equality clauses
// joined by '&':
//
//	(name=value)
//	(&(a=b)(c=d))
//	(&(objectClass=X)(&(a=b)(c=d)))
//
// Disjunctions, negations, comparison operators, presence and substring
// wildcards are not recognized. ok is false for anything else, including
// malformed input; ParseConjunction never panics.
func ParseConjunction(s string) (clauses []Clause, ok bool) {
	p := parser{s: s}
	clauses, ok = p.item(0)
	if !ok || p.pos != len(p.s) {
		return nil, false
	}
	return clauses, true
}

type parser struct {
	s   string
	pos int
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.s) {
		return 0, false
	}
	return p.s[p.pos], true
}

func (p *parser) expect(c byte) bool {
	if b, ok := p.peek(); ok && b == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) item(depth int) ([]Clause, bool) {
	if !p.expect('(') {
		return nil, false
	}
	if p.expect('&') {
		if depth >= maxAndDepth {
			return nil, false
		}
		var out []Clause
		for {
			b, ok := p.peek()
			if !ok {
				return nil, false
			}
			if b == ')' {
				break
			}
			sub, ok := p.item(depth + 1)
			if !ok {
				return nil, false
			}
			out = append(out, sub...)
		}
		p.pos++ // ')'
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	}
	c, ok := p.clause()
	if !ok || !p.expect(')') {
		return nil, false
	}
	return []Clause{c}, true
}

// clause scans name=value up to, not including, the closing paren.
func (p *parser) clause() (Clause, bool) {
	start := p.pos
	for {
		b, ok := p.peek()
		if !ok {
			return Clause{}, false
		}
		if b == '=' {
			break
		}
		if strings.IndexByte("()&|!<>~*\\", b) >= 0 {
			return Clause{}, false
		}
		p.pos++
	}
	name := strings.TrimSpace(p.s[start:p.pos])
	if name == "" {
		return Clause{}, false
	}
	p.pos++ // '='

	var val strings.Builder
	for {
		b, ok := p.peek()
		if !ok {
			return Clause{}, false
		}
		switch b {
		case ')':
			if val.Len() == 0 {
				return Clause{}, false
			}
			return Clause{Name: name, Value: val.String()}, true
		case '(', '*':
			return Clause{}, false
		case '\\':
			p.pos++
			e, ok := p.peek()
			if !ok {
				return Clause{}, false
			}
			val.WriteByte(e)
		default:
			val.WriteByte(b)
		}
		p.pos++
	}
}
