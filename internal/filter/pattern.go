package filter

import (
	"strconv"
	"strings"
)

// Literal skeletons of the two synthetic filter shapes produced by aspect
// and adapter chaining.
const (
	shapeStart = "(&(objectClass="

	adapterIDs   = ")(|(service.id="
	adapterAlias = ")(aspect="
	adapterEnd   = ")))"

	aspectRanking = ")(&(|(!(ranking=*))(ranking<="
	aspectIDs     = "))(|(service.id="
	aspectAlias   = ")(aspect="
	aspectEnd     = "))))"
)

// AdapterShape is the content of
// (&(objectClass=C)(|(service.id=S)(aspect=S))).
type AdapterShape struct {
	Class string
	ID    uint64
}

// AspectShape is the content of
// (&(objectClass=C)(&(|(!(ranking=*))(ranking<=R))(|(service.id=S)(aspect=S)))).
type AspectShape struct {
	Class   string
	ID      uint64
	Ranking int64
}

// AdapterFilter renders the adapter shape.
func AdapterFilter(class string, id uint64) string {
	sid := strconv.FormatUint(id, 10)
	return shapeStart + class + adapterIDs + sid + adapterAlias + sid + adapterEnd
}

// AspectFilter renders the aspect shape.
func AspectFilter(class string, id uint64, ranking int64) string {
	sid := strconv.FormatUint(id, 10)
	return shapeStart + class + aspectRanking + strconv.FormatInt(ranking, 10) +
		aspectIDs + sid + aspectAlias + sid + aspectEnd
}

// ScanAdapter matches s against the adapter skeleton. Both id occurrences
// must parse and agree.
func ScanAdapter(s string) (AdapterShape, bool) {
	rest, ok := strings.CutPrefix(s, shapeStart)
	if !ok {
		return AdapterShape{}, false
	}
	class, rest, ok := strings.Cut(rest, adapterIDs)
	if !ok || !validClass(class) {
		return AdapterShape{}, false
	}
	id, ok := scanIDPair(rest, adapterAlias, adapterEnd)
	if !ok {
		return AdapterShape{}, false
	}
	return AdapterShape{Class: class, ID: id}, true
}

// ScanAspect matches s against the aspect skeleton. Both id occurrences
// must parse and agree; the ranking ceiling must be a base-10 integer.
func ScanAspect(s string) (AspectShape, bool) {
	rest, ok := strings.CutPrefix(s, shapeStart)
	if !ok {
		return AspectShape{}, false
	}
	class, rest, ok := strings.Cut(rest, aspectRanking)
	if !ok || !validClass(class) {
		return AspectShape{}, false
	}
	rank, rest, ok := strings.Cut(rest, aspectIDs)
	if !ok {
		return AspectShape{}, false
	}
	ranking, err := strconv.ParseInt(rank, 10, 64)
	if err != nil {
		return AspectShape{}, false
	}
	id, ok := scanIDPair(rest, aspectAlias, aspectEnd)
	if !ok {
		return AspectShape{}, false
	}
	return AspectShape{Class: class, ID: id, Ranking: ranking}, true
}

// scanIDPair parses "S<sep>S<end>" and checks both S agree. end is a run
// of closing parens; surplus closing parens after it are tolerated, as
// generated filters have been seen to carry one too many.
func scanIDPair(s, sep, end string) (uint64, bool) {
	first, rest, ok := strings.Cut(s, sep)
	if !ok {
		return 0, false
	}
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	second, tail := rest[:i], rest[i:]
	if len(tail) < len(end) || strings.TrimLeft(tail, ")") != "" {
		return 0, false
	}
	a, ok := parseID(first)
	if !ok {
		return 0, false
	}
	b, ok := parseID(second)
	if !ok || a != b {
		return 0, false
	}
	return a, true
}

// parseID accepts unsigned base-10 digits only.
func parseID(s string) (uint64, bool) {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func validClass(c string) bool {
	return c != "" && !strings.ContainsAny(c, "()=*&|!")
}
