// Package rankset implements the ordered reference set used by the
// fast-path indices: references sorted by ranking, ties broken by service
// id (registration order).
package rankset

import (
	"cmp"
	"slices"

	"github.com/hupe1980/regindex/model"
)

type member struct {
	ranking int64
	ref     model.Reference
}

func compare(a, b member) int {
	if c := cmp.Compare(a.ranking, b.ranking); c != 0 {
		return c
	}
	return cmp.Compare(a.ref.ID(), b.ref.ID())
}

// Set is an ordered set of references. The ranking is sampled when a
// reference is inserted; callers re-insert on modification. Set is not
// safe for concurrent use.
type Set struct {
	members []member
}

// Insert adds ref with the given ranking. A reference already present
// (by id) is repositioned.
func (s *Set) Insert(ref model.Reference, ranking int64) {
	s.Remove(ref.ID())
	m := member{ranking: ranking, ref: ref}
	i, _ := slices.BinarySearchFunc(s.members, m, compare)
	s.members = slices.Insert(s.members, i, m)
}

// Remove deletes the reference with id and reports whether it was
// present. The scan is by id since the ranking may have changed since
// insertion.
func (s *Set) Remove(id model.ServiceID) bool {
	for i := range s.members {
		if s.members[i].ref.ID() == id {
			s.members = slices.Delete(s.members, i, i+1)
			return true
		}
	}
	return false
}

// Len returns the number of references.
func (s *Set) Len() int { return len(s.members) }

// AtMost appends, in set order, every reference that has no ranking or
// whose current ranking is <= ceiling, and for which keep returns true.
// The ranking is read live from the reference, not from the sampled sort
// position.
func (s *Set) AtMost(dst []model.Reference, ceiling int64, keep func(model.Reference) bool) []model.Reference {
	for _, m := range s.members {
		if r, ok := model.LookupRanking(m.ref); ok && r > ceiling {
			continue
		}
		if keep == nil || keep(m.ref) {
			dst = append(dst, m.ref)
		}
	}
	return dst
}

// All appends every reference accepted by keep, in order.
func (s *Set) All(dst []model.Reference, keep func(model.Reference) bool) []model.Reference {
	for _, m := range s.members {
		if keep == nil || keep(m.ref) {
			dst = append(dst, m.ref)
		}
	}
	return dst
}
