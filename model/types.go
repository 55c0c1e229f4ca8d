package model

import (
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/regindex/metadata"
)

// Well-known property names.
const (
	// PropertyObjectClass lists the class names a service is published under.
	PropertyObjectClass = "objectClass"
	// PropertyServiceID carries the registry-assigned service id.
	PropertyServiceID = "service.id"
	// PropertyAspect carries the id of the service an aspect decorates.
	PropertyAspect = "aspect"
	// PropertyRanking carries the service ranking.
	PropertyRanking = "ranking"
)

// ServiceID is the unique, monotonically assigned identifier of a
// registered service.
type ServiceID uint64

// Reference is a registered, externally owned service. ID is immutable;
// Properties may change between calls ("modify"), each call returning a
// consistent snapshot.
type Reference interface {
	ID() ServiceID
	Properties() metadata.Properties
}

// Service is a concrete Reference whose properties can be replaced
// atomically.
type Service struct {
	id    ServiceID
	props atomic.Pointer[metadata.Properties]
}

// NewService creates a service. The service.id property is set to id.
func NewService(id ServiceID, props metadata.Properties) *Service {
	s := &Service{id: id}
	s.SetProperties(props)
	return s
}

// ID implements Reference.
func (s *Service) ID() ServiceID { return s.id }

// Properties implements Reference.
func (s *Service) Properties() metadata.Properties {
	if p := s.props.Load(); p != nil {
		return *p
	}
	return metadata.Properties{}
}

// SetProperties replaces the property bag. service.id is preserved.
func (s *Service) SetProperties(props metadata.Properties) {
	p := props.With(PropertyServiceID, metadata.Int(int64(s.id)))
	s.props.Store(&p)
}

// String returns a short description of the service.
func (s *Service) String() string {
	return fmt.Sprintf("Service(%d)", s.id)
}

// ObjectClasses returns the class names of ref.
func ObjectClasses(ref Reference) []string {
	v, ok := ref.Properties().Get(PropertyObjectClass)
	if !ok {
		return nil
	}
	vals := v.Values()
	out := make([]string, 0, len(vals))
	for _, c := range vals {
		out = append(out, c.String())
	}
	return out
}

// HasObjectClass reports whether ref is published under class.
func HasObjectClass(ref Reference, class string) bool {
	for _, c := range ObjectClasses(ref) {
		if c == class {
			return true
		}
	}
	return false
}

// Ranking returns the ranking of ref. A missing or non-integer ranking
// counts as zero.
func Ranking(ref Reference) int64 {
	n, _ := LookupRanking(ref)
	return n
}

// LookupRanking returns the ranking of ref and whether ref carries a
// ranking property at all. A non-integer ranking counts as zero.
func LookupRanking(ref Reference) (int64, bool) {
	v, ok := ref.Properties().Get(PropertyRanking)
	if !ok {
		return 0, false
	}
	n, _ := v.ToInt64()
	return n, true
}

// MatchIDs returns the ids a (|(service.id=S)(aspect=S)) clause matches ref
// under: its own id and, when it decorates another service, that
// service's id.
func MatchIDs(ref Reference) []ServiceID {
	ids := []ServiceID{ref.ID()}
	if orig := OriginalID(ref); orig != ref.ID() {
		ids = append(ids, orig)
	}
	return ids
}

// OriginalID returns the id of the service ref stands for: the aspect
// property when ref decorates another service, otherwise ref's own id.
func OriginalID(ref Reference) ServiceID {
	if v, ok := ref.Properties().Get(PropertyAspect); ok {
		if n, ok := v.ToInt64(); ok && n >= 0 {
			return ServiceID(n)
		}
	}
	return ref.ID()
}
