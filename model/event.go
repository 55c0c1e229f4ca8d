package model

// EventKind identifies what happened to a service.
type EventKind uint8

const (
	// Registered is delivered after a service has been registered.
	Registered EventKind = iota + 1
	// Modified is delivered after a service's properties changed.
	Modified
	// ModifiedEndMatch is delivered when a property change made a service
	// stop matching a listener's filter.
	ModifiedEndMatch
	// Unregistering is delivered while a service is being unregistered.
	Unregistering
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case Registered:
		return "REGISTERED"
	case Modified:
		return "MODIFIED"
	case ModifiedEndMatch:
		return "MODIFIED_ENDMATCH"
	case Unregistering:
		return "UNREGISTERING"
	default:
		return "UNKNOWN"
	}
}

// Event describes a change to a registered service.
type Event struct {
	Kind      EventKind
	Reference Reference
}

// Listener receives service events. Implementations must be comparable
// (pointer receivers are): indices use listener identity as a map key.
type Listener interface {
	ServiceChanged(ev Event)
}

type funcListener struct {
	fn func(Event)
}

func (l *funcListener) ServiceChanged(ev Event) { l.fn(ev) }

// ListenerFunc wraps fn in a Listener with its own identity. Two calls
// with the same function yield distinct listeners.
func ListenerFunc(fn func(Event)) Listener {
	return &funcListener{fn: fn}
}
