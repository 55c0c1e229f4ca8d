package testutil

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/hupe1980/regindex/metadata"
	"github.com/hupe1980/regindex/model"
	"github.com/hupe1980/regindex/tracker"
)

// Registry is an in-memory service registry. It implements
// tracker.Context so indices can be opened against it, and forwards every
// change as a model.Event to registered event listeners (typically a
// Cache or an index's ServiceChanged).
//
// Callbacks run on the goroutine that made the change, outside the
// registry lock.
type Registry struct {
	mu        sync.Mutex
	nextID    model.ServiceID
	services  map[model.ServiceID]*model.Service
	trackers  map[*registryTracker]struct{}
	listeners []model.Listener
}

// NewRegistry creates an empty registry. Service ids start at 1.
func NewRegistry() *Registry {
	return &Registry{
		nextID:   1,
		services: make(map[model.ServiceID]*model.Service),
		trackers: make(map[*registryTracker]struct{}),
	}
}

// AddEventListener registers l for every registry event.
func (r *Registry) AddEventListener(l model.Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Register publishes a new service.
func (r *Registry) Register(props map[string]metadata.Value) *model.Service {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	s := model.NewService(id, metadata.NewProperties(props))
	r.services[id] = s
	trackers, listeners := r.snapshotLocked()
	r.mu.Unlock()

	for _, t := range trackers {
		t.added(s)
	}
	notify(listeners, model.Event{Kind: model.Registered, Reference: s})
	return s
}

// RegisterAny publishes a new service from an untyped property map.
func (r *Registry) RegisterAny(props map[string]any) (*model.Service, error) {
	typed := make(map[string]metadata.Value, len(props))
	for k, v := range props {
		vv, err := metadata.FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		typed[k] = vv
	}
	return r.Register(typed), nil
}

// Modify replaces the properties of s.
func (r *Registry) Modify(s *model.Service, props map[string]metadata.Value) {
	r.mu.Lock()
	if _, ok := r.services[s.ID()]; !ok {
		r.mu.Unlock()
		return
	}
	s.SetProperties(metadata.NewProperties(props))
	trackers, listeners := r.snapshotLocked()
	r.mu.Unlock()

	for _, t := range trackers {
		t.modified(s)
	}
	notify(listeners, model.Event{Kind: model.Modified, Reference: s})
}

// Unregister withdraws s.
func (r *Registry) Unregister(s *model.Service) {
	r.mu.Lock()
	if _, ok := r.services[s.ID()]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.services, s.ID())
	trackers, listeners := r.snapshotLocked()
	r.mu.Unlock()

	notify(listeners, model.Event{Kind: model.Unregistering, Reference: s})
	for _, t := range trackers {
		t.removed(s)
	}
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.services)
}

// OpenTrackers returns the number of open trackers.
func (r *Registry) OpenTrackers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}

// NewTracker implements tracker.Context.
func (r *Registry) NewTracker(c tracker.Customizer) tracker.Tracker {
	return &registryTracker{reg: r, c: c, tracked: make(map[model.ServiceID]model.Reference)}
}

func (r *Registry) snapshotLocked() ([]*registryTracker, []model.Listener) {
	trackers := make([]*registryTracker, 0, len(r.trackers))
	for t := range r.trackers {
		trackers = append(trackers, t)
	}
	return trackers, slices.Clone(r.listeners)
}

func notify(listeners []model.Listener, ev model.Event) {
	for _, l := range listeners {
		l.ServiceChanged(ev)
	}
}

type registryTracker struct {
	reg     *Registry
	c       tracker.Customizer
	mu      sync.Mutex
	tracked map[model.ServiceID]model.Reference
}

func (t *registryTracker) Open() {
	t.reg.mu.Lock()
	initial := make([]*model.Service, 0, len(t.reg.services))
	for _, s := range t.reg.services {
		initial = append(initial, s)
	}
	t.reg.trackers[t] = struct{}{}
	t.reg.mu.Unlock()

	slices.SortFunc(initial, func(a, b *model.Service) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	for _, s := range initial {
		t.added(s)
	}
}

// Close untracks every tracked service, as a service tracker does.
func (t *registryTracker) Close() {
	t.reg.mu.Lock()
	delete(t.reg.trackers, t)
	t.reg.mu.Unlock()

	t.mu.Lock()
	refs := make([]model.Reference, 0, len(t.tracked))
	for _, ref := range t.tracked {
		refs = append(refs, ref)
	}
	clear(t.tracked)
	t.mu.Unlock()

	for _, ref := range refs {
		t.c.RemovedService(ref)
	}
}

func (t *registryTracker) added(s *model.Service) {
	t.mu.Lock()
	if _, ok := t.tracked[s.ID()]; ok {
		t.mu.Unlock()
		return
	}
	t.tracked[s.ID()] = s
	t.mu.Unlock()
	t.c.AddedService(s)
}

func (t *registryTracker) modified(s *model.Service) {
	t.mu.Lock()
	_, ok := t.tracked[s.ID()]
	t.mu.Unlock()
	if ok {
		t.c.ModifiedService(s)
	}
}

func (t *registryTracker) removed(s *model.Service) {
	t.mu.Lock()
	_, ok := t.tracked[s.ID()]
	delete(t.tracked, s.ID())
	t.mu.Unlock()
	if ok {
		t.c.RemovedService(s)
	}
}
