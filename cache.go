package regindex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hupe1980/regindex/index"
	"github.com/hupe1980/regindex/model"
	"github.com/hupe1980/regindex/tracker"
	"golang.org/x/sync/errgroup"
)

type route struct {
	class  string
	filter string
}

// noIndex marks a memoized "no index applies" decision.
const noIndex = -1

// Cache routes service queries and listener registrations to the first
// filter index that recognizes their class/filter pair. A false return
// from GetAllServiceReferences or AddServiceListener means no index
// applies and the caller must fall back to evaluating the filter itself.
//
// IsApplicable is pure, so routing decisions are memoized.
type Cache struct {
	indices []index.FilterIndex
	logger  *Logger
	metrics MetricsCollector
	routes  *lru.Cache[route, int] // nil when memoization is disabled

	mu     sync.Mutex
	owners map[model.Listener]index.FilterIndex
}

// New creates a cache over indices, consulted in order.
func New(indices []index.FilterIndex, opts ...Option) (*Cache, error) {
	o := applyOptions(opts)
	return newCache(indices, o)
}

// NewFromConfig creates a cache over the indices described by cfg (see
// ParseIndexConfig). The cache's logger and metrics collector are passed
// on to the indices.
func NewFromConfig(cfg string, opts ...Option) (*Cache, error) {
	o := applyOptions(opts)
	indices, err := ParseIndexConfig(cfg, o.indexOptions()...)
	if err != nil {
		return nil, err
	}
	return newCache(indices, o)
}

func newCache(indices []index.FilterIndex, o options) (*Cache, error) {
	c := &Cache{
		indices: append([]index.FilterIndex(nil), indices...),
		logger:  o.logger,
		metrics: o.metricsCollector,
		owners:  make(map[model.Listener]index.FilterIndex),
	}
	if o.routeCacheSize > 0 {
		routes, err := lru.New[route, int](o.routeCacheSize)
		if err != nil {
			return nil, fmt.Errorf("route cache: %w", err)
		}
		c.routes = routes
	}
	return c, nil
}

// Indices returns the indices in routing order.
func (c *Cache) Indices() []index.FilterIndex {
	return append([]index.FilterIndex(nil), c.indices...)
}

// Open opens every index against ctx concurrently. If any index fails to
// open, the ones that did are closed again and the errors are returned.
func (c *Cache) Open(ctx tracker.Context) error {
	opened := make([]bool, len(c.indices))
	var g errgroup.Group
	for i, x := range c.indices {
		g.Go(func() error {
			err := x.Open(ctx)
			c.logger.LogOpen(context.Background(), x.Name(), err)
			if err != nil {
				return fmt.Errorf("open %s: %w", x.Name(), err)
			}
			opened[i] = true
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		return nil
	}

	var rollback []error
	for i, x := range c.indices {
		if opened[i] {
			if cerr := x.Close(); cerr != nil {
				rollback = append(rollback, fmt.Errorf("close %s: %w", x.Name(), cerr))
			}
		}
	}
	return errors.Join(append([]error{err}, rollback...)...)
}

// Close closes every index concurrently and returns the first error.
func (c *Cache) Close() error {
	var g errgroup.Group
	for _, x := range c.indices {
		g.Go(func() error {
			err := x.Close()
			c.logger.LogClose(context.Background(), x.Name(), err)
			if err != nil {
				return fmt.Errorf("close %s: %w", x.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Route returns the first index applicable to the class/filter pair.
func (c *Cache) Route(class, filter string) (index.FilterIndex, bool) {
	r := route{class: class, filter: filter}
	if c.routes != nil {
		if i, ok := c.routes.Get(r); ok {
			if i == noIndex {
				return nil, false
			}
			return c.indices[i], true
		}
	}

	pos := noIndex
	for i, x := range c.indices {
		if x.IsApplicable(class, filter) {
			pos = i
			break
		}
	}
	if c.routes != nil {
		c.routes.Add(r, pos)
	}
	if pos == noIndex {
		c.logger.WithFilter(filter).Debug("no applicable index", "class", class)
		return nil, false
	}
	c.logger.Debug("routed", "class", class, "filter", filter, "index", c.indices[pos].Name())
	return c.indices[pos], true
}

// GetAllServiceReferences answers the query from the first applicable
// index. ok is false when no index applies.
func (c *Cache) GetAllServiceReferences(class, filter string) (refs []model.Reference, ok bool, err error) {
	x, ok := c.Route(class, filter)
	if !ok {
		c.metrics.RecordFallback()
		return nil, false, nil
	}

	start := time.Now()
	refs, err = x.GetAllServiceReferences(class, filter)
	c.metrics.RecordQuery(x.Name(), len(refs), time.Since(start), err)
	c.logger.LogQuery(context.Background(), x.Name(), class, filter, len(refs), err)
	if err != nil {
		return nil, true, err
	}
	return refs, true, nil
}

// AddServiceListener registers l with the first index applicable to
// filter. ok is false when no index applies. A listener registered again
// is moved to the index its new filter routes to.
func (c *Cache) AddServiceListener(l model.Listener, filter string) (ok bool, err error) {
	if l == nil {
		return false, ErrNilListener
	}
	x, ok := c.Route("", filter)

	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.logger.WithFilter(filter)
	if prev, had := c.owners[l]; had && prev != x {
		if err := prev.RemoveServiceListener(l); err != nil {
			return false, err
		}
		delete(c.owners, l)
		log.WithIndex(prev.Name()).Debug("listener moved off index")
	}
	if !ok {
		c.metrics.RecordFallback()
		return false, nil
	}
	if err := x.AddServiceListener(l, filter); err != nil {
		return false, err
	}
	c.owners[l] = x
	log.WithIndex(x.Name()).Debug("listener registered")
	return true, nil
}

// RemoveServiceListener unregisters l from the index it was added to. ok
// is false when l was not registered through the cache.
func (c *Cache) RemoveServiceListener(l model.Listener) (ok bool, err error) {
	if l == nil {
		return false, ErrNilListener
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	x, ok := c.owners[l]
	if !ok {
		return false, nil
	}
	delete(c.owners, l)
	return true, x.RemoveServiceListener(l)
}

// ServiceChanged forwards ev to every index; each notifies the listeners
// registered with it.
func (c *Cache) ServiceChanged(ev model.Event) {
	for _, x := range c.indices {
		x.ServiceChanged(ev)
	}
}

// Stats returns the stats of every index, by index name.
func (c *Cache) Stats() map[string]index.Stats {
	out := make(map[string]index.Stats, len(c.indices))
	for _, x := range c.indices {
		out[x.Name()] = x.Stats()
	}
	return out
}

func (c *Cache) String() string {
	parts := make([]string, len(c.indices))
	for i, x := range c.indices {
		parts[i] = x.String()
	}
	return "ServiceRegistryCache[" + strings.Join(parts, ", ") + "]"
}
