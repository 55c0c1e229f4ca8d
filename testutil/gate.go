package testutil

import (
	"sync/atomic"

	"github.com/hupe1980/regindex/metadata"
	"github.com/hupe1980/regindex/model"
)

// GatedReference wraps a Service. The first Properties call reads the
// current properties, closes Reached and then blocks until Release before
// returning what it read. Later calls do not block.
type GatedReference struct {
	*model.Service

	armed   atomic.Bool
	reached chan struct{}
	release chan struct{}
}

// NewGatedReference wraps s.
func NewGatedReference(s *model.Service) *GatedReference {
	return &GatedReference{
		Service: s,
		reached: make(chan struct{}),
		release: make(chan struct{}),
	}
}

// Properties implements model.Reference.
func (g *GatedReference) Properties() metadata.Properties {
	p := g.Service.Properties()
	if g.armed.CompareAndSwap(false, true) {
		close(g.reached)
		<-g.release
	}
	return p
}

// Reached is closed once the first Properties call has read.
func (g *GatedReference) Reached() <-chan struct{} { return g.reached }

// Release unblocks the first Properties call.
func (g *GatedReference) Release() { close(g.release) }
