package testutil

import (
	"math/rand"
	"strconv"
	"sync"

	"github.com/hupe1980/regindex/metadata"
	"github.com/hupe1980/regindex/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Pick returns a random element of choices.
func (r *RNG) Pick(choices []string) string {
	return choices[r.Intn(len(choices))]
}

// Subset returns a non-empty random subset of choices, preserving order.
func (r *RNG) Subset(choices []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		var out []string
		for _, c := range choices {
			if r.rand.Intn(2) == 0 {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
}

// ServiceProps generates a property map with a single objectClass drawn
// from classes and, for every name in props, a value name-0..name-(card-1).
func (r *RNG) ServiceProps(classes []string, props []string, card int) map[string]metadata.Value {
	m := map[string]metadata.Value{
		model.PropertyObjectClass: metadata.Strings(r.Pick(classes)),
	}
	for _, p := range props {
		m[p] = metadata.String(p + "-" + strconv.Itoa(r.Intn(card)))
	}
	return m
}

// IDs returns the service ids of refs in order.
func IDs(refs []model.Reference) []model.ServiceID {
	out := make([]model.ServiceID, len(refs))
	for i, ref := range refs {
		out[i] = ref.ID()
	}
	return out
}
