package sampler

import (
	"github.com/achilleasa/prism/types"
	"golang.org/x/exp/rand"
)

// Independent generates uniformly distributed, uncorrelated samples. It is
// not safe for concurrent use; each worker should own its own instance.
type Independent struct {
	src rand.PCGSource
	rng *rand.Rand
}

// Create a sampler seeded with seed. Samplers created with the same seed
// generate the same sequence.
func New(seed uint64) *Independent {
	s := &Independent{}
	s.src.Seed(seed)
	s.rng = rand.New(&s.src)
	return s
}

// Reseed the sampler.
func (s *Independent) Seed(seed uint64) {
	s.src.Seed(seed)
}

// Get a sample in [0, 1).
func (s *Independent) Next() float32 {
	return s.rng.Float32()
}

// Get a pair of samples in [0, 1).
func (s *Independent) Next2D() types.Vec2 {
	return types.XY(s.rng.Float32(), s.rng.Float32())
}
