package accel

import "github.com/achilleasa/prism/types"

// The Primitives interface is implemented by collections of intersectable
// items (triangle meshes, shape groups) that want to be accelerated by a BVH.
// It is the only way the BVH touches primitive specific logic.
type Primitives interface {
	// Get the number of primitives in the collection.
	PrimitiveCount() int

	// Intersect the primitive at index with ray. Implementations may tighten
	// its.T and fill in the hit attributes but must never report a hit that
	// is farther away than its.T on entry.
	IntersectPrimitive(index int, ray types.Ray, its *Intersection, rng Sampler) bool

	// Get the bounding box of the primitive at index.
	PrimitiveBounds(index int) types.Bounds

	// Get the representative point of the primitive at index that is used
	// for binning primitives during construction.
	PrimitiveCentroid(index int) types.Vec3
}

// A Sampler provides uniformly distributed random numbers in [0, 1). Each
// query supplies its own sampler; samplers are never shared between
// goroutines.
type Sampler interface {
	Next() float32
	Next2D() types.Vec2
}

// An AlphaMask returns the opacity of a surface at the given texture
// coordinates. Opacities below 1 let rays pass through stochastically.
type AlphaMask interface {
	Scalar(uv types.Vec2) float32
}

// TraversalStats collects per-query diagnostic counters.
type TraversalStats struct {
	// Number of BVH nodes visited.
	NodeVisits int

	// Number of primitive intersection tests.
	PrimitiveTests int
}

// Add the counters of another query.
func (s *TraversalStats) Add(other TraversalStats) {
	s.NodeVisits += other.NodeVisits
	s.PrimitiveTests += other.PrimitiveTests
}

// Intersection is the mutable record that is threaded through a query. T
// always holds the distance to the closest hit found so far.
type Intersection struct {
	// Distance along the ray to the closest hit.
	T float32

	// Hit point, shading frame and texture coordinates.
	Position types.Vec3
	Frame    types.Frame
	UV       types.Vec2

	// Area sampling pdf of the hit surface.
	Pdf float32

	// The index of the hit primitive within its collection and the shape
	// that reported the hit.
	PrimitiveIndex int
	Shape          interface{}

	// An optional alpha mask that leaf tests should apply.
	AlphaMask AlphaMask

	// Diagnostic counters.
	Stats TraversalStats
}

// Create an intersection record with no hit.
func NewIntersection() Intersection {
	return Intersection{
		T:              types.Infinity,
		PrimitiveIndex: -1,
	}
}

// Reset the record for reuse by another query.
func (its *Intersection) Reset() {
	*its = NewIntersection()
}

// Returns true if a hit has been recorded.
func (its *Intersection) Hit() bool {
	return its.T < types.Infinity
}
