package shape

import (
	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/types"
)

// A Shape is anything that can be intersected by a ray. Shapes are immutable
// once constructed and can be shared between goroutines.
type Shape interface {
	// Intersect ray with the shape. On a hit closer than its.T the
	// intersection record is updated and true is returned.
	Intersect(ray types.Ray, its *accel.Intersection, rng accel.Sampler) bool

	// Get the local space bounding box of the shape.
	BoundingBox() types.Bounds

	// Get the point used for binning the shape when it becomes part of a
	// BVH.
	Centroid() types.Vec3
}

// A BVH over any primitive collection is itself a shape.
var _ Shape = (*accel.BVH)(nil)

// Returns true if the surface is opaque at uv. Surfaces without an alpha mask
// are always opaque. A partially transparent surface blocks the ray with a
// probability equal to its opacity.
func opaqueAt(its *accel.Intersection, uv types.Vec2, rng accel.Sampler) bool {
	if its.AlphaMask == nil {
		return true
	}

	alpha := its.AlphaMask.Scalar(uv)
	if rng == nil {
		return alpha >= 0.5
	}
	return alpha > rng.Next()
}

// BruteForce intersects ray with every primitive in prims without using any
// acceleration structure. It serves as a reference for verifying BVH queries.
func BruteForce(prims accel.Primitives, ray types.Ray, its *accel.Intersection, rng accel.Sampler) bool {
	wasIntersected := false
	for i := 0; i < prims.PrimitiveCount(); i++ {
		its.Stats.PrimitiveTests++
		if prims.IntersectPrimitive(i, ray, its, rng) {
			wasIntersected = true
		}
	}
	return wasIntersected
}
