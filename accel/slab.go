package accel

import "github.com/achilleasa/prism/types"

// Intersect a ray with a bounding box using the slab method and return the
// entry distance. The entry distance is negative when the ray starts inside
// the box. If the ray misses the box or the box lies behind the ray origin
// this function returns types.Infinity.
//
// Zero direction components are not special-cased: the IEEE division yields
// ±Inf and the axis only constrains the ray if its origin lies outside the
// slab. A 0/0 (origin exactly on a slab plane while travelling parallel to
// it) produces NaN; such an axis does not constrain the ray at all.
func intersectAABB(b types.Bounds, ray types.Ray) float32 {
	tNear := -types.Infinity
	tFar := types.Infinity

	for axis := 0; axis < 3; axis++ {
		t1 := (b.Min[axis] - ray.Origin[axis]) / ray.Direction[axis]
		t2 := (b.Max[axis] - ray.Origin[axis]) / ray.Direction[axis]
		if t1 != t1 || t2 != t2 {
			continue
		}

		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tNear {
			tNear = t1
		}
		if t2 < tFar {
			tFar = t2
		}
	}

	if tFar < tNear {
		return types.Infinity
	}
	if tFar < types.Epsilon {
		return types.Infinity
	}
	return tNear
}
