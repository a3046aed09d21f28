package accel

import "github.com/achilleasa/prism/types"

// BVH is an immutable bounding volume hierarchy over a Primitives
// collection. The tree only stores integer indices into the collection; the
// primitive payload stays with its owner.
type BVH struct {
	prims Primitives

	// Tree nodes; the root is nodes[0].
	nodes []Node

	// Permutation of 0..n-1 so that the primitives of each leaf are contiguous.
	indices []int32

	stats BuildStats
}

// Intersect ray with the primitives in the tree. The closest hit is recorded
// in its and T is only ever tightened. Returns true if any primitive updated
// the intersection record.
//
// Intersect does not modify the tree and is safe for concurrent use as long
// as each caller supplies its own intersection record and sampler.
func (t *BVH) Intersect(ray types.Ray, its *Intersection, rng Sampler) bool {
	if len(t.indices) == 0 {
		return false
	}

	// Skip the whole tree if the root box cannot contain a closer hit
	if intersectAABB(t.nodes[0].AABB, ray) < its.T {
		return t.intersectNode(0, ray, its, rng)
	}
	return false
}

func (t *BVH) intersectNode(nodeIndex int32, ray types.Ray, its *Intersection, rng Sampler) bool {
	its.Stats.NodeVisits++

	node := &t.nodes[nodeIndex]
	wasIntersected := false
	if node.IsLeaf() {
		first, last := node.PrimitiveRange()
		for i := first; i < last; i++ {
			its.Stats.PrimitiveTests++
			if t.prims.IntersectPrimitive(int(t.indices[i]), ray, its, rng) {
				wasIntersected = true
			}
		}
		return wasIntersected
	}

	// Visit the child whose box is entered first; the far child is only
	// visited if it may still contain a hit closer than the current one.
	left, right := node.LeftChild(), node.RightChild()
	leftT := intersectAABB(t.nodes[left].AABB, ray)
	rightT := intersectAABB(t.nodes[right].AABB, ray)
	if leftT < rightT {
		if leftT < its.T && t.intersectNode(left, ray, its, rng) {
			wasIntersected = true
		}
		if rightT < its.T && t.intersectNode(right, ray, its, rng) {
			wasIntersected = true
		}
	} else {
		if rightT < its.T && t.intersectNode(right, ray, its, rng) {
			wasIntersected = true
		}
		if leftT < its.T && t.intersectNode(left, ray, its, rng) {
			wasIntersected = true
		}
	}
	return wasIntersected
}

// Get the bounding box of the root node. An empty tree has empty bounds.
func (t *BVH) BoundingBox() types.Bounds {
	if len(t.nodes) == 0 {
		return types.EmptyBounds()
	}
	return t.nodes[0].AABB
}

// Get the center of the root bounding box.
func (t *BVH) Centroid() types.Vec3 {
	if len(t.nodes) == 0 {
		return types.Vec3{}
	}
	return t.nodes[0].AABB.Center()
}

// Get the primitive collection indexed by this tree.
func (t *BVH) Primitives() Primitives {
	return t.prims
}

// Get the tree nodes. The returned slice must not be modified.
func (t *BVH) Nodes() []Node {
	return t.nodes
}

// Get the primitive index permutation. The returned slice must not be modified.
func (t *BVH) Indices() []int32 {
	return t.indices
}

// Get the statistics collected while the tree was built.
func (t *BVH) BuildStats() BuildStats {
	return t.stats
}

// Get the number of primitives indexed by the tree.
func (t *BVH) Len() int {
	return len(t.indices)
}
