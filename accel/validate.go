package accel

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTree = errors.New("accel: invalid tree")
)

// Validate checks the structural invariants of the tree:
//
//   - the primitive index list is a permutation of 0..n-1;
//   - every node is either internal (with both children stored after it at
//     LeftFirst and LeftFirst+1) or a leaf owning a contiguous index range;
//   - leaf ranges are disjoint and together cover the index list exactly once;
//   - every node box contains the boxes of its children and primitives;
//   - every stored node is reachable from the root.
//
// All violations are reported as errors wrapping ErrInvalidTree.
func (t *BVH) Validate() error {
	n := t.prims.PrimitiveCount()
	if len(t.indices) != n {
		return fmt.Errorf("%w: index list has %d entries; expected %d", ErrInvalidTree, len(t.indices), n)
	}
	if n == 0 {
		if len(t.nodes) != 0 {
			return fmt.Errorf("%w: empty tree has %d nodes", ErrInvalidTree, len(t.nodes))
		}
		return nil
	}
	if len(t.nodes) == 0 {
		return fmt.Errorf("%w: missing root node", ErrInvalidTree)
	}

	seenPrim := make([]bool, n)
	for pos, primIndex := range t.indices {
		if primIndex < 0 || int(primIndex) >= n {
			return fmt.Errorf("%w: index list entry %d refers to primitive %d", ErrInvalidTree, pos, primIndex)
		}
		if seenPrim[primIndex] {
			return fmt.Errorf("%w: primitive %d appears more than once", ErrInvalidTree, primIndex)
		}
		seenPrim[primIndex] = true
	}

	covered := make([]bool, n)
	visited := make([]bool, len(t.nodes))
	stack := []int32{0}
	for len(stack) > 0 {
		nodeIndex := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[nodeIndex] {
			return fmt.Errorf("%w: node %d is reachable more than once", ErrInvalidTree, nodeIndex)
		}
		visited[nodeIndex] = true
		node := &t.nodes[nodeIndex]

		if node.PrimitiveCount < 0 {
			return fmt.Errorf("%w: node %d has negative primitive count %d", ErrInvalidTree, nodeIndex, node.PrimitiveCount)
		}

		if node.IsLeaf() {
			first, last := node.PrimitiveRange()
			if first < 0 || last < first || int(last) > n {
				return fmt.Errorf("%w: leaf %d range [%d, %d) out of bounds", ErrInvalidTree, nodeIndex, first, last)
			}
			for i := first; i < last; i++ {
				if covered[i] {
					return fmt.Errorf("%w: index list entry %d is owned by more than one leaf", ErrInvalidTree, i)
				}
				covered[i] = true

				primIndex := int(t.indices[i])
				if primBounds := t.prims.PrimitiveBounds(primIndex); !node.AABB.Contains(primBounds) {
					return fmt.Errorf("%w: leaf %d box %v does not contain primitive %d box %v", ErrInvalidTree, nodeIndex, node.AABB, primIndex, primBounds)
				}
			}
			continue
		}

		left, right := node.LeftChild(), node.RightChild()
		if left <= nodeIndex || int(right) >= len(t.nodes) {
			return fmt.Errorf("%w: node %d has invalid children %d/%d", ErrInvalidTree, nodeIndex, left, right)
		}
		for _, child := range []int32{left, right} {
			if !node.AABB.Contains(t.nodes[child].AABB) {
				return fmt.Errorf("%w: node %d box %v does not contain child %d box %v", ErrInvalidTree, nodeIndex, node.AABB, child, t.nodes[child].AABB)
			}
		}
		stack = append(stack, right, left)
	}

	for i, ok := range covered {
		if !ok {
			return fmt.Errorf("%w: index list entry %d is not owned by any leaf", ErrInvalidTree, i)
		}
	}
	for i, ok := range visited {
		if !ok {
			return fmt.Errorf("%w: node %d is unreachable", ErrInvalidTree, i)
		}
	}
	return nil
}
