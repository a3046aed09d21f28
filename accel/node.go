package accel

import "github.com/achilleasa/prism/types"

// Node is a single BVH node. Nodes are stored in one contiguous slice; the
// root is always the first entry.
//
// LeftFirst has a dual meaning: for internal nodes it is the index of the
// left child (the right child always follows at LeftFirst+1), for leaf nodes
// it is the first entry in the primitive index list. PrimitiveCount is 0 for
// internal nodes and > 0 for leafs.
type Node struct {
	AABB           types.Bounds
	LeftFirst      int32
	PrimitiveCount int32
}

// Returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.PrimitiveCount != 0
}

// Index of the left child of an internal node.
func (n *Node) LeftChild() int32 {
	return n.LeftFirst
}

// Index of the right child of an internal node.
func (n *Node) RightChild() int32 {
	return n.LeftFirst + 1
}

// First (inclusive) and last (exclusive) entries of a leaf in the primitive
// index list.
func (n *Node) PrimitiveRange() (int32, int32) {
	return n.LeftFirst, n.LeftFirst + n.PrimitiveCount
}
