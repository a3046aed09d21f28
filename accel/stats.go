package accel

import "time"

// BuildStats are collected while a tree is being built.
type BuildStats struct {
	Primitives int
	Nodes      int
	Leaves     int
	MaxDepth   int
	Duration   time.Duration
}

// TreeStats describe the shape and quality of a built tree.
type TreeStats struct {
	Nodes         int
	InternalNodes int
	Leaves        int
	Primitives    int

	MaxDepth     int
	AvgLeafDepth float64

	MinLeafSize int
	MaxLeafSize int
	AvgLeafSize float64

	// Expected cost of a random ray query under the surface area
	// heuristic, relative to the root area: the sum of all internal node
	// areas plus leaf areas weighted by their primitive counts.
	SAHCost float64
}

// Walk the tree and collect statistics.
func (t *BVH) TreeStats() TreeStats {
	stats := TreeStats{Primitives: len(t.indices)}
	if len(t.nodes) == 0 {
		return stats
	}

	rootArea := float64(t.nodes[0].AABB.SurfaceArea())
	var depthSum, leafSizeSum int
	var cost float64

	type entry struct {
		node  int32
		depth int
	}
	stack := []entry{{0, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &t.nodes[e.node]
		stats.Nodes++
		if e.depth > stats.MaxDepth {
			stats.MaxDepth = e.depth
		}

		area := float64(node.AABB.SurfaceArea())
		if node.IsLeaf() {
			size := int(node.PrimitiveCount)
			stats.Leaves++
			depthSum += e.depth
			leafSizeSum += size
			if stats.MinLeafSize == 0 || size < stats.MinLeafSize {
				stats.MinLeafSize = size
			}
			if size > stats.MaxLeafSize {
				stats.MaxLeafSize = size
			}
			cost += area * float64(size)
			continue
		}

		stats.InternalNodes++
		cost += area
		stack = append(stack, entry{node.RightChild(), e.depth + 1}, entry{node.LeftChild(), e.depth + 1})
	}

	if stats.Leaves > 0 {
		stats.AvgLeafDepth = float64(depthSum) / float64(stats.Leaves)
		stats.AvgLeafSize = float64(leafSizeSum) / float64(stats.Leaves)
	}
	if rootArea > 0 {
		stats.SAHCost = cost / rootArea
	}
	return stats
}
