package accel

import (
	"time"

	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/types"
)

const (
	// The default number of bins used for evaluating SAH split candidates.
	DefaultBinCount = 16

	// Nodes with this many primitives or fewer are never split.
	DefaultMaxLeafSize = 2
)

// An Option customizes the BVH builder.
type Option func(*builder)

// Set the number of SAH bins per axis. Values below 2 are ignored.
func WithBinCount(count int) Option {
	return func(b *builder) {
		if count >= 2 {
			b.binCount = count
		}
	}
}

// Set the primitive count at or below which nodes are not split further.
// Values below 1 are ignored.
func WithMaxLeafSize(size int) Option {
	return func(b *builder) {
		if size >= 1 {
			b.maxLeafSize = size
		}
	}
}

// Use a specific logger for build diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Disable splitting; the resulting tree is a single leaf holding all
// primitives. Queries against it are equivalent to a linear scan.
func WithoutSplitting() Option {
	return func(b *builder) {
		b.noSplit = true
	}
}

type builder struct {
	logger log.Logger
	prims  Primitives

	// Bvh nodes stored as a contiguous list and the primitive index permutation.
	nodes   []Node
	indices []int32

	// Per primitive bounds and centroids, queried once from prims.
	bounds    []types.Bounds
	centroids []types.Vec3

	binCount    int
	maxLeafSize int
	noSplit     bool

	// Scratch space for split evaluation, reused for every node.
	bins        []bin
	leftAreas   []float32
	rightAreas  []float32
	leftCounts  []int32
	rightCounts []int32

	stats BuildStats
}

// Construct a BVH over a collection of primitives.
//
// Construction is single threaded and runs to completion before the tree is
// returned; the returned tree is never modified and may be queried from any
// number of goroutines.
func Build(prims Primitives, opts ...Option) *BVH {
	b := newBuilder(prims, opts...)

	start := time.Now()
	b.build()
	b.stats.Duration = time.Since(start)

	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		b.stats.Duration.Nanoseconds()/1e6,
		b.stats.MaxDepth, b.stats.Nodes, b.stats.Leaves,
	)
	b.logger.Infof(
		"built BVH with %d nodes for %d primitives in %.1f ms",
		len(b.nodes), len(b.indices), float64(b.stats.Duration.Nanoseconds())/1e6,
	)

	return &BVH{
		prims:   prims,
		nodes:   b.nodes,
		indices: b.indices,
		stats:   b.stats,
	}
}

func newBuilder(prims Primitives, opts ...Option) *builder {
	b := &builder{
		logger:      log.New("bvh"),
		prims:       prims,
		binCount:    DefaultBinCount,
		maxLeafSize: DefaultMaxLeafSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *builder) build() {
	if !b.prepare() {
		return
	}
	b.subdivide(0, 0)

	// Release scratch buffers
	b.bounds, b.centroids = nil, nil
}

// Set up the identity index permutation, cache primitive bounds and centroids
// and create the root node. Returns false if there is nothing to build.
func (b *builder) prepare() bool {
	count := b.prims.PrimitiveCount()
	b.stats.Primitives = count
	b.indices = make([]int32, count)
	if count == 0 {
		return false
	}

	b.bounds = make([]types.Bounds, count)
	b.centroids = make([]types.Vec3, count)
	for i := 0; i < count; i++ {
		b.indices[i] = int32(i)
		b.bounds[i] = b.prims.PrimitiveBounds(i)
		b.centroids[i] = b.prims.PrimitiveCentroid(i)
	}

	b.bins = make([]bin, b.binCount)
	b.leftAreas = make([]float32, b.binCount-1)
	b.rightAreas = make([]float32, b.binCount-1)
	b.leftCounts = make([]int32, b.binCount-1)
	b.rightCounts = make([]int32, b.binCount-1)

	// A binary tree with n leafs has 2n-1 nodes
	b.nodes = make([]Node, 1, 2*count-1)
	b.nodes[0] = Node{LeftFirst: 0, PrimitiveCount: int32(count)}
	b.computeAABB(0)
	return true
}

// Compute the bounding box of a leaf node from its primitives.
func (b *builder) computeAABB(nodeIndex int32) {
	node := &b.nodes[nodeIndex]
	node.AABB = types.EmptyBounds()
	first, last := node.PrimitiveRange()
	for i := first; i < last; i++ {
		node.AABB = node.AABB.Extend(b.bounds[b.indices[i]])
	}
}

// Attempt to split a leaf node into two children and recurse into them.
// Nodes are addressed by index as appending children may move the node list.
func (b *builder) subdivide(nodeIndex int32, depth int) {
	b.stats.Nodes++
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	node := b.nodes[nodeIndex]
	if b.noSplit || int(node.PrimitiveCount) <= b.maxLeafSize {
		b.stats.Leaves++
		return
	}

	best := b.findBestSplit(&node)

	// Only split if the split is cheaper than keeping the node as a leaf
	parentCost := node.AABB.SurfaceArea() * float32(node.PrimitiveCount)
	if !best.ok || !(best.cost < parentCost) {
		b.stats.Leaves++
		return
	}

	firstRight := b.partition(&node, best.axis, best.position)
	leftCount := firstRight - node.LeftFirst
	rightCount := node.PrimitiveCount - leftCount

	// The binned estimate may disagree with the exact partition
	if leftCount == 0 || rightCount == 0 {
		b.stats.Leaves++
		return
	}

	// Children are always stored next to each other
	leftIndex := int32(len(b.nodes))
	rightIndex := leftIndex + 1
	b.nodes = append(b.nodes,
		Node{LeftFirst: node.LeftFirst, PrimitiveCount: leftCount},
		Node{LeftFirst: firstRight, PrimitiveCount: rightCount},
	)

	// Convert the parent into an internal node
	b.nodes[nodeIndex].PrimitiveCount = 0
	b.nodes[nodeIndex].LeftFirst = leftIndex

	b.computeAABB(leftIndex)
	b.subdivide(leftIndex, depth+1)
	b.computeAABB(rightIndex)
	b.subdivide(rightIndex, depth+1)
}

// Reorder the primitive indices of node so that primitives with a centroid
// below position along axis come first. Returns the first index of the right
// partition.
func (b *builder) partition(node *Node, axis int, position float32) int32 {
	firstRight, lastLeft := node.LeftFirst, node.LeftFirst+node.PrimitiveCount-1
	for firstRight <= lastLeft {
		if b.centroids[b.indices[firstRight]][axis] < position {
			firstRight++
		} else {
			b.indices[firstRight], b.indices[lastLeft] = b.indices[lastLeft], b.indices[firstRight]
			lastLeft--
		}
	}
	return firstRight
}
