package accel

import (
	"reflect"
	"testing"

	"github.com/achilleasa/prism/types"
)

func TestFindBestSplit(t *testing.T) {
	type spec struct {
		boxes       boxList
		expOk       bool
		expAxis     int
		expPosition float32
		expCost     float32
	}
	specs := []spec{
		// Four unit boxes in a row; the cheapest split is 2|2 and the
		// first plane that separates them is chosen.
		{
			boxList{
				unitBox(types.XYZ(0, 0, 0), 1),
				unitBox(types.XYZ(1, 0, 0), 1),
				unitBox(types.XYZ(2, 0, 0), 1),
				unitBox(types.XYZ(3, 0, 0), 1),
			},
			true, 0, 1.625, 40,
		},
		// A 2x2 grid has equal costs along x and y; the lowest axis wins.
		{
			boxList{
				unitBox(types.XYZ(0, 0, 0), 1),
				unitBox(types.XYZ(3, 0, 0), 1),
				unitBox(types.XYZ(0, 3, 0), 1),
				unitBox(types.XYZ(3, 3, 0), 1),
			},
			true, 0, 0.6875, 72,
		},
		// Same as above but stacked along z
		{
			boxList{
				unitBox(types.XYZ(0, 0, 0), 1),
				unitBox(types.XYZ(0, 0, 1), 1),
				unitBox(types.XYZ(0, 0, 2), 1),
				unitBox(types.XYZ(0, 0, 3), 1),
			},
			true, 2, 1.625, 40,
		},
		// Flat boxes with centroids on the z=0 plane; only the x axis
		// spreads the centroids so y and z are skipped.
		{
			boxList{
				types.NewBounds(types.XYZ(0, 0, 0), types.XYZ(1, 1, 0)),
				types.NewBounds(types.XYZ(1, 0, 0), types.XYZ(2, 1, 0)),
				types.NewBounds(types.XYZ(2, 0, 0), types.XYZ(3, 1, 0)),
				types.NewBounds(types.XYZ(3, 0, 0), types.XYZ(4, 1, 0)),
			},
			true, 0, 1.625, 16,
		},
		// Coincident centroids cannot be split along any axis
		{
			boxList{
				unitBox(types.XYZ(0, 0, 0), 1),
				unitBox(types.XYZ(0, 0, 0), 1),
				types.NewBounds(types.XYZ(-1, -1, -1), types.XYZ(2, 2, 2)),
			},
			false, 0, 0, 0,
		},
	}

	for idx, s := range specs {
		b := newBuilder(s.boxes)
		if !b.prepare() {
			t.Fatalf("[spec %d] expected prepare to succeed", idx)
		}

		best := b.findBestSplit(&b.nodes[0])
		if best.ok != s.expOk {
			t.Fatalf("[spec %d] expected split ok to be %t; got %t", idx, s.expOk, best.ok)
		}
		if !s.expOk {
			continue
		}
		if best.axis != s.expAxis {
			t.Fatalf("[spec %d] expected split axis %d; got %d", idx, s.expAxis, best.axis)
		}
		if best.position != s.expPosition {
			t.Fatalf("[spec %d] expected split position %f; got %f", idx, s.expPosition, best.position)
		}
		if best.cost != s.expCost {
			t.Fatalf("[spec %d] expected split cost %f; got %f", idx, s.expCost, best.cost)
		}
	}
}

func TestPartition(t *testing.T) {
	boxes := boxList{
		unitBox(types.XYZ(5, 0, 0), 1),
		unitBox(types.XYZ(0, 0, 0), 1),
		unitBox(types.XYZ(6, 0, 0), 1),
		unitBox(types.XYZ(1, 0, 0), 1),
		unitBox(types.XYZ(2, 0, 0), 1),
	}
	b := newBuilder(boxes)
	b.prepare()

	firstRight := b.partition(&b.nodes[0], 0, 4)
	if firstRight != 3 {
		t.Fatalf("expected right partition to start at 3; got %d", firstRight)
	}
	for i, primIndex := range b.indices {
		left := b.centroids[primIndex][0] < 4
		if left != (int32(i) < firstRight) {
			t.Fatalf("primitive %d with centroid %v ended up in the wrong partition", primIndex, b.centroids[primIndex])
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	tree := Build(boxList{})

	if len(tree.Nodes()) != 0 {
		t.Fatalf("expected empty tree to have no nodes; got %d", len(tree.Nodes()))
	}
	if len(tree.Indices()) != 0 {
		t.Fatalf("expected empty tree to have no indices; got %d", len(tree.Indices()))
	}
	if !tree.BoundingBox().IsEmpty() {
		t.Fatalf("expected empty tree to have empty bounds; got %v", tree.BoundingBox())
	}
	if err := tree.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestBuildSeparatesClusters(t *testing.T) {
	boxes := boxList{
		unitBox(types.XYZ(100, 0, 0), 0.5),
		unitBox(types.XYZ(0, 0, 0), 0.5),
		unitBox(types.XYZ(100.1, 2, 0), 0.5),
		unitBox(types.XYZ(0.1, 2, 0), 0.5),
		unitBox(types.XYZ(-0.1, 4, 0), 0.5),
	}
	tree := Build(boxes)
	if err := tree.Validate(); err != nil {
		t.Fatal(err)
	}

	nodes := tree.Nodes()
	root := nodes[0]
	if root.IsLeaf() {
		t.Fatal("expected root node to be split")
	}

	// Collect the primitives below each root child
	var collect func(nodeIndex int32) []int
	collect = func(nodeIndex int32) []int {
		node := nodes[nodeIndex]
		if !node.IsLeaf() {
			return append(collect(node.LeftChild()), collect(node.RightChild())...)
		}
		var out []int
		first, last := node.PrimitiveRange()
		for i := first; i < last; i++ {
			out = append(out, int(tree.Indices()[i]))
		}
		return out
	}

	left, right := collect(root.LeftChild()), collect(root.RightChild())
	if len(left) != 3 || len(right) != 2 {
		t.Fatalf("expected a 3|2 split at the root; got %v|%v", left, right)
	}
	for _, primIndex := range left {
		if boxes[primIndex].Min[0] > 50 {
			t.Fatalf("expected left child to only contain the x=0 cluster; got %v", left)
		}
	}
	for _, primIndex := range right {
		if boxes[primIndex].Min[0] < 50 {
			t.Fatalf("expected right child to only contain the x=100 cluster; got %v", right)
		}
	}

	// A ray aimed at the far cluster should not touch the near one
	ray := types.NewRay(types.XYZ(100.25, 0.25, -10), types.XYZ(0, 0, 1))
	its := NewIntersection()
	if !tree.Intersect(ray, &its, nil) {
		t.Fatal("expected ray to hit the x=100 cluster")
	}
	if its.PrimitiveIndex != 0 {
		t.Fatalf("expected ray to hit primitive 0; got %d", its.PrimitiveIndex)
	}
	if its.Stats.PrimitiveTests != 2 {
		t.Fatalf("expected 2 primitive tests; got %d", its.Stats.PrimitiveTests)
	}
}

func TestBuildLeafSize(t *testing.T) {
	rng := newRand(7)
	boxes := randomBoxes(rng, 200)

	type spec struct {
		maxLeafSize int
	}
	specs := []spec{{1}, {2}, {4}, {16}}

	for idx, s := range specs {
		tree := Build(boxes, WithMaxLeafSize(s.maxLeafSize))
		if err := tree.Validate(); err != nil {
			t.Fatalf("[spec %d] %v", idx, err)
		}

		// Leafs above the threshold are only produced when no split pays off
		stats := tree.TreeStats()
		if stats.Leaves < 2 {
			t.Fatalf("[spec %d] expected tree to be split; got %d leafs", idx, stats.Leaves)
		}
		if stats.Primitives != len(boxes) {
			t.Fatalf("[spec %d] expected stats to count %d primitives; got %d", idx, len(boxes), stats.Primitives)
		}
		if stats.Nodes != 2*stats.Leaves-1 {
			t.Fatalf("[spec %d] expected %d nodes for %d leafs; got %d", idx, 2*stats.Leaves-1, stats.Leaves, stats.Nodes)
		}
	}
}

func TestBuildSmallCollections(t *testing.T) {
	for count := 1; count <= 2; count++ {
		tree := Build(randomBoxes(newRand(uint64(count)), count))
		if len(tree.Nodes()) != 1 {
			t.Fatalf("expected a single leaf for %d primitives; got %d nodes", count, len(tree.Nodes()))
		}
		if !tree.Nodes()[0].IsLeaf() {
			t.Fatalf("expected root to be a leaf for %d primitives", count)
		}
	}
}

func TestBuildCoincidentCentroids(t *testing.T) {
	boxes := make(boxList, 10)
	for i := range boxes {
		half := types.Splat(float32(i + 1))
		boxes[i] = types.NewBounds(half.Neg(), half)
	}

	tree := Build(boxes)
	if len(tree.Nodes()) != 1 {
		t.Fatalf("expected a single leaf node; got %d nodes", len(tree.Nodes()))
	}
	if got := tree.Nodes()[0].PrimitiveCount; got != 10 {
		t.Fatalf("expected leaf to hold 10 primitives; got %d", got)
	}
	if err := tree.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestBuildWithoutSplitting(t *testing.T) {
	boxes := randomBoxes(newRand(3), 50)
	tree := Build(boxes, WithoutSplitting())

	if len(tree.Nodes()) != 1 {
		t.Fatalf("expected a single leaf node; got %d nodes", len(tree.Nodes()))
	}
	if err := tree.Validate(); err != nil {
		t.Fatal(err)
	}

	stats := tree.BuildStats()
	if stats.Leaves != 1 || stats.MaxDepth != 0 || stats.Primitives != 50 {
		t.Fatalf("unexpected build stats %+v", stats)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	boxes := randomBoxes(newRand(42), 500)

	tree1 := Build(boxes)
	tree2 := Build(boxes)
	if !reflect.DeepEqual(tree1.Nodes(), tree2.Nodes()) {
		t.Fatal("expected two builds over the same input to produce identical nodes")
	}
	if !reflect.DeepEqual(tree1.Indices(), tree2.Indices()) {
		t.Fatal("expected two builds over the same input to produce identical indices")
	}
}

func TestBuildBinCount(t *testing.T) {
	boxes := randomBoxes(newRand(11), 300)

	for _, binCount := range []int{2, 4, 16, 64} {
		tree := Build(boxes, WithBinCount(binCount))
		if err := tree.Validate(); err != nil {
			t.Fatalf("bins=%d: %v", binCount, err)
		}
	}
}

func TestTreeStats(t *testing.T) {
	boxes := boxList{
		unitBox(types.XYZ(0, 0, 0), 1),
		unitBox(types.XYZ(1, 0, 0), 1),
		unitBox(types.XYZ(2, 0, 0), 1),
		unitBox(types.XYZ(3, 0, 0), 1),
	}
	tree := Build(boxes)
	stats := tree.TreeStats()

	if stats.Nodes != 3 || stats.InternalNodes != 1 || stats.Leaves != 2 {
		t.Fatalf("expected 3 nodes, 1 internal node and 2 leafs; got %+v", stats)
	}
	if stats.MaxDepth != 1 || stats.AvgLeafDepth != 1 {
		t.Fatalf("expected all leafs at depth 1; got %+v", stats)
	}
	if stats.MinLeafSize != 2 || stats.MaxLeafSize != 2 || stats.AvgLeafSize != 2 {
		t.Fatalf("expected all leafs to hold 2 primitives; got %+v", stats)
	}

	// root area 18; two 2x1x1 leafs with area 10 each
	expCost := (18.0 + 2*10 + 2*10) / 18.0
	if d := stats.SAHCost - expCost; d > 1e-6 || d < -1e-6 {
		t.Fatalf("expected SAH cost %f; got %f", expCost, stats.SAHCost)
	}

	build := tree.BuildStats()
	if build.Nodes != stats.Nodes || build.Leaves != stats.Leaves || build.MaxDepth != stats.MaxDepth {
		t.Fatalf("expected build stats %+v to agree with tree stats %+v", build, stats)
	}
}
