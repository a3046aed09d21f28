package accel

import "github.com/achilleasa/prism/types"

// A bin groups the primitives whose centroids fall within one slice of the
// centroid range along the axis being evaluated.
type bin struct {
	bounds types.Bounds
	count  int32
}

// A split candidate. The zero value (ok == false) signals that no usable
// split exists.
type split struct {
	axis     int
	position float32
	cost     float32
	ok       bool
}

// Get the min and max centroid coordinates along axis for the primitives of a node.
func (b *builder) centroidRange(node *Node, axis int) (float32, float32) {
	minBound := types.Infinity
	maxBound := -types.Infinity

	first, last := node.PrimitiveRange()
	for i := first; i < last; i++ {
		c := b.centroids[b.indices[i]][axis]
		if c < minBound {
			minBound = c
		}
		if c > maxBound {
			maxBound = c
		}
	}

	return minBound, maxBound
}

// Find the split plane with the lowest binned SAH cost:
//
// cost = leftCount * leftArea + rightCount * rightArea
//
// Each axis is evaluated separately. The centroid range of the node is
// divided into binCount bins; every primitive is assigned to a bin by its
// centroid, so all binCount-1 split planes can be scored with one pass over
// the primitives plus a prefix and a suffix sweep over the bins.
//
// Axes where all centroids coincide are skipped. If that holds for every axis
// the node cannot be split. Ties keep the first candidate found (lowest axis,
// then lowest plane).
func (b *builder) findBestSplit(node *Node) split {
	result := split{cost: types.Infinity}
	n := b.binCount
	first, last := node.PrimitiveRange()

	for axis := 0; axis < 3; axis++ {
		minBound, maxBound := b.centroidRange(node, axis)
		if minBound == maxBound {
			continue
		}

		for i := range b.bins {
			b.bins[i] = bin{bounds: types.EmptyBounds()}
		}

		// Populate the bins
		scale := float32(n) / (maxBound - minBound)
		for i := first; i < last; i++ {
			primIndex := b.indices[i]
			binIndex := int((b.centroids[primIndex][axis] - minBound) * scale)
			if binIndex > n-1 {
				binIndex = n - 1
			} else if binIndex < 0 {
				binIndex = 0
			}
			b.bins[binIndex].count++
			b.bins[binIndex].bounds = b.bins[binIndex].bounds.Extend(b.bounds[primIndex])
		}

		// Accumulate counts and areas left and right of each split plane
		leftBounds, rightBounds := types.EmptyBounds(), types.EmptyBounds()
		var leftTotal, rightTotal int32
		for i := 0; i < n-1; i++ {
			leftTotal += b.bins[i].count
			leftBounds = leftBounds.Extend(b.bins[i].bounds)
			b.leftCounts[i] = leftTotal
			b.leftAreas[i] = leftBounds.SurfaceArea()

			rightTotal += b.bins[n-1-i].count
			rightBounds = rightBounds.Extend(b.bins[n-1-i].bounds)
			b.rightCounts[n-2-i] = rightTotal
			b.rightAreas[n-2-i] = rightBounds.SurfaceArea()
		}

		binSize := (maxBound - minBound) / float32(n)
		for i := 0; i < n-1; i++ {
			cost := float32(b.leftCounts[i])*b.leftAreas[i] + float32(b.rightCounts[i])*b.rightAreas[i]
			if cost < result.cost {
				result = split{
					axis:     axis,
					position: minBound + binSize*float32(i+1),
					cost:     cost,
					ok:       true,
				}
			}
		}
	}

	return result
}
