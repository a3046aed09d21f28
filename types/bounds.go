package types

import (
	"fmt"
	"math"
)

var (
	// Infinity is used as the "no hit" distance.
	Infinity = float32(math.Inf(1))
)

const (
	// Intersections closer than Epsilon are rejected to avoid self-intersections.
	Epsilon float32 = 1e-4
)

// Bounds is an axis aligned bounding box.
type Bounds struct {
	Min Vec3
	Max Vec3
}

// Create a bounding box from its min and max corners.
func NewBounds(min, max Vec3) Bounds {
	return Bounds{Min: min, Max: max}
}

// Create an empty bounding box. Extending an empty box with any other box or
// point yields that box or point.
func EmptyBounds() Bounds {
	return Bounds{
		Min: Splat(Infinity),
		Max: Splat(-Infinity),
	}
}

// Create an unbounded box that covers all of space.
func FullBounds() Bounds {
	return Bounds{
		Min: Splat(-Infinity),
		Max: Splat(Infinity),
	}
}

// Grow the box so that it also encloses other.
func (b Bounds) Extend(other Bounds) Bounds {
	return Bounds{
		Min: MinVec3(b.Min, other.Min),
		Max: MaxVec3(b.Max, other.Max),
	}
}

// Grow the box so that it also encloses point p.
func (b Bounds) ExtendPoint(p Vec3) Bounds {
	return Bounds{
		Min: MinVec3(b.Min, p),
		Max: MaxVec3(b.Max, p),
	}
}

// Get the extent of the box along each axis.
func (b Bounds) Diagonal() Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the box center.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Calculate the box surface area. Empty boxes have zero area.
func (b Bounds) SurfaceArea() float32 {
	if b.IsEmpty() {
		return 0
	}
	d := b.Diagonal()
	return 2 * (d[0]*d[1] + d[0]*d[2] + d[1]*d[2])
}

// Returns true if min > max along any axis.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Returns true if the box extends to infinity along any axis.
func (b Bounds) IsUnbounded() bool {
	for axis := 0; axis < 3; axis++ {
		if math.IsInf(float64(b.Min[axis]), -1) || math.IsInf(float64(b.Max[axis]), 1) {
			return true
		}
	}
	return false
}

// Returns true if other lies entirely inside this box. An empty box is
// contained by any box.
func (b Bounds) Contains(other Bounds) bool {
	if other.IsEmpty() {
		return true
	}
	for axis := 0; axis < 3; axis++ {
		if other.Min[axis] < b.Min[axis] || other.Max[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Returns true if p lies inside the box or on its boundary.
func (b Bounds) ContainsPoint(p Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < b.Min[axis] || p[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Get one of the 8 box corners. Bit n of index selects the max extent for axis n.
func (b Bounds) Corner(index int) Vec3 {
	p := b.Min
	for axis := 0; axis < 3; axis++ {
		if (index>>uint(axis))&1 != 0 {
			p[axis] = b.Max[axis]
		}
	}
	return p
}

func (b Bounds) String() string {
	return fmt.Sprintf("[(%g, %g, %g) - (%g, %g, %g)]", b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}
