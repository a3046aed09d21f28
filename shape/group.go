package shape

import (
	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/types"
)

// A Group combines several shapes under a single BVH. Groups may be nested
// but every group builds its own independent tree.
type Group struct {
	shapes []Shape
	bvh    *accel.BVH
}

// Create a group and build a BVH over its shapes.
func NewGroup(shapes []Shape, opts ...accel.Option) *Group {
	g := &Group{shapes: shapes}
	g.bvh = accel.Build(g, opts...)
	return g
}

func (g *Group) PrimitiveCount() int {
	return len(g.shapes)
}

func (g *Group) IntersectPrimitive(index int, ray types.Ray, its *accel.Intersection, rng accel.Sampler) bool {
	return g.shapes[index].Intersect(ray, its, rng)
}

func (g *Group) PrimitiveBounds(index int) types.Bounds {
	return g.shapes[index].BoundingBox()
}

func (g *Group) PrimitiveCentroid(index int) types.Vec3 {
	return g.shapes[index].Centroid()
}

func (g *Group) Intersect(ray types.Ray, its *accel.Intersection, rng accel.Sampler) bool {
	return g.bvh.Intersect(ray, its, rng)
}

func (g *Group) BoundingBox() types.Bounds {
	return g.bvh.BoundingBox()
}

func (g *Group) Centroid() types.Vec3 {
	return g.bvh.Centroid()
}

// Get the shapes in the group.
func (g *Group) Shapes() []Shape {
	return g.shapes
}

// Get the BVH built over the group members.
func (g *Group) BVH() *accel.BVH {
	return g.bvh
}
