package shape

import (
	"fmt"

	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/types"
)

// Triangles whose determinant falls below this value are treated as parallel
// to the ray.
const parallelEpsilon = 1e-9

// A mesh vertex.
type Vertex struct {
	Position types.Vec3
	Normal   types.Vec3
	UV       types.Vec2
}

// A TriangleMesh is a collection of triangles sharing a vertex buffer. The
// mesh owns a BVH over its triangles that is built when the mesh is created.
type TriangleMesh struct {
	Name string

	Vertices  []Vertex
	Triangles [][3]int32

	// Interpolate vertex normals instead of reporting the geometric normal.
	SmoothNormals bool

	area float32
	bvh  *accel.BVH
}

// Create a mesh and build its BVH.
func NewTriangleMesh(name string, vertices []Vertex, triangles [][3]int32, smooth bool, opts ...accel.Option) *TriangleMesh {
	m := &TriangleMesh{
		Name:          name,
		Vertices:      vertices,
		Triangles:     triangles,
		SmoothNormals: smooth,
	}

	for i := range triangles {
		p0, p1, p2 := m.corners(i)
		m.area += 0.5 * p1.Sub(p0).Cross(p2.Sub(p0)).Len()
	}

	m.bvh = accel.Build(m, opts...)
	return m
}

func (m *TriangleMesh) corners(index int) (types.Vec3, types.Vec3, types.Vec3) {
	tri := m.Triangles[index]
	return m.Vertices[tri[0]].Position, m.Vertices[tri[1]].Position, m.Vertices[tri[2]].Position
}

func (m *TriangleMesh) PrimitiveCount() int {
	return len(m.Triangles)
}

func (m *TriangleMesh) PrimitiveBounds(index int) types.Bounds {
	p0, p1, p2 := m.corners(index)
	return types.NewBounds(p0, p0).ExtendPoint(p1).ExtendPoint(p2)
}

func (m *TriangleMesh) PrimitiveCentroid(index int) types.Vec3 {
	p0, p1, p2 := m.corners(index)
	return p0.Add(p1).Add(p2).Mul(1.0 / 3.0)
}

// Intersect a single triangle using the Möller-Trumbore algorithm.
func (m *TriangleMesh) IntersectPrimitive(index int, ray types.Ray, its *accel.Intersection, rng accel.Sampler) bool {
	p0, p1, p2 := m.corners(index)
	edge1 := p1.Sub(p0)
	edge2 := p2.Sub(p0)

	pVec := ray.Direction.Cross(edge2)
	det := edge1.Dot(pVec)
	if det > -parallelEpsilon && det < parallelEpsilon {
		return false
	}
	invDet := 1.0 / det

	tVec := ray.Origin.Sub(p0)
	u := tVec.Dot(pVec) * invDet
	if u < 0 || u > 1 {
		return false
	}

	qVec := tVec.Cross(edge1)
	v := ray.Direction.Dot(qVec) * invDet
	if v < 0 || u+v > 1 {
		return false
	}

	t := edge2.Dot(qVec) * invDet
	if t < types.Epsilon || t > its.T {
		return false
	}

	tri := m.Triangles[index]
	v0, v1, v2 := &m.Vertices[tri[0]], &m.Vertices[tri[1]], &m.Vertices[tri[2]]
	w := 1 - u - v

	uv := v0.UV.Mul(w).Add(v1.UV.Mul(u)).Add(v2.UV.Mul(v))
	if !opaqueAt(its, uv, rng) {
		return false
	}

	normal := edge1.Cross(edge2).Normalize()
	if m.SmoothNormals {
		if n := v0.Normal.Mul(w).Add(v1.Normal.Mul(u)).Add(v2.Normal.Mul(v)); n.Len() > 0 {
			normal = n.Normalize()
		}
	}

	its.T = t
	its.Position = p0.Mul(w).Add(p1.Mul(u)).Add(p2.Mul(v))
	its.Frame = types.NewFrame(normal)
	its.UV = uv
	its.PrimitiveIndex = index
	its.Shape = m
	if m.area > 0 {
		its.Pdf = 1 / m.area
	}
	return true
}

func (m *TriangleMesh) Intersect(ray types.Ray, its *accel.Intersection, rng accel.Sampler) bool {
	return m.bvh.Intersect(ray, its, rng)
}

func (m *TriangleMesh) BoundingBox() types.Bounds {
	return m.bvh.BoundingBox()
}

func (m *TriangleMesh) Centroid() types.Vec3 {
	return m.bvh.Centroid()
}

// Get the BVH built over the mesh triangles.
func (m *TriangleMesh) BVH() *accel.BVH {
	return m.bvh
}

// Get the total surface area of the mesh.
func (m *TriangleMesh) Area() float32 {
	return m.area
}

func (m *TriangleMesh) String() string {
	return fmt.Sprintf("Mesh[name: %q, vertices: %d, triangles: %d]", m.Name, len(m.Vertices), len(m.Triangles))
}
