package shape

import (
	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/types"
)

// Rectangle is the square [-1,-1,0] - [1,1,0] lying on the xy plane and
// facing +z.
type Rectangle struct{}

func (r Rectangle) Intersect(ray types.Ray, its *accel.Intersection, rng accel.Sampler) bool {
	// Rays travelling inside the plane never hit it
	if ray.Direction[2] == 0 {
		return false
	}

	t := -ray.Origin[2] / ray.Direction[2]
	if t < types.Epsilon || t > its.T {
		return false
	}

	position := ray.At(t)
	if position[0] < -1 || position[0] > 1 || position[1] < -1 || position[1] > 1 {
		return false
	}

	uv := types.XY((position[0]+1)*0.5, (position[1]+1)*0.5)
	if !opaqueAt(its, uv, rng) {
		return false
	}

	its.T = t
	its.Position = types.XYZ(position[0], position[1], 0)
	its.Frame = types.Frame{
		Tangent:   types.XYZ(1, 0, 0),
		Bitangent: types.XYZ(0, 1, 0),
		Normal:    types.XYZ(0, 0, 1),
	}
	its.UV = uv
	its.Pdf = 0.25
	its.Shape = r
	return true
}

func (r Rectangle) BoundingBox() types.Bounds {
	return types.NewBounds(types.XYZ(-1, -1, 0), types.XYZ(1, 1, 0))
}

func (r Rectangle) Centroid() types.Vec3 {
	return types.Vec3{}
}
