package shape

import (
	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/types"
)

// An Instance places a shape in the world. Several instances may share the
// same shape.
type Instance struct {
	Shape Shape

	// Local to world transformation. A nil transform places the shape as-is.
	Transform *types.Transform

	// Optional opacity mask passed down to the shape's hit tests.
	Alpha accel.AlphaMask

	// Flip the orientation of the reported shading frame.
	FlipNormal bool
}

// Create an instance of shape with an optional transformation.
func NewInstance(shape Shape, transform *types.Transform) *Instance {
	return &Instance{Shape: shape, Transform: transform}
}

// Intersect a world space ray with the instance. The ray is moved into the
// local space of the shape; hit distances are converted back so that its.T
// always refers to the world space ray.
func (inst *Instance) Intersect(ray types.Ray, its *accel.Intersection, rng accel.Sampler) bool {
	prevAlpha := its.AlphaMask
	its.AlphaMask = inst.Alpha
	defer func() { its.AlphaMask = prevAlpha }()

	if inst.Transform == nil {
		if !inst.Shape.Intersect(ray, its, rng) {
			return false
		}
		its.Shape = inst
		if inst.FlipNormal {
			its.Frame = flipFrame(its.Frame)
		}
		return true
	}

	prevT := its.T
	localRay := inst.Transform.InverseRay(ray)
	localLen := localRay.Direction.Len()
	if localLen == 0 {
		return false
	}
	its.T *= localLen
	localRay.Direction = localRay.Direction.Mul(1 / localLen)

	if !inst.Shape.Intersect(localRay, its, rng) {
		its.T = prevT
		return false
	}

	its.Shape = inst
	inst.transformFrame(its)
	its.T = its.Position.Sub(ray.Origin).Len() / ray.Direction.Len()
	return true
}

// Move the hit position and shading frame of its from local to world space.
// The area pdf is scaled by the change in surface area.
func (inst *Instance) transformFrame(its *accel.Intersection) {
	frame := its.Frame
	oldArea := frame.Tangent.Cross(frame.Bitangent).Len()

	its.Position = inst.Transform.Apply(its.Position)
	tangent := inst.Transform.ApplyVector(frame.Tangent)
	bitangent := inst.Transform.ApplyVector(frame.Bitangent)

	if newArea := tangent.Cross(bitangent).Len(); newArea > 0 {
		its.Pdf *= oldArea / newArea
	}

	if inst.FlipNormal {
		bitangent = bitangent.Neg()
	}

	tangent = tangent.Normalize()
	normal := tangent.Cross(bitangent.Normalize()).Normalize()
	its.Frame = types.Frame{
		Tangent:   tangent,
		Bitangent: normal.Cross(tangent).Normalize(),
		Normal:    normal,
	}
}

func flipFrame(f types.Frame) types.Frame {
	return types.Frame{
		Tangent:   f.Tangent,
		Bitangent: f.Bitangent.Neg(),
		Normal:    f.Normal.Neg(),
	}
}

// Get the world space bounding box of the instance. The box is computed by
// transforming the eight corners of the shape's local box; unbounded shapes
// remain unbounded.
func (inst *Instance) BoundingBox() types.Bounds {
	local := inst.Shape.BoundingBox()
	if inst.Transform == nil || local.IsEmpty() {
		return local
	}
	if local.IsUnbounded() {
		return types.FullBounds()
	}

	world := types.EmptyBounds()
	for i := 0; i < 8; i++ {
		world = world.ExtendPoint(inst.Transform.Apply(local.Corner(i)))
	}
	return world
}

func (inst *Instance) Centroid() types.Vec3 {
	if inst.Transform == nil {
		return inst.Shape.Centroid()
	}
	return inst.Transform.Apply(inst.Shape.Centroid())
}
