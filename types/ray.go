package types

// A ray with an origin and a direction. The direction is usually but not
// necessarily normalized.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// Create a new ray.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Direction: dir}
}

// Get the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Get a copy of the ray with a normalized direction.
func (r Ray) Normalized() Ray {
	return Ray{Origin: r.Origin, Direction: r.Direction.Normalize()}
}

// An orthonormal shading frame.
type Frame struct {
	Tangent   Vec3
	Bitangent Vec3
	Normal    Vec3
}

// Build an orthonormal frame around a (normalized) normal vector.
//
// Uses the branchless construction from Duff et al. "Building an Orthonormal
// Basis, Revisited".
func NewFrame(normal Vec3) Frame {
	var sign float32 = 1.0
	if normal[2] < 0 {
		sign = -1.0
	}
	a := -1.0 / (sign + normal[2])
	b := normal[0] * normal[1] * a
	return Frame{
		Tangent:   Vec3{1 + sign*normal[0]*normal[0]*a, sign * b, -sign * normal[0]},
		Bitangent: Vec3{b, sign + normal[1]*normal[1]*a, -normal[1]},
		Normal:    normal,
	}
}
