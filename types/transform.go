package types

// Transform pairs an affine (or projective) matrix with its inverse so that
// both directions can be applied without re-inverting.
type Transform struct {
	m   Mat4
	inv Mat4
}

// Create an identity transform.
func IdentityTransform() *Transform {
	return &Transform{m: Ident4(), inv: Ident4()}
}

// Create a transform from a matrix. The inverse is calculated once.
func NewTransform(m Mat4) *Transform {
	return &Transform{m: m, inv: m.Inv()}
}

// Append a translation applied after the existing transformation.
func (t *Transform) Translate(v Vec3) *Transform {
	return t.then(Translate4(v), Translate4(v.Neg()))
}

// Append a scale applied after the existing transformation.
func (t *Transform) Scale(s Vec3) *Transform {
	return t.then(Scale4(s), Scale4(Vec3{1 / s[0], 1 / s[1], 1 / s[2]}))
}

// Append a rotation applied after the existing transformation.
func (t *Transform) Rotate(q Quat) *Transform {
	q = q.Normalize()
	return t.then(q.Mat4(), q.Inverse().Mat4())
}

// Append an arbitrary matrix applied after the existing transformation.
func (t *Transform) Matrix(m Mat4) *Transform {
	return t.then(m, m.Inv())
}

func (t *Transform) then(m, inv Mat4) *Transform {
	return &Transform{
		m:   m.Mul4(t.m),
		inv: t.inv.Mul4(inv),
	}
}

// Get the forward transformation matrix.
func (t *Transform) Mat4() Mat4 {
	return t.m
}

// Transform a point.
func (t *Transform) Apply(p Vec3) Vec3 {
	return t.m.MulPoint(p)
}

// Transform a direction vector.
func (t *Transform) ApplyVector(v Vec3) Vec3 {
	return t.m.MulVector(v)
}

// Transform a surface normal using the inverse transpose.
func (t *Transform) ApplyNormal(n Vec3) Vec3 {
	return t.inv.Transpose().MulVector(n)
}

// Transform a world-space ray into the local space of this transform. The
// returned direction is not normalized.
func (t *Transform) InverseRay(r Ray) Ray {
	return Ray{
		Origin:    t.inv.MulPoint(r.Origin),
		Direction: t.inv.MulVector(r.Direction),
	}
}
