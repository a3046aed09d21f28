package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/prism/types"
)

const (
	// The FOV used when a scene does not define one.
	DefaultFOV float32 = 45

	nearPlane float32 = 1
	farPlane  float32 = 1000
)

// Stores the ray directions at the four corners of the camera frustum in the
// order top-left, top-right, bottom-left, bottom-right. Per pixel rays are
// generated by interpolating the corner rays.
type Frustum [4]types.Vec3

func (fr Frustum) String() string {
	return fmt.Sprintf(
		"Frustum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// A pinhole camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Pending rotation (in radians) that is applied by the next call to
	// Update.
	Pitch float32
	Yaw   float32

	// Vertical field of view in degrees.
	FOV float32

	ViewMat types.Mat4
	ProjMat types.Mat4
	Frustum Frustum
	aspect  float32
}

// Create a camera at the origin looking down the -Z axis.
func NewCamera(fov float32) *Camera {
	if fov <= 0 {
		fov = DefaultFOV
	}
	return &Camera{
		ViewMat:  types.Ident4(),
		ProjMat:  types.Ident4(),
		Position: types.XYZ(0, 0, 0),
		LookAt:   types.XYZ(0, 0, -1),
		Up:       types.XYZ(0, 1, 0),
		FOV:      fov,
		aspect:   1,
	}
}

// Setup the camera projection matrix for a frame with the given aspect ratio
// and update the frustum.
func (c *Camera) SetupProjection(aspect float32) {
	c.aspect = aspect
	fovy := c.FOV * math.Pi / 180
	c.ProjMat = types.Perspective4(fovy, aspect, nearPlane, farPlane)
	c.Update()
}

// Apply any pending rotation and recalculate the view matrix and frustum.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()
	if c.Pitch != 0 || c.Yaw != 0 {
		pitchQuat := types.QuatFromAxisAngle(dir.Cross(c.Up), c.Pitch)
		yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)
		dir = pitchQuat.Mul(yawQuat).Normalize().Rotate(dir)
		c.LookAt = c.Position.Add(dir)
		c.Pitch, c.Yaw = 0, 0
	}

	c.ViewMat = types.LookAtV(c.Position, c.LookAt, c.Up)
	c.updateFrustum()
}

// Get the inverse of the combined projection and view matrix.
func (c *Camera) InvViewProjMat() types.Mat4 {
	return c.ProjMat.Mul4(c.ViewMat).Inv()
}

// Generate a ray vector for each corner of the camera frustum by multiplying
// clip space vectors for each corner with the inverse proj/view matrix,
// applying perspective and subtracting the camera eye position.
func (c *Camera) updateFrustum() {
	invProjViewMat := c.InvViewProjMat()
	corners := [4][2]float32{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}}
	for i, corner := range corners {
		v := invProjViewMat.Mul4x1(types.XYZW(corner[0], corner[1], -1, 1))
		c.Frustum[i] = v.Mul(1.0 / v[3]).Vec3().Sub(c.Position)
	}
}

// Generate a primary ray through the image plane point (u, v); (0, 0) is the
// top-left and (1, 1) the bottom-right corner of the frame.
func (c *Camera) Ray(u, v float32) types.Ray {
	top := lerp(c.Frustum[0], c.Frustum[1], u)
	bottom := lerp(c.Frustum[2], c.Frustum[3], u)
	return types.NewRay(c.Position, lerp(top, bottom, v).Normalize())
}

// Get the aspect ratio used for the last projection setup.
func (c *Camera) Aspect() float32 {
	return c.aspect
}

func (c *Camera) String() string {
	return fmt.Sprintf("Camera[eye: %v, look: %v, up: %v, fov: %.1f]", c.Position, c.LookAt, c.Up, c.FOV)
}

func lerp(a, b types.Vec3, t float32) types.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}
