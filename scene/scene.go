package scene

import (
	"math"

	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/shape"
	"github.com/achilleasa/prism/types"
)

// A Scene is an immutable collection of meshes placed in the world plus the
// camera that views them.
type Scene struct {
	Camera *Camera

	// The unique meshes loaded for this scene.
	Meshes []*shape.TriangleMesh

	// The top level shape (usually a group of mesh instances).
	Root shape.Shape
}

// Stats summarize the scene contents.
type Stats struct {
	Meshes    int
	Instances int
	Triangles int
	Vertices  int
}

// Intersect a world space ray with the scene.
func (s *Scene) Intersect(ray types.Ray, its *accel.Intersection, rng accel.Sampler) bool {
	if s.Root == nil {
		return false
	}
	return s.Root.Intersect(ray, its, rng)
}

// Get the world space bounds of the scene.
func (s *Scene) BoundingBox() types.Bounds {
	if s.Root == nil {
		return types.EmptyBounds()
	}
	return s.Root.BoundingBox()
}

// Collect scene statistics.
func (s *Scene) Stats() Stats {
	stats := Stats{Meshes: len(s.Meshes)}
	for _, mesh := range s.Meshes {
		stats.Triangles += len(mesh.Triangles)
		stats.Vertices += len(mesh.Vertices)
	}
	if group, ok := s.Root.(*shape.Group); ok {
		stats.Instances = len(group.Shapes())
	} else if s.Root != nil {
		stats.Instances = 1
	}
	return stats
}

// Make sure the scene has a camera. If no camera was defined, a camera is
// placed in front of the scene (on the +Z side) so that its bounding sphere
// fits in the field of view.
func (s *Scene) FitCamera() *Camera {
	if s.Camera != nil {
		return s.Camera
	}

	cam := NewCamera(DefaultFOV)
	bbox := s.BoundingBox()
	if !bbox.IsEmpty() && !bbox.IsUnbounded() {
		center := bbox.Center()
		radius := 0.5 * bbox.Diagonal().Len()
		halfFov := float64(cam.FOV) * math.Pi / 360
		dist := radius/float32(math.Sin(halfFov)) + radius*0.1
		if dist <= 0 {
			dist = 1
		}

		cam.LookAt = center
		cam.Position = center.Add(types.XYZ(0, 0, dist))
	}

	s.Camera = cam
	return cam
}
