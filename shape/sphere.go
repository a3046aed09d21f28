package shape

import (
	"math"

	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/types"
)

// Sphere is a unit sphere centered at the origin. Use an Instance to place
// and scale it.
type Sphere struct{}

func (s Sphere) Intersect(ray types.Ray, its *accel.Intersection, rng accel.Sampler) bool {
	// Solve |o + t*d|^2 = 1
	a := ray.Direction.Dot(ray.Direction)
	halfB := ray.Origin.Dot(ray.Direction)
	c := ray.Origin.Dot(ray.Origin) - 1
	disc := halfB*halfB - a*c
	if disc < 0 || a == 0 {
		return false
	}

	sqrtDisc := float32(math.Sqrt(float64(disc)))
	t0 := (-halfB - sqrtDisc) / a
	t1 := (-halfB + sqrtDisc) / a

	// Try the near hit first; the far hit is used when the origin is inside
	// the sphere or the near hit is transparent.
	for _, t := range [2]float32{t0, t1} {
		if t < types.Epsilon || t > its.T {
			continue
		}

		normal := ray.At(t).Normalize()
		uv := sphereUV(normal)
		if !opaqueAt(its, uv, rng) {
			continue
		}

		its.T = t
		its.Position = normal
		its.Frame = types.NewFrame(normal)
		its.UV = uv
		its.Pdf = 1 / (4 * math.Pi)
		its.Shape = s
		return true
	}
	return false
}

func sphereUV(normal types.Vec3) types.Vec2 {
	return types.XY(
		float32(math.Atan2(float64(normal[0]), float64(normal[2]))/(2*math.Pi)+0.5),
		float32(math.Acos(float64(clamp(normal[1], -1, 1)))/math.Pi),
	)
}

func (s Sphere) BoundingBox() types.Bounds {
	return types.NewBounds(types.Splat(-1), types.Splat(1))
}

func (s Sphere) Centroid() types.Vec3 {
	return types.Vec3{}
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
