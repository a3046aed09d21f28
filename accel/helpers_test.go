package accel

import (
	"github.com/achilleasa/prism/types"
	"golang.org/x/exp/rand"
)

// A collection of solid axis aligned boxes.
type boxList []types.Bounds

func (l boxList) PrimitiveCount() int {
	return len(l)
}

func (l boxList) PrimitiveBounds(index int) types.Bounds {
	return l[index]
}

func (l boxList) PrimitiveCentroid(index int) types.Vec3 {
	return l[index].Center()
}

func (l boxList) IntersectPrimitive(index int, ray types.Ray, its *Intersection, rng Sampler) bool {
	t := boxHitDistance(l[index], ray)
	if !(t < its.T) {
		return false
	}

	its.T = t
	its.Position = ray.At(t)
	its.PrimitiveIndex = index
	its.Shape = l
	return true
}

// Distance to the first point of the box surface that lies in front of the
// ray origin or +Inf.
func boxHitDistance(b types.Bounds, ray types.Ray) float32 {
	tNear, tFar := -types.Infinity, types.Infinity
	for axis := 0; axis < 3; axis++ {
		d, o := ray.Direction[axis], ray.Origin[axis]
		if d == 0 {
			if o < b.Min[axis] || o > b.Max[axis] {
				return types.Infinity
			}
			continue
		}
		t1 := (b.Min[axis] - o) / d
		t2 := (b.Max[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tNear {
			tNear = t1
		}
		if t2 < tFar {
			tFar = t2
		}
	}

	switch {
	case tFar < tNear:
		return types.Infinity
	case tNear >= types.Epsilon:
		return tNear
	case tFar >= types.Epsilon:
		return tFar
	}
	return types.Infinity
}

// Find the closest hit by testing every primitive.
func bruteForce(prims Primitives, ray types.Ray) Intersection {
	its := NewIntersection()
	for i := 0; i < prims.PrimitiveCount(); i++ {
		prims.IntersectPrimitive(i, ray, &its, nil)
	}
	return its
}

func unitBox(min types.Vec3, size float32) types.Bounds {
	return types.NewBounds(min, min.Add(types.Splat(size)))
}

func newRand(seed uint64) *rand.Rand {
	src := &rand.PCGSource{}
	src.Seed(seed)
	return rand.New(src)
}

func randomVec3(rng *rand.Rand, min, max float32) types.Vec3 {
	return types.XYZ(
		min+rng.Float32()*(max-min),
		min+rng.Float32()*(max-min),
		min+rng.Float32()*(max-min),
	)
}

// Generate count boxes with random sizes scattered inside a 100 unit cube.
func randomBoxes(rng *rand.Rand, count int) boxList {
	boxes := make(boxList, count)
	for i := range boxes {
		min := randomVec3(rng, -50, 50)
		boxes[i] = types.NewBounds(min, min.Add(randomVec3(rng, 0.1, 5)))
	}
	return boxes
}

// Generate a random ray starting somewhere around the scene. Every fourth
// ray is axis aligned so that zero direction components get exercised.
func randomRay(rng *rand.Rand, index int) types.Ray {
	origin := randomVec3(rng, -70, 70)
	dir := randomVec3(rng, -1, 1)
	if index%4 == 3 {
		dir = types.Vec3{}
		dir[rng.Intn(3)] = 1
		if rng.Intn(2) == 0 {
			dir = dir.Neg()
		}
	}
	if dir.Len() == 0 {
		dir = types.XYZ(0, 0, 1)
	}
	return types.NewRay(origin, dir.Normalize())
}
