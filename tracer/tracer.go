package tracer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/sampler"
	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/types"
)

var (
	ErrUnknownMode = errors.New("tracer: unknown mode")
)

// Mode selects what the tracer writes for each primary ray.
type Mode uint8

const (
	// Remapped shading normal of the closest hit.
	ModeNormals Mode = iota

	// Distance to the closest hit; nearer hits are brighter.
	ModeDepth

	// BVH cost of the query: node visits in the red channel and primitive
	// tests in the green channel.
	ModeBVH
)

var modeNames = [...]string{
	ModeNormals: "normals",
	ModeDepth:   "depth",
	ModeBVH:     "bvh",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Parse a mode name.
func ParseMode(name string) (Mode, error) {
	for mode, modeName := range modeNames {
		if strings.EqualFold(name, modeName) {
			return Mode(mode), nil
		}
	}
	return 0, fmt.Errorf("%w %q; expected one of %s", ErrUnknownMode, name, strings.Join(modeNames[:], ", "))
}

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32
}

// Tracer statistics.
type Stats struct {
	Rays           uint64
	Hits           uint64
	NodeVisits     uint64
	PrimitiveTests uint64

	// The number of traced rows and the time spent tracing them.
	Rows       uint32
	RenderTime time.Duration
}

// Add the counters of other to s.
func (s *Stats) Add(other Stats) {
	s.Rays += other.Rays
	s.Hits += other.Hits
	s.NodeVisits += other.NodeVisits
	s.PrimitiveTests += other.PrimitiveTests
	s.Rows += other.Rows
	s.RenderTime += other.RenderTime
}

// Settings shared by all tracers rendering a frame.
type Settings struct {
	Mode Mode

	// The number of node visits or primitive tests that map to full
	// intensity in ModeBVH.
	Unit float32

	// The number of jittered rays traced per pixel.
	SamplesPerPixel uint32

	// Seed for the tracer's sampler.
	Seed uint64
}

// A Tracer renders blocks of rows into a shared frame. The scene is only
// read, so any number of tracers may render the same scene in parallel as
// long as they are assigned disjoint blocks. A single tracer is not safe for
// concurrent use.
type Tracer struct {
	id     string
	logger log.Logger

	scene    *scene.Scene
	frame    *Frame
	settings Settings

	unitScale  float32
	depthScale float32

	sampler *sampler.Independent
	its     accel.Intersection
	stats   Stats
}

// Create a tracer for a scene. The scene camera must be set up for the
// frame's aspect ratio.
func New(id string, sc *scene.Scene, frame *Frame, settings Settings) *Tracer {
	if settings.SamplesPerPixel == 0 {
		settings.SamplesPerPixel = 1
	}
	if settings.Unit <= 0 {
		settings.Unit = 1
	}

	tr := &Tracer{
		id:        id,
		logger:    log.New(id),
		scene:     sc,
		frame:     frame,
		settings:  settings,
		unitScale: 1 / settings.Unit,
		sampler:   sampler.New(settings.Seed),
		its:       accel.NewIntersection(),
	}

	// Depth is normalized by the distance to the far side of the scene
	bbox := sc.BoundingBox()
	if !bbox.IsEmpty() && !bbox.IsUnbounded() && sc.Camera != nil {
		far := bbox.Center().Sub(sc.Camera.Position).Len() + 0.5*bbox.Diagonal().Len()
		if far > 0 {
			tr.depthScale = 1 / far
		}
	}

	return tr
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Retrieve the statistics collected since the last reset.
func (tr *Tracer) Stats() *Stats {
	return &tr.stats
}

// Reset the tracer statistics.
func (tr *Tracer) ResetStats() {
	tr.stats = Stats{}
}

// Trace all pixels in the rows covered by req.
func (tr *Tracer) Trace(req BlockRequest) {
	start := time.Now()
	cam := tr.scene.Camera
	frameW, frameH := tr.frame.Width, tr.frame.Height
	invW, invH := 1/float32(frameW), 1/float32(frameH)
	spp := tr.settings.SamplesPerPixel
	sampleScale := 1 / float32(spp)

	lastRow := req.BlockY + req.BlockH
	if lastRow > frameH {
		lastRow = frameH
	}

	for y := req.BlockY; y < lastRow; y++ {
		for x := uint32(0); x < frameW; x++ {
			var color types.Vec3
			for s := uint32(0); s < spp; s++ {
				// The first sample always goes through the pixel center
				jitter := types.XY(0.5, 0.5)
				if s > 0 {
					jitter = tr.sampler.Next2D()
				}
				u := (float32(x) + jitter[0]) * invW
				v := (float32(y) + jitter[1]) * invH
				color = color.Add(tr.shade(cam.Ray(u, v)))
			}
			tr.frame.Set(x, y, color.Mul(sampleScale))
		}
	}

	tr.stats.Rows += lastRow - req.BlockY
	tr.stats.RenderTime += time.Since(start)
	tr.logger.Debugf("traced rows [%d, %d) in %s", req.BlockY, lastRow, time.Since(start))
}

// Trace a single ray and map the query result to a color.
func (tr *Tracer) shade(ray types.Ray) types.Vec3 {
	its := &tr.its
	its.Reset()
	hit := tr.scene.Intersect(ray, its, tr.sampler)

	tr.stats.Rays++
	tr.stats.NodeVisits += uint64(its.Stats.NodeVisits)
	tr.stats.PrimitiveTests += uint64(its.Stats.PrimitiveTests)
	if hit {
		tr.stats.Hits++
	}

	switch tr.settings.Mode {
	case ModeBVH:
		return types.XYZ(
			float32(its.Stats.NodeVisits)*tr.unitScale,
			float32(its.Stats.PrimitiveTests)*tr.unitScale,
			0,
		)
	case ModeDepth:
		if !hit {
			return types.Vec3{}
		}
		return types.Splat(1 - clamp(its.T*tr.depthScale, 0, 1))
	default:
		if !hit {
			return types.Vec3{}
		}
		return its.Frame.Normal.Add(types.Splat(1)).Mul(0.5)
	}
}

func clamp(v, min, max float32) float32 {
	switch {
	case v < min:
		return min
	case v > max:
		return max
	}
	return v
}
