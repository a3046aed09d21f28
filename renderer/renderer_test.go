package renderer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/shape"
	"github.com/achilleasa/prism/tracer"
	"github.com/achilleasa/prism/types"
)

// A grid of quads in front of a camera looking down the -Z axis.
func gridScene(withCamera bool) *scene.Scene {
	mesh := shape.NewTriangleMesh(
		"quad",
		[]shape.Vertex{
			{Position: types.XYZ(-1, -1, 0)},
			{Position: types.XYZ(1, -1, 0)},
			{Position: types.XYZ(1, 1, 0)},
			{Position: types.XYZ(-1, 1, 0)},
		},
		[][3]int32{{0, 1, 2}, {0, 2, 3}},
		false,
	)

	var instances []shape.Shape
	for y := -2; y <= 2; y++ {
		for x := -2; x <= 2; x++ {
			transform := types.IdentityTransform().Translate(types.XYZ(float32(3*x), float32(3*y), 0))
			instances = append(instances, shape.NewInstance(mesh, transform))
		}
	}

	sc := &scene.Scene{
		Meshes: []*shape.TriangleMesh{mesh},
		Root:   shape.NewGroup(instances),
	}
	if withCamera {
		sc.FitCamera()
	}
	return sc
}

func TestNewDefaultErrors(t *testing.T) {
	type spec struct {
		scene  *scene.Scene
		opts   Options
		expErr error
	}
	specs := []spec{
		{nil, Options{FrameW: 8, FrameH: 8}, ErrSceneNotDefined},
		{&scene.Scene{}, Options{FrameW: 8, FrameH: 8}, ErrSceneNotDefined},
		{gridScene(false), Options{FrameW: 8, FrameH: 8}, ErrCameraNotDefined},
		{gridScene(true), Options{FrameW: 0, FrameH: 8}, ErrInvalidFrameSize},
	}

	for index, s := range specs {
		_, err := NewDefault(s.scene, s.opts)
		if !errors.Is(err, s.expErr) {
			t.Errorf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}

func TestRender(t *testing.T) {
	sc := gridScene(true)
	r, err := NewDefault(sc, Options{FrameW: 32, FrameH: 24, Workers: 3, Mode: tracer.ModeNormals})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if got := sc.Camera.Aspect(); got != float32(32)/24 {
		t.Fatalf("expected camera aspect to be set up for the frame; got %f", got)
	}

	frame, err := r.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if frame.Width != 32 || frame.Height != 24 {
		t.Fatalf("expected a 32x24 frame; got %dx%d", frame.Width, frame.Height)
	}

	stats := r.Stats()
	if stats.Rays != 32*24 {
		t.Fatalf("expected %d rays; got %d", 32*24, stats.Rays)
	}
	if stats.Hits == 0 || stats.Hits == stats.Rays {
		t.Fatalf("expected some rays to hit the grid and some to miss; got %d hits", stats.Hits)
	}
	if frame.Stats.Rays != stats.Rays || frame.Stats.Hits != stats.Hits {
		t.Fatalf("expected frame stats to match renderer stats; got %+v", frame.Stats)
	}

	var rows uint32
	var percent float32
	for _, trStat := range stats.Tracers {
		rows += trStat.BlockH
		percent += trStat.FramePercent
	}
	if rows != 24 {
		t.Fatalf("expected tracers to render 24 rows in total; got %d", rows)
	}
	if percent < 99.9 || percent > 100.1 {
		t.Fatalf("expected tracers to cover 100%% of the frame; got %f", percent)
	}

	// The center of the grid is a quad facing the camera
	if got := frame.At(16, 12); got != types.XYZ(0.5, 0.5, 1) {
		t.Fatalf("expected center pixel to contain the remapped quad normal; got %v", got)
	}
}

func TestRenderMatchesSingleWorker(t *testing.T) {
	render := func(workers int) *tracer.Frame {
		r, err := NewDefault(gridScene(true), Options{FrameW: 16, FrameH: 16, Workers: workers, Mode: tracer.ModeBVH, Unit: 8})
		if err != nil {
			t.Fatal(err)
		}
		frame, err := r.Render(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return frame
	}

	single := render(1)
	multi := render(4)
	for i := range single.Accum {
		if single.Accum[i] != multi.Accum[i] {
			t.Fatalf("expected identical frames regardless of the worker count; value %d differs: %f vs %f", i, single.Accum[i], multi.Accum[i])
		}
	}
}

func TestRenderInterrupted(t *testing.T) {
	r, err := NewDefault(gridScene(true), Options{FrameW: 16, FrameH: 16, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Render(ctx)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted; got %v", err)
	}
}

func TestFrameStatsTable(t *testing.T) {
	stats := FrameStats{
		Tracers: []TracerStat{
			{Id: "cpu-0", BlockH: 8, FramePercent: 50, Rays: 100, NodeVisits: 400, PrimitiveTests: 250},
			{Id: "cpu-1", BlockH: 8, FramePercent: 50, Rays: 100, NodeVisits: 600, PrimitiveTests: 350},
		},
		Rays:           200,
		NodeVisits:     1000,
		PrimitiveTests: 600,
	}

	if got := stats.NodeVisitsPerRay(); got != 5 {
		t.Fatalf("expected 5 node visits per ray; got %f", got)
	}
	if got := stats.PrimitiveTestsPerRay(); got != 3 {
		t.Fatalf("expected 3 primitive tests per ray; got %f", got)
	}
	if got := (FrameStats{}).NodeVisitsPerRay(); got != 0 {
		t.Fatalf("expected 0 node visits per ray for an empty frame; got %f", got)
	}

	var buf bytes.Buffer
	stats.WriteTable(&buf)
	out := buf.String()
	for _, exp := range []string{"Tracer", "cpu-0", "cpu-1", "TOTAL", "5.0 / ray", "3.0 / ray"} {
		if !strings.Contains(out, exp) {
			t.Errorf("expected table to contain %q; got:\n%s", exp, out)
		}
	}
}
