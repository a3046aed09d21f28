package renderer

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/tracer"
	"golang.org/x/time/rate"
)

type Renderer interface {
	// Render frame. Rendering stops early with ErrInterrupted if ctx is
	// canceled.
	Render(ctx context.Context) (*tracer.Frame, error)

	// Shutdown renderer and release the frame buffer.
	Close()

	// Get render statistics for the last rendered frame.
	Stats() FrameStats
}

// The default renderer traces frames on the CPU using a pool of tracers that
// pull row blocks from a shared queue.
type defaultRenderer struct {
	logger log.Logger

	scene    *scene.Scene
	options  Options
	frame    *tracer.Frame
	tracers  []*tracer.Tracer
	progress *rate.Limiter

	stats FrameStats
}

// Create a renderer for a scene. The scene camera projection is set up for
// the requested frame size.
func NewDefault(sc *scene.Scene, opts Options) (Renderer, error) {
	if sc == nil || sc.Root == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, fmt.Errorf("%w %dx%d", ErrInvalidFrameSize, opts.FrameW, opts.FrameH)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.SamplesPerPixel == 0 {
		opts.SamplesPerPixel = 1
	}

	r := &defaultRenderer{
		logger:   log.New("renderer"),
		scene:    sc,
		options:  opts,
		frame:    tracer.NewFrame(opts.FrameW, opts.FrameH),
		progress: opts.Progress,
	}
	if r.progress == nil {
		r.progress = rate.NewLimiter(rate.Every(time.Second), 1)
	}

	sc.Camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))

	settings := tracer.Settings{
		Mode:            opts.Mode,
		Unit:            opts.Unit,
		SamplesPerPixel: opts.SamplesPerPixel,
	}
	for index := 0; index < opts.Workers; index++ {
		settings.Seed = opts.Seed + uint64(index)
		r.tracers = append(r.tracers, tracer.New(fmt.Sprintf("cpu-%d", index), sc, r.frame, settings))
	}

	r.logger.Infof(
		"rendering %dx%d frames (%s mode, %d spp) with %d workers",
		opts.FrameW, opts.FrameH, opts.Mode, opts.SamplesPerPixel, opts.Workers,
	)
	return r, nil
}

// Render frame.
func (r *defaultRenderer) Render(ctx context.Context) (*tracer.Frame, error) {
	start := time.Now()

	blocks := tracer.SplitFrame(r.options.FrameH, len(r.tracers))
	queue := make(chan tracer.BlockRequest, len(blocks))
	for _, block := range blocks {
		queue <- block
	}
	close(queue)

	var rowsDone uint32
	var wg sync.WaitGroup
	for _, tr := range r.tracers {
		tr.ResetStats()
		wg.Add(1)
		go func(tr *tracer.Tracer) {
			defer wg.Done()
			for req := range queue {
				if ctx.Err() != nil {
					return
				}
				tr.Trace(req)

				done := atomic.AddUint32(&rowsDone, req.BlockH)
				if r.progress.Allow() {
					r.logger.Infof("rendered %d/%d rows (%02.1f %%)", done, r.options.FrameH, 100*float32(done)/float32(r.options.FrameH))
				}
			}
		}(tr)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInterrupted, err)
	}

	r.collectStats(time.Since(start))
	r.logger.Noticef("rendered frame in %d ms", r.stats.RenderTime.Nanoseconds()/1e6)
	return r.frame, nil
}

func (r *defaultRenderer) collectStats(renderTime time.Duration) {
	r.frame.Stats = tracer.Stats{}
	r.stats = FrameStats{
		Tracers:    make([]TracerStat, len(r.tracers)),
		RenderTime: renderTime,
	}
	for index, tr := range r.tracers {
		trStats := tr.Stats()
		r.frame.Stats.Add(*trStats)
		r.stats.Tracers[index] = TracerStat{
			Id:             tr.Id(),
			BlockH:         trStats.Rows,
			FramePercent:   100 * float32(trStats.Rows) / float32(r.options.FrameH),
			Rays:           trStats.Rays,
			NodeVisits:     trStats.NodeVisits,
			PrimitiveTests: trStats.PrimitiveTests,
			RenderTime:     trStats.RenderTime,
		}
	}

	// Frame render time is wall clock time, not the sum over tracers
	r.frame.Stats.RenderTime = renderTime
	r.stats.Rays = r.frame.Stats.Rays
	r.stats.Hits = r.frame.Stats.Hits
	r.stats.NodeVisits = r.frame.Stats.NodeVisits
	r.stats.PrimitiveTests = r.frame.Stats.PrimitiveTests
}

// Get render statistics for the last rendered frame.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Shutdown renderer.
func (r *defaultRenderer) Close() {
	r.tracers = nil
	r.frame = nil
}
