package renderer

import (
	"github.com/achilleasa/prism/tracer"
	"golang.org/x/time/rate"
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of jittered samples per pixel.
	SamplesPerPixel uint32

	// Number of tracing goroutines. If zero, one worker per CPU is used.
	Workers int

	// Base seed; each worker seeds its sampler with Seed + worker index.
	Seed uint64

	// What to render and the node visit / primitive test count that maps
	// to full intensity in tracer.ModeBVH.
	Mode tracer.Mode
	Unit float32

	// Limits how often render progress is logged. If nil, progress is
	// logged at most once per second.
	Progress *rate.Limiter
}
