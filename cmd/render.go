package cmd

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"time"

	"github.com/achilleasa/prism/asset/reader"
	"github.com/achilleasa/prism/renderer"
	"github.com/achilleasa/prism/tracer"
	"github.com/google/uuid"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	cfg, err := setupLogging(ctx)
	if err != nil {
		return err
	}

	mode, err := tracer.ParseMode(stringFlag(ctx, "mode", cfg.Render.Mode))
	if err != nil {
		return err
	}

	opts := renderer.Options{
		Workers:  intFlag(ctx, "workers", cfg.Render.Workers),
		Seed:     cfg.Render.Seed,
		Mode:     mode,
		Unit:     cfg.Render.Unit,
		Progress: cfg.Progress.Limiter(),
	}
	if opts.FrameW, err = uint32Flag(ctx, "width", cfg.Render.Width); err != nil {
		return err
	}
	if opts.FrameH, err = uint32Flag(ctx, "height", cfg.Render.Height); err != nil {
		return err
	}
	if opts.SamplesPerPixel, err = uint32Flag(ctx, "spp", cfg.Render.Spp); err != nil {
		return err
	}
	if ctx.IsSet("seed") {
		opts.Seed = uint64(ctx.Int64("seed"))
	}
	if ctx.IsSet("unit") {
		opts.Unit = float32(ctx.Float64("unit"))
	}
	imgFile := stringFlag(ctx, "out", cfg.Render.Out)

	// Load scene
	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	runCtx, cancel := signalContext()
	defer cancel()

	runID := uuid.New()
	logger.Noticef("[run %s] rendering %s", runID, ctx.Args().First())

	sc, err := reader.ReadScene(runCtx, ctx.Args().First(), bvhOptions(ctx, cfg)...)
	if err != nil {
		return err
	}
	if sc.Camera == nil {
		logger.Notice("scene does not define a camera; fitting a default camera to the scene bounds")
		sc.FitCamera()
	}

	// Create renderer
	r, err := renderer.NewDefault(sc, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	frame, err := r.Render(runCtx)
	if err != nil {
		return err
	}

	// Display stats
	displayFrameStats(r.Stats())

	// Export PNG
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err = png.Encode(f, frame.ToImage()); err != nil {
		return err
	}
	logger.Noticef("[run %s] wrote frame to %s in %d ms", runID, imgFile, time.Since(start).Nanoseconds()/1e6)

	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	stats.WriteTable(&buf)
	logger.Noticef("frame statistics\n%s", buf.String())
}
