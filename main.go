package main

import (
	"os"

	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/cmd"
	"github.com/achilleasa/prism/log"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	bvhFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "bins",
			Value: accel.DefaultBinCount,
			Usage: "number of SAH bins per axis",
		},
		cli.IntFlag{
			Name:  "max-leaf",
			Value: accel.DefaultMaxLeafSize,
			Usage: "nodes with this many primitives or fewer are never split",
		},
	}

	app := cli.NewApp()
	app.Name = "prism"
	app.Usage = "build and query SAH bounding volume hierarchies for ray tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from a TOML config file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build BVH trees for scenes and display tree statistics",
			Description: `
Parse a scene definition from a wavefront obj file and build a BVH tree for
each mesh and for the scene instances.

If a snapshot dir is specified, the tree for each mesh is serialized into it so
that it can be checked with the verify command.`,
			ArgsUsage: "scene_file1.obj scene_file2.obj ...",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "snapshot-dir, o",
					Usage: "write mesh tree snapshots to this folder",
				},
			}, bvhFlags...),
			Action: cmd.BuildScene,
		},
		{
			Name:        "render",
			Usage:       "render a single frame",
			Description: `Render a single frame by tracing primary rays from the scene camera.`,
			ArgsUsage:   "scene_file.obj",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: 1,
					Usage: "samples per pixel",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "number of tracing goroutines (default: one per CPU)",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random seed for pixel jittering",
				},
				cli.StringFlag{
					Name:  "mode",
					Value: "normals",
					Usage: "what to render: normals, depth or bvh",
				},
				cli.Float64Flag{
					Name:  "unit",
					Value: 64,
					Usage: "node visits / primitive tests that map to full intensity in bvh mode",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			}, bvhFlags...),
			Action: cmd.RenderFrame,
		},
		{
			Name:  "verify",
			Usage: "compare BVH query results against a linear scan",
			Description: `
Fire random rays at each mesh and at the scene and check that the BVH reports
the same closest hits as testing every primitive.`,
			ArgsUsage: "scene_file.obj",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "rays",
					Value: 10000,
					Usage: "number of random rays",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random seed for ray generation",
				},
				cli.StringFlag{
					Name:  "snapshot-dir",
					Usage: "load mesh trees from snapshots written by the build command",
				},
			}, bvhFlags...),
			Action: cmd.VerifyScene,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("prism").Error(err)
		os.Exit(1)
	}
}
