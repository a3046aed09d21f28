package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/asset/reader"
	"github.com/achilleasa/prism/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Load scenes, build their BVH trees and display tree statistics. If a
// snapshot dir is specified, the tree of each mesh is written to it.
func BuildScene(ctx *cli.Context) error {
	cfg, err := setupLogging(ctx)
	if err != nil {
		return err
	}

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument")
	}

	runCtx, cancel := signalContext()
	defer cancel()

	snapshotDir := ctx.String("snapshot-dir")
	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)

		logger.Noticef("parsing scene: %s", sceneFile)
		sc, err := reader.ReadScene(runCtx, sceneFile, bvhOptions(ctx, cfg)...)
		if err != nil {
			return err
		}

		stats := sc.Stats()
		logger.Noticef(
			"scene %s: %d meshes, %d instances, %d triangles, %d vertices",
			sceneFile, stats.Meshes, stats.Instances, stats.Triangles, stats.Vertices,
		)
		displayTreeStats(sc)

		if snapshotDir != "" {
			if err = writeSnapshots(sc, snapshotDir); err != nil {
				return err
			}
		}
	}

	return nil
}

func displayTreeStats(sc *scene.Scene) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tree", "Primitives", "Nodes", "Leaves", "Max depth", "Avg leaf depth", "Leaf size (min/avg/max)", "SAH cost", "Build time"})

	appendTree := func(name string, tree *accel.BVH) {
		stats := tree.TreeStats()
		table.Append([]string{
			name,
			fmt.Sprintf("%d", stats.Primitives),
			fmt.Sprintf("%d", stats.Nodes),
			fmt.Sprintf("%d", stats.Leaves),
			fmt.Sprintf("%d", stats.MaxDepth),
			fmt.Sprintf("%.1f", stats.AvgLeafDepth),
			fmt.Sprintf("%d / %.1f / %d", stats.MinLeafSize, stats.AvgLeafSize, stats.MaxLeafSize),
			fmt.Sprintf("%.2f", stats.SAHCost),
			tree.BuildStats().Duration.String(),
		})
	}

	for _, mesh := range sc.Meshes {
		appendTree(mesh.Name, mesh.BVH())
	}
	if group, ok := sc.Root.(interface{ BVH() *accel.BVH }); ok {
		appendTree("(scene)", group.BVH())
	}

	table.Render()
	logger.Noticef("tree statistics\n%s", buf.String())
}

// Get the snapshot file name for the mesh at index.
func snapshotPath(dir string, meshIndex int) string {
	return filepath.Join(dir, fmt.Sprintf("mesh-%03d.bvh", meshIndex))
}

func writeSnapshots(sc *scene.Scene, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for meshIndex, mesh := range sc.Meshes {
		path := snapshotPath(dir, meshIndex)
		f, err := os.Create(path)
		if err != nil {
			return err
		}

		n, err := mesh.BVH().WriteTo(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("could not write snapshot for mesh %q: %w", mesh.Name, err)
		}
		logger.Infof("wrote %d byte snapshot for mesh %q to %s", n, mesh.Name, path)
	}

	logger.Noticef("wrote %d snapshots to %s", len(sc.Meshes), dir)
	return nil
}
