package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/asset/reader"
	"github.com/achilleasa/prism/sampler"
	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/shape"
	"github.com/achilleasa/prism/types"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

var (
	errVerifyMismatch = errors.New("BVH and brute-force results differ")
)

// Relative tolerance for comparing world space hit distances reported
// through instances.
const verifyTolerance = 1e-4

// The results of comparing a tree against a linear scan.
type verifyResult struct {
	name       string
	rays       int
	hits       int
	mismatches int

	treeStats  accel.TraversalStats
	bruteStats accel.TraversalStats
}

// Fire random rays at a scene and compare the BVH results against a linear
// scan over the same primitives.
func VerifyScene(ctx *cli.Context) error {
	cfg, err := setupLogging(ctx)
	if err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	runCtx, cancel := signalContext()
	defer cancel()

	runID := uuid.New()
	logger.Noticef("[run %s] verifying %s", runID, ctx.Args().First())

	sc, err := reader.ReadScene(runCtx, ctx.Args().First(), bvhOptions(ctx, cfg)...)
	if err != nil {
		return err
	}

	seed := cfg.Render.Seed
	if ctx.IsSet("seed") {
		seed = uint64(ctx.Int64("seed"))
	}

	results, err := verifyScene(sc, ctx.Int("rays"), seed, ctx.String("snapshot-dir"))
	if err != nil {
		return err
	}
	displayVerifyResults(results)

	for _, res := range results {
		if res.mismatches != 0 {
			return fmt.Errorf("[run %s] %w: %s: %d of %d rays", runID, errVerifyMismatch, res.name, res.mismatches, res.rays)
		}
	}
	logger.Noticef("[run %s] all trees match the brute-force results", runID)
	return nil
}

// Compare every mesh tree and the scene tree against a linear scan. If
// snapshotDir is not empty, mesh trees are loaded from the snapshots written
// by the build command instead of the trees built while loading the scene.
func verifyScene(sc *scene.Scene, numRays int, seed uint64, snapshotDir string) ([]verifyResult, error) {
	bbox := sc.BoundingBox()
	if bbox.IsEmpty() || bbox.IsUnbounded() {
		return nil, errors.New("scene is empty")
	}

	rays := randomRays(bbox, numRays, seed)

	var results []verifyResult
	for meshIndex, mesh := range sc.Meshes {
		tree := mesh.BVH()
		if snapshotDir != "" {
			var err error
			if tree, err = loadSnapshot(snapshotPath(snapshotDir, meshIndex), mesh); err != nil {
				return nil, fmt.Errorf("mesh %q: %w", mesh.Name, err)
			}
		}
		results = append(results, compareTree(mesh.Name, tree, mesh, rays))
	}

	if group, ok := sc.Root.(*shape.Group); ok {
		results = append(results, compareTree("(scene)", group.BVH(), group, rays))
	}

	return results, nil
}

func loadSnapshot(path string, prims accel.Primitives) (*accel.BVH, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return accel.Load(f, prims)
}

// Generate rays whose origins are spread around the scene bounds and whose
// directions are uniformly distributed over the sphere.
func randomRays(bbox types.Bounds, count int, seed uint64) []types.Ray {
	rng := sampler.New(seed)
	center := bbox.Center()
	extent := bbox.Diagonal().Mul(0.75)

	rays := make([]types.Ray, count)
	for i := range rays {
		var origin types.Vec3
		for axis := 0; axis < 3; axis++ {
			origin[axis] = center[axis] + (2*rng.Next()-1)*extent[axis]
		}

		u := rng.Next2D()
		z := 1 - 2*u[0]
		r := float32(math.Sqrt(math.Max(0, float64(1-z*z))))
		phi := 2 * math.Pi * float64(u[1])
		dir := types.XYZ(r*float32(math.Cos(phi)), r*float32(math.Sin(phi)), z)

		rays[i] = types.NewRay(origin, dir)
	}
	return rays
}

func compareTree(name string, tree *accel.BVH, prims accel.Primitives, rays []types.Ray) verifyResult {
	res := verifyResult{name: name, rays: len(rays)}
	for _, ray := range rays {
		treeIts := accel.NewIntersection()
		treeHit := tree.Intersect(ray, &treeIts, nil)

		bruteIts := accel.NewIntersection()
		bruteHit := shape.BruteForce(prims, ray, &bruteIts, nil)

		res.treeStats.Add(treeIts.Stats)
		res.bruteStats.Add(bruteIts.Stats)
		if treeHit {
			res.hits++
		}

		if treeHit != bruteHit || !sameDistance(treeIts.T, bruteIts.T) {
			res.mismatches++
			logger.Debugf("%s: ray %v; tree hit: %t at %f; brute-force hit: %t at %f", name, ray, treeHit, treeIts.T, bruteHit, bruteIts.T)
		}
	}
	return res
}

func sameDistance(a, b float32) bool {
	if a == b {
		return true
	}
	if math.IsInf(float64(a), 0) || math.IsInf(float64(b), 0) {
		return false
	}
	diff := math.Abs(float64(a - b))
	return diff <= verifyTolerance*math.Max(1, math.Max(math.Abs(float64(a)), math.Abs(float64(b))))
}

func displayVerifyResults(results []verifyResult) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tree", "Rays", "Hits", "Mismatches", "Tests / ray (BVH)", "Tests / ray (brute force)", "Node visits / ray"})
	for _, res := range results {
		rays := float64(res.rays)
		if rays == 0 {
			rays = 1
		}
		table.Append([]string{
			res.name,
			fmt.Sprintf("%d", res.rays),
			fmt.Sprintf("%d", res.hits),
			fmt.Sprintf("%d", res.mismatches),
			fmt.Sprintf("%.1f", float64(res.treeStats.PrimitiveTests)/rays),
			fmt.Sprintf("%.1f", float64(res.bruteStats.PrimitiveTests)/rays),
			fmt.Sprintf("%.1f", float64(res.treeStats.NodeVisits)/rays),
		})
	}
	table.Render()
	logger.Noticef("verification results\n%s", buf.String())
}
