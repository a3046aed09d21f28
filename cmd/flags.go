package cmd

import (
	"fmt"

	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/config"
	"github.com/urfave/cli"
)

// Get the BVH builder options from the config, overridden by any
// command line flags.
func bvhOptions(ctx *cli.Context, cfg config.Config) []accel.Option {
	bins := cfg.BVH.Bins
	if ctx.IsSet("bins") {
		bins = ctx.Int("bins")
	}
	maxLeaf := cfg.BVH.MaxLeafSize
	if ctx.IsSet("max-leaf") {
		maxLeaf = ctx.Int("max-leaf")
	}

	return []accel.Option{
		accel.WithBinCount(bins),
		accel.WithMaxLeafSize(maxLeaf),
	}
}

// Get an unsigned flag value. Negative values are rejected instead of being
// wrapped around.
func uint32Flag(ctx *cli.Context, name string, value uint32) (uint32, error) {
	if !ctx.IsSet(name) {
		return value, nil
	}
	v := ctx.Int(name)
	if v < 0 {
		return 0, fmt.Errorf("invalid value %d for flag --%s; expected a non-negative value", v, name)
	}
	return uint32(v), nil
}

func intFlag(ctx *cli.Context, name string, value int) int {
	if ctx.IsSet(name) {
		return ctx.Int(name)
	}
	return value
}

func stringFlag(ctx *cli.Context, name string, value string) string {
	if ctx.IsSet(name) {
		return ctx.String(name)
	}
	return value
}
