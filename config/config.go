package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/time/rate"
)

var (
	ErrUnknownKeys = errors.New("config: unknown keys")
)

// Config holds the settings that can be supplied through a TOML file. Command
// line flags take precedence over any value defined here.
type Config struct {
	Log      Log     `toml:"log"`
	BVH      BVH     `toml:"bvh"`
	Render   Render  `toml:"render"`
	Progress Limiter `toml:"progress"`
}

type Log struct {
	// One of debug, info, notice, warning or error.
	Level string `toml:"level"`
}

type BVH struct {
	Bins        int `toml:"bins"`
	MaxLeafSize int `toml:"max-leaf-size"`
}

type Render struct {
	Width   uint32 `toml:"width"`
	Height  uint32 `toml:"height"`
	Spp     uint32 `toml:"spp"`
	Workers int    `toml:"workers"`
	Seed    uint64 `toml:"seed"`

	// One of bvh, normals or depth.
	Mode string `toml:"mode"`

	// The node visit / primitive test count that maps to full intensity
	// when visualizing the BVH.
	Unit float32 `toml:"unit"`

	Out string `toml:"out"`
}

// Limiter controls how often a recurring event (e.g. a progress report) may
// fire: at most N events every Every.
type Limiter struct {
	Every duration `toml:"every"`
	N     int      `toml:"n"`
}

// Build a rate limiter from the configured values.
func (l *Limiter) Limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(l.Every.Duration), l.N)
}

// duration allows time.Duration values to be specified as strings ("5s").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Get the built-in defaults.
func Default() Config {
	return Config{
		Log: Log{Level: "notice"},
		BVH: BVH{
			Bins:        16,
			MaxLeafSize: 2,
		},
		Render: Render{
			Width:   512,
			Height:  512,
			Spp:     1,
			Workers: runtime.NumCPU(),
			Seed:    1,
			Mode:    "normals",
			Unit:    64,
			Out:     "frame.png",
		},
		Progress: Limiter{
			Every: duration{time.Second},
			N:     1,
		},
	}
}

// Load a config file on top of the defaults. Keys that do not map to a
// config field are reported as an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: could not parse %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return cfg, fmt.Errorf("%w in %s: %s", ErrUnknownKeys, path, strings.Join(keys, ", "))
	}

	return cfg, cfg.Validate()
}

// Validate checks that all values are within range.
func (c *Config) Validate() error {
	switch {
	case c.BVH.Bins < 2:
		return fmt.Errorf("config: bvh bins must be at least 2; got %d", c.BVH.Bins)
	case c.BVH.MaxLeafSize < 1:
		return fmt.Errorf("config: bvh max-leaf-size must be at least 1; got %d", c.BVH.MaxLeafSize)
	case c.Render.Width == 0 || c.Render.Height == 0:
		return fmt.Errorf("config: invalid frame dimensions %dx%d", c.Render.Width, c.Render.Height)
	case c.Render.Spp == 0:
		return errors.New("config: spp must be at least 1")
	case c.Render.Unit <= 0:
		return fmt.Errorf("config: render unit must be positive; got %f", c.Render.Unit)
	case c.Progress.N < 1:
		return fmt.Errorf("config: progress n must be at least 1; got %d", c.Progress.N)
	}
	return nil
}
