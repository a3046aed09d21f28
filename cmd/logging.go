package cmd

import (
	"github.com/achilleasa/prism/config"
	"github.com/achilleasa/prism/log"
	"github.com/urfave/cli"
)

var logger = log.New("prism")

// Load the config file (if one was specified) and set up logging. The -v and
// -vv flags override the configured log level.
func setupLogging(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return cfg, err
	}
	log.SetLevel(level)

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	return cfg, nil
}
