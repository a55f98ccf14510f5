package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xlab/closer"

	"tileworld/internal/config"
	"tileworld/internal/logger"
)

func main() {
	var opts snapOptions
	configPath := flag.String("config", "", "YAML config file")
	flag.Float64Var(&opts.X, "x", 0, "focus x in world pixels")
	flag.Float64Var(&opts.Y, "y", 0, "focus y in world pixels")
	flag.Float64Var(&opts.Zoom, "zoom", 1, "zoom factor; below 1 loads a wider area")
	flag.Float64Var(&opts.Scale, "scale", 1, "output pixels per world pixel")
	flag.BoolVar(&opts.Labels, "labels", false, "draw chunk borders and keys")
	flag.StringVar(&opts.Out, "out", "snapshot.png", "output PNG path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging)

	s, err := newSnapshotter(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("setup failed")
	}
	// releases workers and layers on Ctrl-C as well as on normal exit
	closer.Bind(s.Close)

	if err := s.Snap(opts); err != nil {
		log.WithError(err).Error("snapshot failed")
		closer.Exit(1)
	}
	closer.Close()
}
