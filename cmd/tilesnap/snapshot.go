package main

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"tileworld/internal/config"
	"tileworld/internal/render/raster"
	"tileworld/internal/world"
)

type snapOptions struct {
	X, Y   float64
	Zoom   float64
	Scale  float64
	Labels bool
	Out    string
}

// snapshotter streams chunks around a focus into an offscreen renderer.
type snapshotter struct {
	m   *world.Manager
	r   *raster.Renderer
	log logrus.FieldLogger

	pollInterval time.Duration
	timeout      time.Duration
}

func newSnapshotter(cfg *config.Config, log logrus.FieldLogger) (*snapshotter, error) {
	ts, err := config.LoadTileset(cfg.Tileset.Descriptor)
	if err != nil {
		return nil, err
	}
	atlas := raster.GenerateAtlas(ts)
	if cfg.Tileset.Image != "" {
		if atlas, err = raster.LoadAtlas(cfg.Tileset.Image, ts); err != nil {
			return nil, err
		}
	}
	r := raster.NewRenderer(atlas)

	m, err := world.NewManager(world.Options{
		Renderer:   r,
		Tileset:    ts,
		Terrain:    cfg.TerrainParams(),
		ChunkSize:  cfg.Streaming.ChunkSize,
		BaseRadius: cfg.Streaming.BaseRadius,
		CellSize:   cfg.Streaming.CellSize,
		Workers:    cfg.Streaming.Workers,
		QueueSize:  cfg.Streaming.QueueSize,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}
	return &snapshotter{m: m, r: r, log: log, pollInterval: 5 * time.Millisecond, timeout: time.Minute}, nil
}

// Snap loads the working set around the focus and writes it as a PNG.
func (s *snapshotter) Snap(opts snapOptions) error {
	if err := s.settle(opts.X, opts.Y, opts.Zoom); err != nil {
		return err
	}

	img := s.r.Compose(s.r.Bounds(), raster.ComposeOptions{Scale: opts.Scale, Labels: opts.Labels})
	f, err := os.Create(opts.Out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := raster.WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"out":    opts.Out,
		"chunks": s.m.Len(),
		"size":   img.Bounds().Size().String(),
	}).Info("snapshot written")
	return nil
}

// settle calls Update until background generation has drained and every
// resident chunk has a layer.
func (s *snapshotter) settle(x, y, zoom float64) error {
	deadline := time.Now().Add(s.timeout)
	for {
		res, err := s.m.Update(x, y, zoom)
		if err != nil {
			return err
		}
		if s.m.Pending() == 0 && res.Queued == 0 && s.r.Len() == s.m.Len() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("chunks still pending after %s", s.timeout)
		}
		time.Sleep(s.pollInterval)
	}
}

// Bounds returns the composed area in world pixels.
func (s *snapshotter) Bounds() image.Rectangle {
	return s.r.Bounds()
}

func (s *snapshotter) Close() {
	if err := s.m.Close(); err != nil {
		s.log.WithError(err).Warn("close failed")
	}
}
