package world

import (
	"context"

	"tileworld/internal/profiling"
	"tileworld/internal/terrain"
	"tileworld/internal/tiling"
)

// Generator builds fully computed chunks.
type Generator interface {
	Synthesize(ctx context.Context, coord ChunkCoord) (*Chunk, error)
}

// Synthesizer runs classification and corner tiling for one configuration
// episode. It is safe for concurrent use.
type Synthesizer struct {
	cfg        terrain.Config
	chunkSize  int
	field      *terrain.SeedField
	classifier *terrain.Classifier
	tiler      *tiling.CornerTiler
}

// NewSynthesizer creates a synthesizer with a fresh seed cache.
func NewSynthesizer(cfg terrain.Config, chunkSize, cellSize int, ts *tiling.Tileset) *Synthesizer {
	field := terrain.NewSeedField(cfg, cellSize)
	return &Synthesizer{
		cfg:        cfg,
		chunkSize:  chunkSize,
		field:      field,
		classifier: terrain.NewClassifier(cfg, field),
		tiler:      tiling.NewCornerTiler(ts),
	}
}

// Config returns the episode configuration.
func (s *Synthesizer) Config() terrain.Config {
	return s.cfg
}

// SeedField exposes the episode's seed cache.
func (s *Synthesizer) SeedField() *terrain.SeedField {
	return s.field
}

// TerrainGrid returns the halo terrain grid for coord.
func (s *Synthesizer) TerrainGrid(coord ChunkCoord) *terrain.Grid {
	return s.classifier.Generate(coord.X, coord.Y, s.chunkSize)
}

// Synthesize builds the chunk at coord. It returns ctx.Err() if cancelled
// before the chunk is complete.
func (s *Synthesizer) Synthesize(ctx context.Context, coord ChunkCoord) (*Chunk, error) {
	defer profiling.Track("world.Synthesize")()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	grid := s.TerrainGrid(coord)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewChunk(coord, s.chunkSize, s.tiler.Resolve(grid)), nil
}
