package world

import (
	"context"
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tileworld/internal/terrain"
	"tileworld/internal/tiling"
)

func newTestSynthesizer() *Synthesizer {
	return NewSynthesizer(scenarioConfig(), DefaultChunkSize, terrain.DefaultCellSize, tiling.DefaultTileset())
}

func tilesDigest(c *Chunk) string {
	h := sha256.New()
	for _, t := range c.Tiles() {
		fmt.Fprintf(h, "%d:%d;", t.Terrain, t.TileIndex)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func TestSynthesizeDeterministic(t *testing.T) {
	a := newTestSynthesizer()
	b := newTestSynthesizer()

	// warm b's seed cache from a different direction first
	_, err := b.Synthesize(context.Background(), ChunkCoord{5, -5})
	require.NoError(t, err)

	for _, coord := range []ChunkCoord{{0, 0}, {-1, 3}, {7, 7}} {
		ca, err := a.Synthesize(context.Background(), coord)
		require.NoError(t, err)
		cb, err := b.Synthesize(context.Background(), coord)
		require.NoError(t, err)
		assert.Equal(t, tilesDigest(ca), tilesDigest(cb), "chunk %s", coord)
	}
}

func TestSynthesizeTerrainMatchesGrid(t *testing.T) {
	s := newTestSynthesizer()
	coord := ChunkCoord{2, -1}
	c, err := s.Synthesize(context.Background(), coord)
	require.NoError(t, err)
	g := s.TerrainGrid(coord)

	assert.Equal(t, coord.X*DefaultChunkSize-1, g.OriginX)
	assert.Equal(t, coord.Y*DefaultChunkSize-1, g.OriginY)
	for y := 0; y < DefaultChunkSize; y++ {
		for x := 0; x < DefaultChunkSize; x++ {
			assert.Equal(t, g.At(x+1, y+1), c.Tile(x, y).Terrain)
		}
	}
}

func TestSynthesizeCancelled(t *testing.T) {
	s := newTestSynthesizer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, err := s.Synthesize(ctx, ChunkCoord{0, 0})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, context.Canceled)
}

// Corners shared by two adjacent chunks must resolve the same way from
// either side, so sprites line up across the seam.
func TestSeamCornersAgree(t *testing.T) {
	s := newTestSynthesizer()
	n := DefaultChunkSize
	for cy := -2; cy <= 2; cy++ {
		for cx := -2; cx <= 2; cx++ {
			here := s.TerrainGrid(ChunkCoord{cx, cy})
			east := s.TerrainGrid(ChunkCoord{cx + 1, cy})
			south := s.TerrainGrid(ChunkCoord{cx, cy + 1})
			for i := 1; i <= n; i++ {
				a := tiling.CornersAt(here, n, i)
				b := tiling.CornersAt(east, 1, i)
				require.Equal(t, a.TR, b.TL, "chunk %d,%d east seam row %d", cx, cy, i)
				require.Equal(t, a.BR, b.BL, "chunk %d,%d east seam row %d", cx, cy, i)

				a = tiling.CornersAt(here, i, n)
				b = tiling.CornersAt(south, i, 1)
				require.Equal(t, a.BL, b.TL, "chunk %d,%d south seam col %d", cx, cy, i)
				require.Equal(t, a.BR, b.TR, "chunk %d,%d south seam col %d", cx, cy, i)
			}
		}
	}
}

func BenchmarkSynthesize(b *testing.B) {
	s := newTestSynthesizer()
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Synthesize(ctx, ChunkCoord{i % 16, i / 16 % 16}); err != nil {
			b.Fatal(err)
		}
	}
}
