package world

import (
	"fmt"
	"math"
	"sync"

	"tileworld/internal/tiling"
)

// DefaultChunkSize is the edge length of a chunk in tiles.
const DefaultChunkSize = 32

// ChunkCoord addresses a chunk on the infinite chunk grid.
type ChunkCoord struct {
	X, Y int
}

// String returns the "x,y" key form.
func (c ChunkCoord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// Chebyshev returns max(|dx|, |dy|) between two chunk coordinates.
func (c ChunkCoord) Chebyshev(o ChunkCoord) int {
	return max(abs(c.X-o.X), abs(c.Y-o.Y))
}

// TileData is the resolved terrain and sprite index of one tile.
type TileData = tiling.Tile

// Chunk is a square block of resolved tiles. Tiles are fixed at creation;
// only the renderable layer handle changes afterwards, under layerMu.
type Chunk struct {
	Coord ChunkCoord
	size  int
	tiles []TileData

	layerMu sync.Mutex
	layer   Layer
}

// NewChunk wraps a fully computed tile grid (size*size entries, x fastest).
func NewChunk(coord ChunkCoord, size int, tiles []TileData) *Chunk {
	if len(tiles) != size*size {
		panic(fmt.Sprintf("world: chunk %s has %d tiles, want %d", coord, len(tiles), size*size))
	}
	return &Chunk{Coord: coord, size: size, tiles: tiles}
}

// Size returns the edge length in tiles.
func (c *Chunk) Size() int {
	return c.size
}

// Tile returns the tile at local (x, y).
func (c *Chunk) Tile(x, y int) TileData {
	if x < 0 || x >= c.size || y < 0 || y >= c.size {
		panic(fmt.Sprintf("world: tile (%d,%d) outside chunk of size %d", x, y, c.size))
	}
	return c.tiles[y*c.size+x]
}

// Tiles returns a copy of the tile grid, x fastest.
func (c *Chunk) Tiles() []TileData {
	return append([]TileData(nil), c.tiles...)
}

// Layer returns the renderable handle, nil when not materialised.
func (c *Chunk) Layer() Layer {
	c.layerMu.Lock()
	defer c.layerMu.Unlock()
	return c.layer
}

// HasLayer reports whether the chunk is materialised.
func (c *Chunk) HasLayer() bool {
	return c.Layer() != nil
}

func (c *Chunk) setLayer(l Layer) {
	c.layerMu.Lock()
	c.layer = l
	c.layerMu.Unlock()
}

// releaseLayer destroys and forgets the renderable, if any. Destroy runs
// outside the lock; readers already see nil by then.
func (c *Chunk) releaseLayer() {
	c.layerMu.Lock()
	l := c.layer
	c.layer = nil
	c.layerMu.Unlock()
	if l != nil {
		l.Destroy()
	}
}

func floorDiv(a, b float64) int {
	return int(math.Floor(a / b))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
