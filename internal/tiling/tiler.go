package tiling

import (
	"tileworld/internal/terrain"
)

// Tile is one resolved output cell.
type Tile struct {
	Terrain   terrain.Type
	TileIndex int
}

// CornerTiler maps halo terrain grids to tile indices.
type CornerTiler struct {
	tileset *Tileset
}

func NewCornerTiler(ts *Tileset) *CornerTiler {
	return &CornerTiler{tileset: ts}
}

func (t *CornerTiler) Tileset() *Tileset {
	return t.tileset
}

// CornersAt resolves the four corners of interior cell (x, y) of g.
func CornersAt(g *terrain.Grid, x, y int) Corners {
	c := g.At(x, y)
	n, s := g.At(x, y-1), g.At(x, y+1)
	w, e := g.At(x-1, y), g.At(x+1, y)
	return Corners{
		TL: CornerMaterial(c, n, w, g.At(x-1, y-1)),
		TR: CornerMaterial(c, n, e, g.At(x+1, y-1)),
		BR: CornerMaterial(c, s, e, g.At(x+1, y+1)),
		BL: CornerMaterial(c, s, w, g.At(x-1, y+1)),
	}
}

// Resolve tiles the interior of g. The result is (Size-2)² tiles, x fastest.
func (t *CornerTiler) Resolve(g *terrain.Grid) []Tile {
	n := g.Size - 2
	out := make([]Tile, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out[y*n+x] = Tile{
				Terrain:   g.At(x+1, y+1),
				TileIndex: t.tileset.Resolve(CornersAt(g, x+1, y+1)),
			}
		}
	}
	return out
}
