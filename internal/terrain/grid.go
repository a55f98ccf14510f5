package terrain

// Grid is a square terrain map. Chunk grids cover the chunk plus a one-tile
// halo on every side. Cell (0,0) sits at world tile (OriginX, OriginY).
type Grid struct {
	Size             int
	OriginX, OriginY int
	cells            []Type
}

// NewGrid returns a size×size grid filled with Water.
func NewGrid(size, originX, originY int) *Grid {
	return &Grid{
		Size:    size,
		OriginX: originX,
		OriginY: originY,
		cells:   make([]Type, size*size),
	}
}

// At returns the cell at grid-local (x, y). Out-of-range access panics.
func (g *Grid) At(x, y int) Type {
	return g.cells[g.index(x, y)]
}

// Set writes the cell at grid-local (x, y).
func (g *Grid) Set(x, y int, t Type) {
	g.cells[g.index(x, y)] = t
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	c := *g
	c.cells = append([]Type(nil), g.cells...)
	return &c
}

// Crop returns a copy without the outer n rings.
func (g *Grid) Crop(n int) *Grid {
	size := g.Size - 2*n
	if n < 0 || size <= 0 {
		panic("terrain: invalid crop")
	}
	out := NewGrid(size, g.OriginX+n, g.OriginY+n)
	for y := 0; y < size; y++ {
		copy(out.cells[y*size:(y+1)*size], g.cells[(y+n)*g.Size+n:(y+n)*g.Size+n+size])
	}
	return out
}

// Count returns how many cells hold t.
func (g *Grid) Count(t Type) int {
	n := 0
	for _, c := range g.cells {
		if c == t {
			n++
		}
	}
	return n
}

// Cells exposes the backing slice, x fastest. Callers must not mutate it.
func (g *Grid) Cells() []Type {
	return g.cells
}

func (g *Grid) index(x, y int) int {
	if x < 0 || x >= g.Size || y < 0 || y >= g.Size {
		panic("terrain: grid access out of range")
	}
	return y*g.Size + x
}
