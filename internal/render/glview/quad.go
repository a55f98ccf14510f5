package glview

// floatsPerTile is two triangles of (x, y, u, v).
const floatsPerTile = 6 * 4

// atlasGrid describes how sprite indices map onto the atlas texture.
type atlasGrid struct {
	cols, rows   int
	tileW, tileH int
}

// uv returns the texture rectangle of sprite index.
func (a atlasGrid) uv(index int) (u0, v0, u1, v1 float32) {
	col, row := index%a.cols, index/a.cols
	u0 = float32(col) / float32(a.cols)
	v0 = float32(row) / float32(a.rows)
	u1 = float32(col+1) / float32(a.cols)
	v1 = float32(row+1) / float32(a.rows)
	return
}

// writeTileQuad fills dst with the quad of tile (x, y) in layer-local pixels.
func (a atlasGrid) writeTileQuad(dst []float32, index, x, y int) {
	x0, y0 := float32(x*a.tileW), float32(y*a.tileH)
	x1, y1 := x0+float32(a.tileW), y0+float32(a.tileH)
	u0, v0, u1, v1 := a.uv(index)
	copy(dst, []float32{
		x0, y0, u0, v0,
		x1, y0, u1, v0,
		x1, y1, u1, v1,

		x0, y0, u0, v0,
		x1, y1, u1, v1,
		x0, y1, u0, v1,
	})
}
