package glview

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl64"

	"tileworld/internal/profiling"
	"tileworld/internal/render/raster"
	"tileworld/internal/world"
)

const ShadersDir = "assets/shaders/tiles"

var (
	VertShader = filepath.Join(ShadersDir, "tiles.vert")
	FragShader = filepath.Join(ShadersDir, "tiles.frag")
)

var ErrLayerBudget = errors.New("glview: layer budget exhausted")

// Renderer draws chunk layers as textured quads, one VAO per layer. All
// methods must run on the goroutine that owns the GL context.
type Renderer struct {
	shader    *Shader
	texture   uint32
	grid      atlasGrid
	layers    map[world.ChunkCoord]*Layer
	MaxLayers int
}

// NewRenderer compiles the tile shader and uploads the atlas.
func NewRenderer(atlas *raster.Atlas) (*Renderer, error) {
	shader, err := NewShader(VertShader, FragShader)
	if err != nil {
		return nil, err
	}
	cols, rows := atlas.Grid()
	tw, th := atlas.TileSize()
	return &Renderer{
		shader:  shader,
		texture: uploadTexture(atlas.Image()),
		grid:    atlasGrid{cols: cols, rows: rows, tileW: tw, tileH: th},
		layers:  make(map[world.ChunkCoord]*Layer),
	}, nil
}

// CreateLayer implements world.Renderer.
func (r *Renderer) CreateLayer(coord world.ChunkCoord, originX, originY float64, width, height int) (world.Layer, error) {
	if r.MaxLayers > 0 && len(r.layers) >= r.MaxLayers {
		return nil, fmt.Errorf("%w: %d live", ErrLayerBudget, len(r.layers))
	}

	l := &Layer{
		r:        r,
		coord:    coord,
		origin:   mgl64.Vec2{originX, originY},
		size:     mgl64.Vec2{float64(width * r.grid.tileW), float64(height * r.grid.tileH)},
		width:    width,
		vertices: make([]float32, width*height*floatsPerTile),
		dirty:    true,
	}
	gl.GenVertexArrays(1, &l.vao)
	gl.GenBuffers(1, &l.vbo)
	if l.vao == 0 || l.vbo == 0 {
		l.release()
		return nil, fmt.Errorf("glview: could not allocate buffers for chunk %s", coord)
	}

	gl.BindVertexArray(l.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(l.vertices)*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 4*4, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 4*4, 2*4)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	if old, ok := r.layers[coord]; ok {
		old.Destroy()
	}
	r.layers[coord] = l
	return l, nil
}

// Len returns the number of live layers.
func (r *Renderer) Len() int { return len(r.layers) }

// Draw renders every layer that intersects the camera view.
func (r *Renderer) Draw(cam *Camera) int {
	defer profiling.Track("glview.Draw")()

	r.shader.Use()
	proj := cam.Projection()
	r.shader.SetMatrix4("projection", &proj[0])
	r.shader.SetInt("atlas", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)

	lo, hi := cam.Visible()
	drawn := 0
	for _, l := range r.layers {
		if !l.overlaps(lo, hi) {
			continue
		}
		l.upload()
		r.shader.SetVector2("origin", float32(l.origin.X()), float32(l.origin.Y()))
		gl.BindVertexArray(l.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(l.vertices)/4))
		drawn++
	}
	gl.BindVertexArray(0)
	return drawn
}

// Dispose releases every layer, the atlas texture and the program.
func (r *Renderer) Dispose() {
	for _, l := range r.layers {
		l.Destroy()
	}
	if r.texture != 0 {
		gl.DeleteTextures(1, &r.texture)
		r.texture = 0
	}
	r.shader.Delete()
}

// Layer is one chunk's vertex buffer.
type Layer struct {
	r        *Renderer
	coord    world.ChunkCoord
	origin   mgl64.Vec2
	size     mgl64.Vec2
	width    int
	vao, vbo uint32
	vertices []float32
	dirty    bool
}

// PutTile implements world.Layer.
func (l *Layer) PutTile(index, x, y int) {
	off := (y*l.width + x) * floatsPerTile
	l.r.grid.writeTileQuad(l.vertices[off:off+floatsPerTile], index, x, y)
	l.dirty = true
}

// Destroy implements world.Layer.
func (l *Layer) Destroy() {
	if cur, ok := l.r.layers[l.coord]; ok && cur == l {
		delete(l.r.layers, l.coord)
	}
	l.release()
}

func (l *Layer) release() {
	if l.vao != 0 {
		gl.DeleteVertexArrays(1, &l.vao)
		l.vao = 0
	}
	if l.vbo != 0 {
		gl.DeleteBuffers(1, &l.vbo)
		l.vbo = 0
	}
}

func (l *Layer) upload() {
	if !l.dirty {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(l.vertices)*4, gl.Ptr(l.vertices))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	l.dirty = false
}

func (l *Layer) overlaps(lo, hi mgl64.Vec2) bool {
	end := l.origin.Add(l.size)
	return l.origin.X() < hi.X() && end.X() > lo.X() &&
		l.origin.Y() < hi.Y() && end.Y() > lo.Y()
}
