package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"tileworld/internal/world"
)

var ErrLayerBudget = errors.New("raster: layer budget exhausted")

// Renderer keeps each chunk layer as an RGBA image in world pixel space.
// MaxLayers > 0 caps the number of live layers.
type Renderer struct {
	atlas     *Atlas
	MaxLayers int

	mu     sync.Mutex
	layers map[world.ChunkCoord]*Layer
}

func NewRenderer(atlas *Atlas) *Renderer {
	return &Renderer{atlas: atlas, layers: make(map[world.ChunkCoord]*Layer)}
}

// CreateLayer implements world.Renderer.
func (r *Renderer) CreateLayer(coord world.ChunkCoord, originX, originY float64, width, height int) (world.Layer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.MaxLayers > 0 && len(r.layers) >= r.MaxLayers {
		return nil, fmt.Errorf("%w: %d live", ErrLayerBudget, len(r.layers))
	}
	if old, ok := r.layers[coord]; ok {
		old.destroyed = true
	}
	tw, th := r.atlas.TileSize()
	l := &Layer{
		r:      r,
		coord:  coord,
		origin: image.Pt(int(originX), int(originY)),
		img:    image.NewRGBA(image.Rect(0, 0, width*tw, height*th)),
	}
	r.layers[coord] = l
	return l, nil
}

// Len returns the number of live layers.
func (r *Renderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.layers)
}

// Layer returns the live layer of coord.
func (r *Renderer) Layer(coord world.ChunkCoord) (*Layer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.layers[coord]
	return l, ok
}

// Bounds returns the union of all live layers in world pixels.
func (r *Renderer) Bounds() image.Rectangle {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b image.Rectangle
	for _, l := range r.layers {
		b = b.Union(l.Bounds())
	}
	return b
}

// ComposeOptions controls Compose.
type ComposeOptions struct {
	Scale      float64     // output pixels per world pixel, default 1
	Background color.Color // default WaterColor
	Labels     bool        // draw chunk keys and borders
}

// Compose draws the live layers that intersect view (world pixels) into a
// new image, scaled by opts.Scale with nearest-neighbour sampling.
func (r *Renderer) Compose(view image.Rectangle, opts ComposeOptions) *image.RGBA {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Background == nil {
		opts.Background = WaterColor
	}

	canvas := image.NewRGBA(image.Rect(0, 0, view.Dx(), view.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	r.mu.Lock()
	layers := make([]*Layer, 0, len(r.layers))
	for _, l := range r.layers {
		if l.Bounds().Overlaps(view) {
			layers = append(layers, l)
		}
	}
	r.mu.Unlock()
	sort.Slice(layers, func(i, j int) bool {
		a, b := layers[i].coord, layers[j].coord
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	for _, l := range layers {
		dst := l.Bounds().Sub(view.Min)
		draw.Draw(canvas, dst, l.img, image.Point{}, draw.Over)
		if opts.Labels {
			drawLabel(canvas, dst, l.coord.String())
		}
	}

	if opts.Scale == 1 {
		return canvas
	}
	w := int(float64(view.Dx()) * opts.Scale)
	h := int(float64(view.Dy()) * opts.Scale)
	out := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.NearestNeighbor.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return out
}

var labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 200}

func drawLabel(dst *image.RGBA, r image.Rectangle, text string) {
	border := image.NewUniform(labelColor)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), border, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), border, image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  dst,
		Src:  border,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(r.Min.X+3, r.Min.Y+basicfont.Face7x13.Ascent+2),
	}
	d.DrawString(text)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// Layer is one chunk's tile image.
type Layer struct {
	r         *Renderer
	coord     world.ChunkCoord
	origin    image.Point
	img       *image.RGBA
	destroyed bool
}

// PutTile implements world.Layer.
func (l *Layer) PutTile(index, x, y int) {
	if l.destroyed {
		return
	}
	a := l.r.atlas
	src := a.Rect(index)
	dst := image.Rect(x*a.tileW, y*a.tileH, (x+1)*a.tileW, (y+1)*a.tileH)
	draw.Draw(l.img, dst, a.img, src.Min, draw.Src)
}

// Destroy implements world.Layer.
func (l *Layer) Destroy() {
	l.r.mu.Lock()
	defer l.r.mu.Unlock()
	if l.destroyed {
		return
	}
	l.destroyed = true
	if cur, ok := l.r.layers[l.coord]; ok && cur == l {
		delete(l.r.layers, l.coord)
	}
}

// Bounds returns the layer rectangle in world pixels.
func (l *Layer) Bounds() image.Rectangle {
	return l.img.Bounds().Add(l.origin)
}

// Image returns the layer pixels.
func (l *Layer) Image() *image.RGBA { return l.img }
