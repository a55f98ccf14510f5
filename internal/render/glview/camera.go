package glview

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a 2D orthographic view centred on a world pixel. Zoom > 1
// magnifies. World y grows downwards, as in the tile grid.
type Camera struct {
	Center mgl64.Vec2
	Zoom   float64
	Width  int // viewport in screen pixels
	Height int
}

func NewCamera(width, height int) *Camera {
	return &Camera{Zoom: 1, Width: width, Height: height}
}

// Pan moves the centre by (dx, dy) screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.Center = c.Center.Add(mgl64.Vec2{dx, dy}.Mul(1 / c.zoom()))
}

// Visible returns the world rectangle on screen as min and max corners.
func (c *Camera) Visible() (mgl64.Vec2, mgl64.Vec2) {
	half := mgl64.Vec2{float64(c.Width), float64(c.Height)}.Mul(0.5 / c.zoom())
	return c.Center.Sub(half), c.Center.Add(half)
}

// Projection maps world pixels to clip space.
func (c *Camera) Projection() mgl32.Mat4 {
	lo, hi := c.Visible()
	// bottom and top swapped so y points down
	return mgl32.Ortho2D(float32(lo.X()), float32(hi.X()), float32(hi.Y()), float32(lo.Y()))
}

// ScreenToWorld converts a cursor position to world pixels.
func (c *Camera) ScreenToWorld(sx, sy float64) mgl64.Vec2 {
	lo, _ := c.Visible()
	return lo.Add(mgl64.Vec2{sx, sy}.Mul(1 / c.zoom()))
}

func (c *Camera) zoom() float64 {
	if c.Zoom <= 0 {
		return 1
	}
	return c.Zoom
}
