package viewer

import (
	"github.com/go-gl/mathgl/mgl64"

	"tileworld/internal/input"
)

// ActionSource reports which actions are held.
type ActionSource interface {
	IsActive(input.Action) bool
}

// Controls turns held pan actions into camera motion.
type Controls struct {
	// Speed is screen pixels per frame.
	Speed float64
}

func NewControls(speed float64) *Controls {
	return &Controls{Speed: speed}
}

// Step returns this frame's pan in screen pixels. Opposite keys cancel.
func (c *Controls) Step(src ActionSource) mgl64.Vec2 {
	var v mgl64.Vec2
	if src.IsActive(input.ActionPanUp) {
		v[1]--
	}
	if src.IsActive(input.ActionPanDown) {
		v[1]++
	}
	if src.IsActive(input.ActionPanLeft) {
		v[0]--
	}
	if src.IsActive(input.ActionPanRight) {
		v[0]++
	}
	return v.Mul(c.Speed)
}

// ScreenMapper converts a cursor position to world pixels.
type ScreenMapper interface {
	ScreenToWorld(sx, sy float64) mgl64.Vec2
}

// Drag is a grab-and-pull pan: the world point under the cursor when the
// drag began stays under the cursor while it moves.
type Drag struct {
	active bool
	anchor mgl64.Vec2
}

func (d *Drag) Begin(m ScreenMapper, sx, sy float64) {
	d.active = true
	d.anchor = m.ScreenToWorld(sx, sy)
}

func (d *Drag) End() { d.active = false }

func (d *Drag) Active() bool { return d.active }

// Move returns the world offset to add to the view centre so the anchor is
// back under the cursor at (sx, sy). Zero when no drag is in progress.
func (d *Drag) Move(m ScreenMapper, sx, sy float64) mgl64.Vec2 {
	if !d.active {
		return mgl64.Vec2{}
	}
	return d.anchor.Sub(m.ScreenToWorld(sx, sy))
}
