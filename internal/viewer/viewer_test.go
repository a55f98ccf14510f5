package viewer

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"tileworld/internal/input"
)

type heldSet map[input.Action]bool

func (h heldSet) IsActive(a input.Action) bool { return h[a] }

func TestControlsStep(t *testing.T) {
	c := NewControls(5)
	held := heldSet{}
	assert.Equal(t, mgl64.Vec2{0, 0}, c.Step(held))

	held[input.ActionPanRight] = true
	held[input.ActionPanUp] = true
	assert.Equal(t, mgl64.Vec2{5, -5}, c.Step(held))

	held[input.ActionPanLeft] = true
	assert.Equal(t, mgl64.Vec2{0, -5}, c.Step(held))

	delete(held, input.ActionPanUp)
	delete(held, input.ActionPanLeft)
	assert.Equal(t, mgl64.Vec2{5, 0}, c.Step(held))
}

// view maps the screen like an orthographic camera: 100x100 pixels around
// center, magnified by zoom.
type view struct {
	center mgl64.Vec2
	zoom   float64
}

func (v *view) ScreenToWorld(sx, sy float64) mgl64.Vec2 {
	return v.center.Add(mgl64.Vec2{sx - 50, sy - 50}.Mul(1 / v.zoom))
}

func TestDragKeepsAnchorUnderCursor(t *testing.T) {
	v := &view{zoom: 2}
	var d Drag
	assert.Equal(t, mgl64.Vec2{}, d.Move(v, 10, 10), "no drag in progress")

	d.Begin(v, 60, 50)
	anchor := v.ScreenToWorld(60, 50)
	assert.True(t, d.Active())

	for _, p := range [][2]float64{{40, 50}, {0, 0}, {90, 20}} {
		v.center = v.center.Add(d.Move(v, p[0], p[1]))
		assert.True(t, anchor.ApproxEqual(v.ScreenToWorld(p[0], p[1])), "cursor %v", p)
	}
	assert.Equal(t, mgl64.Vec2{-15, 15}, v.center)

	d.End()
	assert.False(t, d.Active())
	assert.Equal(t, mgl64.Vec2{}, d.Move(v, 0, 0))
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestLimiterSchedule(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	f := NewFPSLimiter(50)
	f.now = clock.now

	target, ok := f.advance()
	assert.True(t, ok)
	assert.Equal(t, 20*time.Millisecond, target)
	assert.Equal(t, clock.t.Add(20*time.Millisecond), f.next)

	f.advance()
	assert.Equal(t, clock.t.Add(40*time.Millisecond), f.next)

	// a long hitch resets the schedule instead of bursting
	clock.t = clock.t.Add(time.Second)
	f.resync(target)
	assert.Equal(t, clock.t.Add(20*time.Millisecond), f.next)
}

func TestLimiterDisabled(t *testing.T) {
	f := NewFPSLimiter(0)
	_, ok := f.advance()
	assert.False(t, ok)

	start := time.Now()
	f.Wait()
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiterWaits(t *testing.T) {
	f := NewFPSLimiter(100)
	start := time.Now()
	f.Wait()
	f.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
