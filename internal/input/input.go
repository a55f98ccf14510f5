package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical viewer command, independent of the physical key.
type Action int

const (
	ActionPanUp Action = iota
	ActionPanDown
	ActionPanLeft
	ActionPanRight
	ActionZoomIn
	ActionZoomOut
	ActionReseed
	ActionQuit
	ActionCount // sentinel for array sizing
)

// Manager maps keys to actions and tracks held state with per-frame edges.
// Event handlers and the frame loop may run on different goroutines.
type Manager struct {
	mu sync.RWMutex

	keyToActions map[glfw.Key][]Action

	current      [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// NewManager creates a manager with WASD and arrow panning, +/- zoom,
// R to reseed and Escape to quit.
func NewManager() *Manager {
	m := &Manager{keyToActions: make(map[glfw.Key][]Action)}

	m.BindKey(glfw.KeyW, ActionPanUp)
	m.BindKey(glfw.KeyUp, ActionPanUp)
	m.BindKey(glfw.KeyS, ActionPanDown)
	m.BindKey(glfw.KeyDown, ActionPanDown)
	m.BindKey(glfw.KeyA, ActionPanLeft)
	m.BindKey(glfw.KeyLeft, ActionPanLeft)
	m.BindKey(glfw.KeyD, ActionPanRight)
	m.BindKey(glfw.KeyRight, ActionPanRight)
	m.BindKey(glfw.KeyEqual, ActionZoomIn)
	m.BindKey(glfw.KeyKPAdd, ActionZoomIn)
	m.BindKey(glfw.KeyMinus, ActionZoomOut)
	m.BindKey(glfw.KeyKPSubtract, ActionZoomOut)
	m.BindKey(glfw.KeyR, ActionReseed)
	m.BindKey(glfw.KeyEscape, ActionQuit)
	return m
}

// BindKey adds a binding. A key may drive several actions and an action
// may have several keys.
func (m *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyToActions[key] = append(m.keyToActions[key], action)
}

// UnbindKey removes every binding of key.
func (m *Manager) UnbindKey(key glfw.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keyToActions, key)
}

// HandleKeyEvent records a key transition. Repeat counts as held.
func (m *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	actions, ok := m.keyToActions[key]
	if !ok {
		return
	}
	pressed := action == glfw.Press || action == glfw.Repeat
	for _, act := range actions {
		if pressed && !m.current[act] {
			m.justPressed[act] = true
		}
		if !pressed && m.current[act] {
			m.justReleased[act] = true
		}
		m.current[act] = pressed
	}
}

// SetKeyCallback routes window key events into m.
func (m *Manager) SetKeyCallback(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		m.HandleKeyEvent(key, action)
	})
}

// PostUpdate clears the edge flags. Call once at the end of each frame.
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.justPressed = [ActionCount]bool{}
	m.justReleased = [ActionCount]bool{}
}

// IsActive reports whether action is held.
func (m *Manager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current[action]
}

// JustPressed reports whether action went down this frame.
func (m *Manager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justPressed[action]
}

// JustReleased reports whether action went up this frame.
func (m *Manager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justReleased[action]
}
