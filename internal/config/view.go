package config

import "sync"

// ViewState is the viewer's live camera zoom, shared between the input
// callbacks and the frame loop.
type ViewState struct {
	mu      sync.RWMutex
	zoom    float64
	minZoom float64
	maxZoom float64
}

// NewViewState starts at zoom 1 clamped into the configured range.
func NewViewState(v ViewerConfig) *ViewState {
	s := &ViewState{zoom: 1, minZoom: v.MinZoom, maxZoom: v.MaxZoom}
	s.SetZoom(1)
	return s
}

// Zoom returns the current zoom factor.
func (s *ViewState) Zoom() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoom
}

// SetZoom sets the zoom factor, clamped to the configured range.
func (s *ViewState) SetZoom(zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if zoom < s.minZoom {
		zoom = s.minZoom
	}
	if zoom > s.maxZoom {
		zoom = s.maxZoom
	}
	s.zoom = zoom
}

// ZoomBy multiplies the zoom factor.
func (s *ViewState) ZoomBy(factor float64) {
	s.SetZoom(s.Zoom() * factor)
}
