package world

import (
	"errors"
	"sync"
)

var errLayerFull = errors.New("layer budget exhausted")

type fakeLayer struct {
	coord     ChunkCoord
	x, y      float64
	tiles     map[[2]int]int
	destroyed bool
	r         *fakeRenderer
}

func (l *fakeLayer) PutTile(index, x, y int) {
	l.tiles[[2]int{x, y}] = index
}

func (l *fakeLayer) Destroy() {
	if l.destroyed {
		panic("layer destroyed twice")
	}
	l.destroyed = true
	l.r.mu.Lock()
	l.r.destroyed++
	l.r.mu.Unlock()
}

// fakeRenderer records layer allocations. failures > 0 makes that many
// CreateLayer calls fail before succeeding again.
type fakeRenderer struct {
	mu        sync.Mutex
	created   int
	destroyed int
	failures  int
	layers    []*fakeLayer
}

func (r *fakeRenderer) CreateLayer(coord ChunkCoord, x, y float64, _, _ int) (Layer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return nil, errLayerFull
	}
	l := &fakeLayer{coord: coord, x: x, y: y, tiles: make(map[[2]int]int), r: r}
	r.created++
	r.layers = append(r.layers, l)
	return l, nil
}

func (r *fakeRenderer) live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created - r.destroyed
}
