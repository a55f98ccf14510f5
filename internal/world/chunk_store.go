package world

import (
	"sort"
	"sync"
)

// ChunkStore holds the resident chunks. A chunk is either wholly absent or
// present with every tile computed.
type ChunkStore struct {
	chunks map[ChunkCoord]*Chunk
	mu     sync.RWMutex
}

// NewChunkStore creates an empty store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// Get returns the chunk at coord.
func (cs *ChunkStore) Get(coord ChunkCoord) (*Chunk, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	c, ok := cs.chunks[coord]
	return c, ok
}

// Has checks if a chunk exists.
func (cs *ChunkStore) Has(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// Add inserts a chunk unless one is already stored at coord.
// Returns whether the chunk was inserted.
func (cs *ChunkStore) Add(chunk *Chunk) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, ok := cs.chunks[chunk.Coord]; ok {
		return false
	}
	cs.chunks[chunk.Coord] = chunk
	return true
}

// Remove deletes and returns the chunk at coord.
func (cs *ChunkStore) Remove(coord ChunkCoord) (*Chunk, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	c, ok := cs.chunks[coord]
	if ok {
		delete(cs.chunks, coord)
	}
	return c, ok
}

// Clear empties the store and returns what it held.
func (cs *ChunkStore) Clear() []*Chunk {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	out := make([]*Chunk, 0, len(cs.chunks))
	for coord, c := range cs.chunks {
		out = append(out, c)
		delete(cs.chunks, coord)
	}
	return out
}

// Len returns the number of resident chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// Coords returns the resident coordinates sorted by Y then X.
func (cs *ChunkStore) Coords() []ChunkCoord {
	cs.mu.RLock()
	out := make([]ChunkCoord, 0, len(cs.chunks))
	for coord := range cs.chunks {
		out = append(out, coord)
	}
	cs.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Chunks returns a snapshot of the resident chunks.
func (cs *ChunkStore) Chunks() []*Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		out = append(out, c)
	}
	return out
}

// FarFrom lists resident coordinates farther than radius (Chebyshev) from center.
func (cs *ChunkStore) FarFrom(center ChunkCoord, radius int) []ChunkCoord {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	var out []ChunkCoord
	for coord := range cs.chunks {
		if coord.Chebyshev(center) > radius {
			out = append(out, coord)
		}
	}
	return out
}
