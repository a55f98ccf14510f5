package terrain

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultCellSize is the edge length of a seed partition cell in world tiles.
const DefaultCellSize = 100

// Seed is an island centre with its base radius, in world tiles.
type Seed struct {
	X, Y float64
	Size float64
}

// Pos returns the seed centre as a vector.
func (s Seed) Pos() mgl64.Vec2 {
	return mgl64.Vec2{s.X, s.Y}
}

// SeedKey identifies one seed: the partition cell and its index inside it.
type SeedKey struct {
	CellX, CellY int
	Index        int
}

type cellKey struct {
	x, y int
}

// SeedField deterministically places island seeds per partition cell and
// caches them. A cached key never changes value. Safe for concurrent use.
type SeedField struct {
	cfg      Config
	cellSize int

	mu    sync.Mutex
	seeds map[SeedKey]Seed
	cells map[cellKey]int // seed count per generated cell
}

// NewSeedField creates an empty field for one configuration episode.
func NewSeedField(cfg Config, cellSize int) *SeedField {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &SeedField{
		cfg:      cfg,
		cellSize: cellSize,
		seeds:    make(map[SeedKey]Seed),
		cells:    make(map[cellKey]int),
	}
}

// CellSize returns the partition cell edge length.
func (f *SeedField) CellSize() int {
	return f.cellSize
}

// Len returns the number of cached seeds.
func (f *SeedField) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seeds)
}

// Seed returns the cached seed for key, if its cell has been generated.
func (f *SeedField) Seed(key SeedKey) (Seed, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.seeds[key]
	return s, ok
}

// CellSeeds returns the seeds of one partition cell, generating and caching
// them on first access.
func (f *SeedField) CellSeeds(gx, gy int) []Seed {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cellSeedsLocked(gx, gy, nil)
}

// SeedsNear returns the seeds of every cell overlapping the chunk's world
// footprint grown by radius on each side. Order is cell X, then cell Y,
// then index within the cell.
func (f *SeedField) SeedsNear(chunkX, chunkY, chunkSize int, radius float64) []Seed {
	worldX := float64(chunkX * chunkSize)
	worldY := float64(chunkY * chunkSize)
	size := float64(f.cellSize)

	minGX := int(math.Floor((worldX - radius) / size))
	maxGX := int(math.Floor((worldX + float64(chunkSize) + radius) / size))
	minGY := int(math.Floor((worldY - radius) / size))
	maxGY := int(math.Floor((worldY + float64(chunkSize) + radius) / size))

	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Seed
	for gx := minGX; gx <= maxGX; gx++ {
		for gy := minGY; gy <= maxGY; gy++ {
			out = f.cellSeedsLocked(gx, gy, out)
		}
	}
	return out
}

func (f *SeedField) cellSeedsLocked(gx, gy int, dst []Seed) []Seed {
	ck := cellKey{gx, gy}
	n, ok := f.cells[ck]
	if !ok {
		generated := f.generateCell(gx, gy)
		for i, s := range generated {
			key := SeedKey{CellX: gx, CellY: gy, Index: i}
			if _, exists := f.seeds[key]; !exists {
				f.seeds[key] = s
			}
		}
		n = len(generated)
		f.cells[ck] = n
	}
	for i := 0; i < n; i++ {
		dst = append(dst, f.seeds[SeedKey{CellX: gx, CellY: gy, Index: i}])
	}
	return dst
}

// generateCell is a pure function of (config, gx, gy).
func (f *SeedField) generateCell(gx, gy int) []Seed {
	rng := newLCG(CellHash(gx, gy, f.cfg.Seed))
	count := SeedCount(f.cfg.IslandDensity, rng.Float)

	size := float64(f.cellSize)
	seeds := make([]Seed, 0, count)
	for range count {
		x := float64(gx)*size + rng.Float()*size
		y := float64(gy)*size + rng.Float()*size
		variation := 1 + (rng.Float()-0.5)*2*f.cfg.IslandSizeVariation
		seeds = append(seeds, Seed{X: x, Y: y, Size: f.cfg.IslandSize * variation})
	}
	return seeds
}

// SeedCount draws the number of seeds in a cell for the given average density.
func SeedCount(density float64, draw func() float64) int {
	if density < 1 {
		if draw() < density {
			return 1
		}
		return 0
	}
	n := int(math.Floor(density))
	if draw() < density-float64(n) {
		n++
	}
	return n
}
