package terrain

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl64"
)

// minLandNeighbors is how many of the eight surrounding cells must be land
// for a land cell to survive cleanup.
const minLandNeighbors = 2

// coastDetailScale is the world-tile frequency of the optional perlin jitter.
const coastDetailScale = 0.08

// Classifier turns island seeds into per-tile terrain for a chunk.
type Classifier struct {
	cfg    Config
	field  *SeedField
	detail *perlin.Perlin
}

// NewClassifier binds a classifier to a seed field of the same episode.
func NewClassifier(cfg Config, field *SeedField) *Classifier {
	c := &Classifier{cfg: cfg, field: field}
	if cfg.CoastDetail > 0 {
		c.detail = perlin.NewPerlin(2, 2, 3, cfg.Seed)
	}
	return c
}

// Config returns the episode configuration.
func (c *Classifier) Config() Config {
	return c.cfg
}

// Generate builds the halo grid for chunk (chunkX, chunkY): (N+2)×(N+2)
// cells covering world tiles chunkX*N-1 .. chunkX*N+N on each axis.
// Classification runs one ring wider than the output so that cleanup sees a
// full neighbourhood for every returned cell, halo included. A halo cell
// therefore always equals the same tile in the neighbouring chunk.
func (c *Classifier) Generate(chunkX, chunkY, chunkSize int) *Grid {
	raw := c.rasterize(chunkX, chunkY, chunkSize, 2)
	cleanupThinLandmasses(raw)
	return raw.Crop(1)
}

// rasterize marks every cell inside a seed's noisy radius as Grass, over the
// chunk footprint grown by margin tiles on each side.
func (c *Classifier) rasterize(chunkX, chunkY, chunkSize, margin int) *Grid {
	size := chunkSize + 2*margin
	g := NewGrid(size, chunkX*chunkSize-margin, chunkY*chunkSize-margin)

	seeds := c.field.SeedsNear(chunkX, chunkY, chunkSize, c.cfg.InfluenceRadius()+float64(margin))
	if len(seeds) == 0 {
		return g
	}

	for y := range size {
		for x := range size {
			worldX := float64(g.OriginX + x)
			worldY := float64(g.OriginY + y)
			if c.insideAny(worldX, worldY, seeds) {
				g.Set(x, y, Grass)
			}
		}
	}
	return g
}

// insideAny reports whether the tile falls inside the first matching seed.
func (c *Classifier) insideAny(worldX, worldY float64, seeds []Seed) bool {
	tile := mgl64.Vec2{worldX, worldY}
	detail := 1.0
	if c.detail != nil {
		n := c.detail.Noise2D(worldX*coastDetailScale, worldY*coastDetailScale)
		detail += c.cfg.CoastDetail * mgl64.Clamp(n, -1, 1)
	}
	for _, s := range seeds {
		d := tile.Sub(s.Pos())
		radius := s.Size * (1 + c.cfg.EdgeNoise*EdgeNoise(math.Atan2(d.Y(), d.X()), s)) * detail
		if d.Len() < radius {
			return true
		}
	}
	return false
}

// EdgeNoisePeak bounds |EdgeNoise|: the sum of the harmonic amplitudes.
const EdgeNoisePeak = 0.3 + 0.15 + 0.1

// EdgeNoise is the angular coastline perturbation of seed s at angle.
// Three harmonics phased by the seed position give each island its own outline.
func EdgeNoise(angle float64, s Seed) float64 {
	n1 := math.Sin(angle*3+s.X*0.1) * 0.3
	n2 := math.Sin(angle*7+s.Y*0.1) * 0.15
	n3 := math.Sin(angle*11+(s.X+s.Y)*0.1) * 0.1
	return n1 + n2 + n3
}

// cleanupThinLandmasses reverts land cells with too few land neighbours.
// Counts come from a snapshot taken before any change, and the pass runs
// once. The outer ring has no full neighbourhood and is left as is; callers
// crop it away.
func cleanupThinLandmasses(g *Grid) {
	snapshot := g.Clone()
	for y := 1; y < g.Size-1; y++ {
		for x := 1; x < g.Size-1; x++ {
			if snapshot.At(x, y) != Grass {
				continue
			}
			if landNeighbors(snapshot, x, y) < minLandNeighbors {
				g.Set(x, y, Water)
			}
		}
	}
}

func landNeighbors(g *Grid, x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= g.Size || ny < 0 || ny >= g.Size {
				continue
			}
			if g.At(nx, ny) == Grass {
				n++
			}
		}
	}
	return n
}
