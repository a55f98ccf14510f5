package tiling

import (
	"errors"
	"fmt"

	"tileworld/internal/terrain"
)

// ErrInvalidTileset is wrapped by every tileset validation failure.
var ErrInvalidTileset = errors.New("invalid tileset")

// Fallback holds the indices used when a corner combination is not in the
// table, chosen by majority vote.
type Fallback struct {
	FullWater   int `yaml:"full_water"`
	FullGrass   int `yaml:"full_grass"`
	MostlyWater int `yaml:"mostly_water"`
	MostlyGrass int `yaml:"mostly_grass"`
	Mixed       int `yaml:"mixed"`
}

// TilesetSpec is the unvalidated description of a tileset.
type TilesetSpec struct {
	Name       string
	TileWidth  int
	TileHeight int
	TileCount  int
	Corners    map[Corners]int
	Fallback   Fallback
}

// Tileset is an immutable, validated corner table.
type Tileset struct {
	name       string
	tileWidth  int
	tileHeight int
	tileCount  int
	table      map[Corners]int
	fallback   Fallback
}

// NewTileset validates spec: positive dimensions, all 16 water/grass
// combinations present and every index inside the tileset.
func NewTileset(spec TilesetSpec) (*Tileset, error) {
	if spec.TileWidth <= 0 || spec.TileHeight <= 0 {
		return nil, fmt.Errorf("%w: tile size %dx%d", ErrInvalidTileset, spec.TileWidth, spec.TileHeight)
	}
	if spec.TileCount <= 0 {
		return nil, fmt.Errorf("%w: tile count %d", ErrInvalidTileset, spec.TileCount)
	}
	inRange := func(i int) bool { return i >= 0 && i < spec.TileCount }

	table := make(map[Corners]int, len(spec.Corners))
	for k, idx := range spec.Corners {
		if !inRange(idx) {
			return nil, fmt.Errorf("%w: corners %s map to %d, outside [0,%d)", ErrInvalidTileset, k, idx, spec.TileCount)
		}
		table[k] = idx
	}
	for _, k := range AllWaterGrass() {
		if _, ok := table[k]; !ok {
			return nil, fmt.Errorf("%w: no tile for corners %s", ErrInvalidTileset, k)
		}
	}

	fb := spec.Fallback
	for name, idx := range map[string]int{
		"full_water":   fb.FullWater,
		"full_grass":   fb.FullGrass,
		"mostly_water": fb.MostlyWater,
		"mostly_grass": fb.MostlyGrass,
		"mixed":        fb.Mixed,
	} {
		if !inRange(idx) {
			return nil, fmt.Errorf("%w: fallback %s = %d, outside [0,%d)", ErrInvalidTileset, name, idx, spec.TileCount)
		}
	}

	return &Tileset{
		name:       spec.Name,
		tileWidth:  spec.TileWidth,
		tileHeight: spec.TileHeight,
		tileCount:  spec.TileCount,
		table:      table,
		fallback:   fb,
	}, nil
}

func (t *Tileset) Name() string { return t.name }

// TileWidth and TileHeight are the sprite size in pixels.
func (t *Tileset) TileWidth() int { return t.tileWidth }

func (t *Tileset) TileHeight() int { return t.tileHeight }

func (t *Tileset) TileCount() int { return t.tileCount }

// Lookup returns the table entry for c without falling back.
func (t *Tileset) Lookup(c Corners) (int, bool) {
	idx, ok := t.table[c]
	return idx, ok
}

// Resolve returns the tile index for c: the exact table entry when present,
// else the majority-vote fallback.
func (t *Tileset) Resolve(c Corners) int {
	if idx, ok := t.table[c]; ok {
		return idx
	}
	water := c.count(terrain.Water)
	grass := c.count(terrain.Grass)
	switch {
	case water == 4:
		return t.fallback.FullWater
	case grass == 4:
		return t.fallback.FullGrass
	case water >= 3:
		return t.fallback.MostlyWater
	case grass >= 3:
		return t.fallback.MostlyGrass
	default:
		return t.fallback.Mixed
	}
}
