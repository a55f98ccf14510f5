package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tileworld/internal/tiling"
)

// tilesetFile is the YAML layout of a tileset descriptor:
//
//	name: islands
//	tile_width: 16
//	tile_height: 16
//	tile_count: 16
//	corners:
//	  GGWG: 0
//	  ...
//	fallback:
//	  full_water: 6
//	  ...
type tilesetFile struct {
	Name       string          `yaml:"name"`
	TileWidth  int             `yaml:"tile_width"`
	TileHeight int             `yaml:"tile_height"`
	TileCount  int             `yaml:"tile_count"`
	Corners    map[string]int  `yaml:"corners"`
	Fallback   tiling.Fallback `yaml:"fallback"`
}

// LoadTileset reads a tileset descriptor. An empty path returns the
// built-in table.
func LoadTileset(path string) (*tiling.Tileset, error) {
	if path == "" {
		return tiling.DefaultTileset(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tileset descriptor: %w", err)
	}
	return ParseTileset(data)
}

// ParseTileset decodes and validates a YAML tileset descriptor.
func ParseTileset(data []byte) (*tiling.Tileset, error) {
	var f tilesetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse tileset descriptor: %w", err)
	}

	spec := tiling.TilesetSpec{
		Name:       f.Name,
		TileWidth:  f.TileWidth,
		TileHeight: f.TileHeight,
		TileCount:  f.TileCount,
		Corners:    make(map[tiling.Corners]int, len(f.Corners)),
		Fallback:   f.Fallback,
	}
	for key, idx := range f.Corners {
		c, err := tiling.ParseCorners(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("%w: corner key %q: %v", tiling.ErrInvalidTileset, key, err)
		}
		if _, dup := spec.Corners[c]; dup {
			return nil, fmt.Errorf("%w: corner key %q listed twice", tiling.ErrInvalidTileset, key)
		}
		spec.Corners[c] = idx
	}
	return tiling.NewTileset(spec)
}
