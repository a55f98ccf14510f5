package tiling

import (
	"fmt"

	"tileworld/internal/terrain"
)

// Corners holds the material at each geometric corner of a tile,
// clockwise from top-left.
type Corners struct {
	TL, TR, BR, BL terrain.Type
}

// ParseCorners reads the four-letter descriptor form, e.g. "GGWG".
func ParseCorners(s string) (Corners, error) {
	if len(s) != 4 {
		return Corners{}, fmt.Errorf("corner key %q: want 4 letters", s)
	}
	var out [4]terrain.Type
	for i := 0; i < 4; i++ {
		switch s[i] {
		case 'W', 'w':
			out[i] = terrain.Water
		case 'G', 'g':
			out[i] = terrain.Grass
		case 'S', 's':
			out[i] = terrain.Sand
		default:
			return Corners{}, fmt.Errorf("corner key %q: unknown material %q", s, s[i])
		}
	}
	return Corners{TL: out[0], TR: out[1], BR: out[2], BL: out[3]}, nil
}

func (c Corners) String() string {
	return string([]byte{c.TL.Letter(), c.TR.Letter(), c.BR.Letter(), c.BL.Letter()})
}

func (c Corners) count(t terrain.Type) int {
	n := 0
	for _, m := range [4]terrain.Type{c.TL, c.TR, c.BR, c.BL} {
		if m == t {
			n++
		}
	}
	return n
}

// AllWaterGrass enumerates the 16 water/grass corner combinations.
func AllWaterGrass() []Corners {
	out := make([]Corners, 0, 16)
	pick := func(bit int) terrain.Type {
		if bit != 0 {
			return terrain.Grass
		}
		return terrain.Water
	}
	for mask := 0; mask < 16; mask++ {
		out = append(out, Corners{
			TL: pick(mask & 8),
			TR: pick(mask & 4),
			BR: pick(mask & 2),
			BL: pick(mask & 1),
		})
	}
	return out
}

// CornerMaterial resolves the corner shared by a cell, its horizontal and
// vertical neighbours and the diagonal between them. Any water wins.
func CornerMaterial(center, horizontal, vertical, diagonal terrain.Type) terrain.Type {
	if center == terrain.Water || horizontal == terrain.Water ||
		vertical == terrain.Water || diagonal == terrain.Water {
		return terrain.Water
	}
	return terrain.Grass
}
