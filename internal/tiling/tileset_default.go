package tiling

import "tileworld/internal/terrain"

// DefaultTilesetSpec describes the stock 4x4 water/grass sheet of 16px tiles.
// All-water appears twice in the sheet (6 and 15); 6 is canonical.
func DefaultTilesetSpec() TilesetSpec {
	w, g := terrain.Water, terrain.Grass
	return TilesetSpec{
		Name:       "water-grass",
		TileWidth:  16,
		TileHeight: 16,
		TileCount:  16,
		Corners: map[Corners]int{
			{g, g, w, g}: 0,
			{g, g, w, w}: 1,
			{g, g, g, w}: 2,
			{w, w, g, w}: 3,
			{w, w, w, g}: 4,
			{g, w, w, g}: 5,
			{w, w, w, w}: 6,
			{w, g, g, w}: 7,
			{w, g, w, w}: 8,
			{g, w, w, w}: 9,
			{g, w, g, g}: 10,
			{w, w, g, g}: 11,
			{w, g, g, g}: 12,
			{w, g, w, g}: 13,
			{g, w, g, w}: 14,
			{g, g, g, g}: 11,
		},
		Fallback: Fallback{
			FullWater:   6,
			FullGrass:   11,
			MostlyWater: 6,
			MostlyGrass: 12,
			Mixed:       5,
		},
	}
}

// DefaultTileset returns the validated stock tileset.
func DefaultTileset() *Tileset {
	ts, err := NewTileset(DefaultTilesetSpec())
	if err != nil {
		panic(err)
	}
	return ts
}
