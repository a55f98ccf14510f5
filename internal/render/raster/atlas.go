package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"tileworld/internal/terrain"
	"tileworld/internal/tiling"
)

var ErrAtlasTooSmall = errors.New("raster: atlas has fewer tiles than the tileset")

// Palette colours of the generated atlas.
var (
	WaterColor = color.RGBA{R: 46, G: 98, B: 188, A: 255}
	GrassColor = color.RGBA{R: 84, G: 164, B: 70, A: 255}
	SandColor  = color.RGBA{R: 222, G: 204, B: 142, A: 255}
)

// Atlas is a sprite sheet sliced into equally sized tiles, row-major.
type Atlas struct {
	img   *image.RGBA
	tileW int
	tileH int
	cols  int
	count int
}

// NewAtlas slices img into tiles of the tileset's size.
func NewAtlas(img image.Image, ts *tiling.Tileset) (*Atlas, error) {
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	tw, th := ts.TileWidth(), ts.TileHeight()
	cols := rgba.Bounds().Dx() / tw
	rows := rgba.Bounds().Dy() / th
	if cols*rows < ts.TileCount() {
		return nil, fmt.Errorf("%w: %dx%d sheet holds %d tiles of %dx%d, need %d",
			ErrAtlasTooSmall, rgba.Bounds().Dx(), rgba.Bounds().Dy(), cols*rows, tw, th, ts.TileCount())
	}
	return &Atlas{img: rgba, tileW: tw, tileH: th, cols: cols, count: ts.TileCount()}, nil
}

// LoadAtlas decodes a sprite sheet from disk.
func LoadAtlas(path string, ts *tiling.Tileset) (*Atlas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tileset image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tileset image: %w", err)
	}
	return NewAtlas(img, ts)
}

// GenerateAtlas paints a flat-colour sheet from the tileset's corner table:
// each sprite is split into quadrants coloured by its corner materials.
// Indices missing from the table are drawn as water.
func GenerateAtlas(ts *tiling.Tileset) *Atlas {
	tw, th := ts.TileWidth(), ts.TileHeight()
	cols := 4
	rows := (ts.TileCount() + cols - 1) / cols
	img := image.NewRGBA(image.Rect(0, 0, cols*tw, rows*th))

	painted := make(map[int]tiling.Corners, ts.TileCount())
	for _, c := range tiling.AllWaterGrass() {
		idx, ok := ts.Lookup(c)
		if !ok {
			continue
		}
		if _, seen := painted[idx]; !seen {
			painted[idx] = c
		}
	}

	allWater := tiling.Corners{TL: terrain.Water, TR: terrain.Water, BR: terrain.Water, BL: terrain.Water}
	for idx := 0; idx < ts.TileCount(); idx++ {
		c, ok := painted[idx]
		if !ok {
			c = allWater
		}
		x0, y0 := (idx%cols)*tw, (idx/cols)*th
		hw, hh := tw/2, th/2
		quads := []struct {
			r image.Rectangle
			t terrain.Type
		}{
			{image.Rect(x0, y0, x0+hw, y0+hh), c.TL},
			{image.Rect(x0+hw, y0, x0+tw, y0+hh), c.TR},
			{image.Rect(x0+hw, y0+hh, x0+tw, y0+th), c.BR},
			{image.Rect(x0, y0+hh, x0+hw, y0+th), c.BL},
		}
		for _, q := range quads {
			draw.Draw(img, q.r, image.NewUniform(TerrainColor(q.t)), image.Point{}, draw.Src)
		}
	}
	return &Atlas{img: img, tileW: tw, tileH: th, cols: cols, count: ts.TileCount()}
}

// TerrainColor returns the palette colour of t.
func TerrainColor(t terrain.Type) color.RGBA {
	switch t {
	case terrain.Grass:
		return GrassColor
	case terrain.Sand:
		return SandColor
	default:
		return WaterColor
	}
}

// Image returns the whole sheet.
func (a *Atlas) Image() *image.RGBA { return a.img }

func (a *Atlas) TileSize() (int, int) { return a.tileW, a.tileH }

func (a *Atlas) Len() int { return a.count }

// Rect returns the sheet rectangle of tile index.
func (a *Atlas) Rect(index int) image.Rectangle {
	if index < 0 || index >= a.count {
		panic(fmt.Sprintf("raster: tile index %d outside atlas of %d", index, a.count))
	}
	x, y := (index%a.cols)*a.tileW, (index/a.cols)*a.tileH
	return image.Rect(x, y, x+a.tileW, y+a.tileH)
}

// Grid returns the sheet layout in tiles.
func (a *Atlas) Grid() (cols, rows int) {
	return a.cols, a.img.Bounds().Dy() / a.tileH
}
