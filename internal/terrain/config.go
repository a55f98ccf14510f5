package terrain

import "math"

// Config is one generation episode. It is a value: replacing it means
// building a new SeedField and Classifier, never mutating the old ones.
type Config struct {
	// IslandDensity is the average number of island seeds per partition cell.
	IslandDensity float64
	// IslandSize is the average island radius in tiles.
	IslandSize float64
	// IslandSizeVariation scales the spread of radii around IslandSize (0-1).
	IslandSizeVariation float64
	// EdgeNoise is the amplitude of the angular coastline perturbation (0-1).
	EdgeNoise float64
	Seed      int64
	// CoastDetail adds positional perlin jitter to coastlines. Zero disables it.
	CoastDetail float64
}

// DefaultConfig returns the stock island parameters.
func DefaultConfig() Config {
	return Config{
		IslandDensity:       12.1,
		IslandSize:          14,
		IslandSizeVariation: 0.5,
		EdgeNoise:           0.2,
		Seed:                707,
	}
}

// MaxReach is the largest distance from a seed centre that can still be
// land: the widest size variation, the edge noise peak and the coast detail
// peak all applied at once.
func (c Config) MaxReach() float64 {
	size := c.IslandSize * (1 + math.Abs(c.IslandSizeVariation))
	return size * (1 + math.Abs(c.EdgeNoise)*EdgeNoisePeak) * (1 + math.Abs(c.CoastDetail))
}

// InfluenceRadius is how far outside a chunk seeds are collected for it.
// It never falls below MaxReach, so every seed that can touch a tile is seen
// by every chunk that classifies that tile.
func (c Config) InfluenceRadius() float64 {
	return max(c.IslandSize*2, c.MaxReach())
}
