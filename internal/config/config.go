package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tileworld/internal/terrain"
)

// Config holds every setting of the tile world tools.
type Config struct {
	Terrain   TerrainConfig   `yaml:"terrain"`
	Streaming StreamingConfig `yaml:"streaming"`
	Tileset   TilesetConfig   `yaml:"tileset"`
	Logging   LoggingConfig   `yaml:"logging"`
	Viewer    ViewerConfig    `yaml:"viewer"`
}

// TerrainConfig holds the island generation parameters.
type TerrainConfig struct {
	Seed                int64   `yaml:"seed"`
	IslandDensity       float64 `yaml:"island_density" validate:"gte=0,lte=100"`
	IslandSize          float64 `yaml:"island_size" validate:"gt=0,lte=1000"`
	IslandSizeVariation float64 `yaml:"island_size_variation" validate:"gte=0,lte=1"`
	EdgeNoise           float64 `yaml:"edge_noise" validate:"gte=0,lte=1"`
	CoastDetail         float64 `yaml:"coast_detail" validate:"gte=0,lte=1"`
}

// StreamingConfig holds chunk streaming settings.
type StreamingConfig struct {
	ChunkSize  int `yaml:"chunk_size" validate:"gte=1,lte=256"`
	BaseRadius int `yaml:"base_radius" validate:"gte=1,lte=32"`
	CellSize   int `yaml:"cell_size" validate:"gte=1"`
	Workers    int `yaml:"workers" validate:"gte=0,lte=64"` // 0 generates on the caller
	QueueSize  int `yaml:"queue_size" validate:"gte=1"`
}

// TilesetConfig points at the sprite sheet and its descriptor. Empty paths
// select the built-in table and a generated atlas.
type TilesetConfig struct {
	Image      string `yaml:"image"`
	Descriptor string `yaml:"descriptor"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// ViewerConfig holds interactive viewer settings.
type ViewerConfig struct {
	Width     int     `yaml:"width" validate:"gte=64"`
	Height    int     `yaml:"height" validate:"gte=64"`
	PanSpeed  float64 `yaml:"pan_speed" validate:"gt=0"` // screen pixels per frame
	MinZoom   float64 `yaml:"min_zoom" validate:"gt=0"`
	MaxZoom   float64 `yaml:"max_zoom" validate:"gtefield=MinZoom"`
	TargetFPS int     `yaml:"target_fps" validate:"gte=0"` // 0 leaves pacing to vsync
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	t := terrain.DefaultConfig()
	return &Config{
		Terrain: TerrainConfig{
			Seed:                t.Seed,
			IslandDensity:       t.IslandDensity,
			IslandSize:          t.IslandSize,
			IslandSizeVariation: t.IslandSizeVariation,
			EdgeNoise:           t.EdgeNoise,
			CoastDetail:         t.CoastDetail,
		},
		Streaming: StreamingConfig{
			ChunkSize:  32,
			BaseRadius: 2,
			CellSize:   terrain.DefaultCellSize,
			Workers:    0,
			QueueSize:  1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Viewer: ViewerConfig{
			Width:     1280,
			Height:    720,
			PanSpeed:  5,
			MinZoom:   0.25,
			MaxZoom:   4,
			TargetFPS: 60,
		},
	}
}

// Load builds the configuration from defaults, an optional .env file, the
// YAML file at path (skipped when path is empty) and environment overrides,
// in that order. The result is validated.
func Load(path string) (*Config, error) {
	// .env is optional, variables may come from the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate rejects out-of-range settings. Values are never clamped.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return fmt.Errorf("%s: %s", fe.Namespace(), validationMessage(fe))
		}
		return err
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("must not be below %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// TerrainParams converts the terrain section into generator parameters.
func (c *Config) TerrainParams() terrain.Config {
	return terrain.Config{
		Seed:                c.Terrain.Seed,
		IslandDensity:       c.Terrain.IslandDensity,
		IslandSize:          c.Terrain.IslandSize,
		IslandSizeVariation: c.Terrain.IslandSizeVariation,
		EdgeNoise:           c.Terrain.EdgeNoise,
		CoastDetail:         c.Terrain.CoastDetail,
	}
}
