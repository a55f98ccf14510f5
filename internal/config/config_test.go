package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tileworld/internal/terrain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvSeed, EnvIslandDensity, EnvIslandSize, EnvSizeVariation, EnvEdgeNoise, EnvWorkers, EnvLogLevel, EnvLogFormat} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tileworld.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, terrain.DefaultConfig(), cfg.TerrainParams())
}

func TestLoadWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesPartialFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "terrain:\n  island_density: 3.5\nstreaming:\n  workers: 2\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3.5, cfg.Terrain.IslandDensity)
	assert.Equal(t, 2, cfg.Streaming.Workers)
	assert.Equal(t, 14.0, cfg.Terrain.IslandSize)
	assert.Equal(t, int64(707), cfg.Terrain.Seed)
	assert.Equal(t, 32, cfg.Streaming.ChunkSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "terrain:\n  seed: 1\n  edge_noise: 0.1\n")
	t.Setenv(EnvSeed, "42")
	t.Setenv(EnvEdgeNoise, "0.4")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvLogFormat, "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Terrain.Seed)
	assert.Equal(t, 0.4, cfg.Terrain.EdgeNoise)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvIslandDensity, "lots")
	_, err := Load("")
	assert.ErrorContains(t, err, EnvIslandDensity)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "terrain: [1, 2"))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative density", func(c *Config) { c.Terrain.IslandDensity = -1 }, "IslandDensity"},
		{"huge density", func(c *Config) { c.Terrain.IslandDensity = 101 }, "IslandDensity"},
		{"nan density", func(c *Config) { c.Terrain.IslandDensity = math.NaN() }, "IslandDensity"},
		{"zero size", func(c *Config) { c.Terrain.IslandSize = 0 }, "IslandSize"},
		{"variation above one", func(c *Config) { c.Terrain.IslandSizeVariation = 1.5 }, "IslandSizeVariation"},
		{"negative edge noise", func(c *Config) { c.Terrain.EdgeNoise = -0.1 }, "EdgeNoise"},
		{"zero chunk size", func(c *Config) { c.Streaming.ChunkSize = 0 }, "ChunkSize"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }, "Level"},
		{"zoom range inverted", func(c *Config) { c.Viewer.MaxZoom = 0.1 }, "MaxZoom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateDoesNotClamp(t *testing.T) {
	cfg := Default()
	cfg.Terrain.EdgeNoise = 2
	require.Error(t, cfg.Validate())
	assert.Equal(t, 2.0, cfg.Terrain.EdgeNoise)
}

func TestRandomSeed(t *testing.T) {
	for i := 0; i < 100; i++ {
		s := RandomSeed()
		assert.GreaterOrEqual(t, s, int64(0))
		assert.Less(t, s, int64(1_000_000))
	}
}

func TestViewStateClamps(t *testing.T) {
	v := NewViewState(Default().Viewer)
	assert.Equal(t, 1.0, v.Zoom())

	v.ZoomBy(100)
	assert.Equal(t, 4.0, v.Zoom())
	v.SetZoom(0.01)
	assert.Equal(t, 0.25, v.Zoom())
	v.ZoomBy(2)
	assert.Equal(t, 0.5, v.Zoom())
}
