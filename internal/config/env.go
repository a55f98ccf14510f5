package config

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
)

// Environment variables that override file settings.
const (
	EnvSeed          = "TILEWORLD_SEED"
	EnvIslandDensity = "TILEWORLD_ISLAND_DENSITY"
	EnvIslandSize    = "TILEWORLD_ISLAND_SIZE"
	EnvSizeVariation = "TILEWORLD_SIZE_VARIATION"
	EnvEdgeNoise     = "TILEWORLD_EDGE_NOISE"
	EnvWorkers       = "TILEWORLD_WORKERS"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
)

func (c *Config) applyEnv() error {
	var err error
	if c.Terrain.Seed, err = getInt64Env(EnvSeed, c.Terrain.Seed); err != nil {
		return err
	}
	if c.Terrain.IslandDensity, err = getFloatEnv(EnvIslandDensity, c.Terrain.IslandDensity); err != nil {
		return err
	}
	if c.Terrain.IslandSize, err = getFloatEnv(EnvIslandSize, c.Terrain.IslandSize); err != nil {
		return err
	}
	if c.Terrain.IslandSizeVariation, err = getFloatEnv(EnvSizeVariation, c.Terrain.IslandSizeVariation); err != nil {
		return err
	}
	if c.Terrain.EdgeNoise, err = getFloatEnv(EnvEdgeNoise, c.Terrain.EdgeNoise); err != nil {
		return err
	}
	workers, err := getInt64Env(EnvWorkers, int64(c.Streaming.Workers))
	if err != nil {
		return err
	}
	c.Streaming.Workers = int(workers)

	c.Logging.Level = strings.ToLower(getEnv(EnvLogLevel, c.Logging.Level))
	c.Logging.Format = strings.ToLower(getEnv(EnvLogFormat, c.Logging.Format))
	return nil
}

// RandomSeed returns a fresh generation seed.
func RandomSeed() int64 {
	return rand.Int64N(1_000_000)
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt64Env(key string, defaultValue int64) (int64, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, value)
	}
	return v, nil
}

func getFloatEnv(key string, defaultValue float64) (float64, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s: %q", key, value)
	}
	return v, nil
}
