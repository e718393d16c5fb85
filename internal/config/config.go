// Package config defines service configuration and its layered loading.
package config

import (
	"fmt"
	"math"
	"strings"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MusicFolder, when set, starts a new session from the files in it and
	// replaces the stored history. Empty resumes the stored session.
	MusicFolder string `koanf:"music_folder"`

	// Store selects the history backend: memory, postgres or redis.
	Store          string `koanf:"store"`
	PostgresURL    string `koanf:"postgres_url"`
	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	// RNGSeed makes matchup tie-breaks reproducible. Nil seeds from the clock.
	RNGSeed *int64 `koanf:"rng_seed"`

	// RelativeMatchupEpsilon is the tie window around the best matchup, as a
	// fraction of the prior uncertainty.
	RelativeMatchupEpsilon float64 `koanf:"relative_matchup_epsilon"`

	// Plackett-Luce prior and dynamics.
	RatingMu    float64 `koanf:"rating_mu"`
	RatingSigma float64 `koanf:"rating_sigma"`
	RatingZ     int     `koanf:"rating_z"`
	RatingTau   float64 `koanf:"rating_tau"`
	RatingBeta  float64 `koanf:"rating_beta"`

	// DedupeSize bounds how many match IDs are remembered in memory. 0 is
	// unbounded. The store rejects older repeats either way.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// AllowedOrigins lists CORS origins allowed to call the API.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		Store:                  StoreMemory,
		RedisAddr:              "localhost:6379",
		RedisKeyPrefix:         "compare",
		RelativeMatchupEpsilon: 0.01,
		RatingMu:               25,
		RatingSigma:            25.0 / 3,
		RatingZ:                3,
		RatingTau:              25.0 / 300,
		RatingBeta:             25.0 / 6,
		DedupeSize:             50_000,
		MaxLeaderboardLimit:    1000,
		AllowedOrigins:         []string{"http://localhost:5173"},
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case math.IsNaN(c.RelativeMatchupEpsilon) || c.RelativeMatchupEpsilon < 0:
		return fmt.Errorf("%w: relative_matchup_epsilon must be >= 0", ErrInvalidConfig)
	case !(c.RatingSigma > 0):
		return fmt.Errorf("%w: rating_sigma must be > 0", ErrInvalidConfig)
	case c.RatingZ <= 0:
		return fmt.Errorf("%w: rating_z must be > 0", ErrInvalidConfig)
	case c.RatingTau < 0:
		return fmt.Errorf("%w: rating_tau must be >= 0", ErrInvalidConfig)
	case !(c.RatingBeta > 0):
		return fmt.Errorf("%w: rating_beta must be > 0", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must be >= 0", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be > 0", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Store) {
	case StoreMemory:
	case StorePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("%w: postgres_url is required for the postgres store", ErrInvalidConfig)
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	return nil
}
