package simulate

import (
	"fmt"
	"math"

	"github.com/okian/compare/internal/domain/matchmaking"
)

// Defaults for Config.
const (
	DefaultSongs       = 20
	DefaultComparisons = 200
	DefaultCheckpoint  = 20
	DefaultNoise       = 1.0
)

// Config describes one simulated listening session.
type Config struct {
	Songs       int     // pool size
	Comparisons int     // verdicts to submit
	Checkpoint  int     // report every N verdicts; 0 reports only the end
	Noise       float64 // Bradley-Terry temperature; 0 means the stronger song always wins
	Seed        int64   // drives hidden strengths, verdicts and the engine
	Epsilon     float64 // relative matchup epsilon passed to the engine

	// EngineOptions are appended after the seed and epsilon options.
	EngineOptions []matchmaking.Option
}

// DefaultConfig returns a small noisy session.
func DefaultConfig() Config {
	return Config{
		Songs:       DefaultSongs,
		Comparisons: DefaultComparisons,
		Checkpoint:  DefaultCheckpoint,
		Noise:       DefaultNoise,
		Seed:        1,
		Epsilon:     0.01,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Songs < 2:
		return fmt.Errorf("%w: songs must be >= 2, got %d", ErrInvalidConfig, c.Songs)
	case c.Comparisons < 0:
		return fmt.Errorf("%w: comparisons must be >= 0, got %d", ErrInvalidConfig, c.Comparisons)
	case c.Checkpoint < 0:
		return fmt.Errorf("%w: checkpoint must be >= 0, got %d", ErrInvalidConfig, c.Checkpoint)
	case math.IsNaN(c.Noise) || c.Noise < 0:
		return fmt.Errorf("%w: noise must be >= 0, got %v", ErrInvalidConfig, c.Noise)
	case math.IsNaN(c.Epsilon) || c.Epsilon < 0:
		return fmt.Errorf("%w: epsilon must be >= 0, got %v", ErrInvalidConfig, c.Epsilon)
	}
	return nil
}
