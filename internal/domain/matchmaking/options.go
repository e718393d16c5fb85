package matchmaking

import "github.com/okian/compare/internal/domain/rating"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithModel sets the rating model. Nil is ignored.
func WithModel(model rating.Model) Option {
	return func(e *Engine) {
		if model != nil {
			e.model = model
		}
	}
}

// WithSeed makes matchup tie-breaking reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.seeded = true
	}
}

// WithRelativeMatchupEpsilon sets how close two matchup EVs must be, relative
// to the prior uncertainty, to be treated as equally good. A value of 0.1 with
// a prior sigma of 2 makes EVs within 0.2 (inclusive) equal. Must be >= 0;
// New rejects anything else.
func WithRelativeMatchupEpsilon(eps float64) Option {
	return func(e *Engine) {
		e.relativeEpsilon = eps
	}
}
