// Package rating defines the skill model contract consumed by the
// matchmaking engine and a Plackett-Luce implementation of it.
package rating

// Belief is a skill estimate held for one rated entity.
type Belief struct {
	// Mu is the estimated skill.
	Mu float64
	// Sigma is the uncertainty of Mu.
	Sigma float64
}

// Model is a statistical 1-vs-1 skill model. Implementations must be pure:
// the same inputs always produce the same outputs and no input is mutated.
type Model interface {
	// InitialBelief returns the prior belief given to every new entity.
	InitialBelief() Belief
	// Rate applies a 1-vs-1 outcome and returns the updated beliefs.
	Rate(winner, loser Belief) (Belief, Belief)
	// PredictWin returns the win probabilities of a and b; they sum to 1.
	PredictWin(a, b Belief) (float64, float64)
	// Ordinal collapses a belief into one comparable scalar.
	Ordinal(b Belief) float64
	// Uncertainty returns the non-negative uncertainty of a belief.
	Uncertainty(b Belief) float64
}
