// Package matchmaking manages a pool of rated players, applies pairwise
// outcomes, reports ranks and certainty, and proposes the next matchup.
//
// The engine is synchronous and holds no locks: callers sharing one Engine
// across goroutines must serialize every call, reads included. It does not
// persist anything; replaying every NewPlayer call and then every Update call
// in their original order rebuilds identical state.
package matchmaking

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/okian/compare/internal/domain/rating"
)

const defaultRelativeEpsilon = 0.01

// PlayerID is the externally assigned, stable identifier of a player.
type PlayerID int

// Backend ranks a population of players and schedules pairwise matches.
type Backend interface {
	// NewPlayer registers id with the model's prior belief.
	// Returns ErrInvalidArgument when id < 0 and ErrAlreadyExists on reuse.
	NewPlayer(id PlayerID) error
	// OverallRating returns the ordinal rating of id.
	// Returns ErrNotFound if id is unknown.
	OverallRating(id PlayerID) (float64, error)
	// RatingCertainties maps every player to a certainty in [0, 1].
	RatingCertainties() map[PlayerID]float64
	// Ranks maps every player to its rank, 1 being best.
	Ranks() map[PlayerID]int
	// Update applies a win of winner over loser. Self-play is a no-op.
	// Returns ErrNotFound if either player is unknown.
	Update(winner, loser PlayerID) error
	// PickTwoPlayers proposes the most informative matchup.
	// Returns ErrInsufficientPlayers with fewer than two players.
	PickTwoPlayers() (PlayerID, PlayerID, error)
}

// Engine implements Backend with an expected-uncertainty-reduction matchup
// search over a pluggable rating model.
type Engine struct {
	model rating.Model
	pool  *pool

	// priorSigma is the model's prior uncertainty, captured once.
	priorSigma      float64
	relativeEpsilon float64
	matchupEpsilon  float64

	seed   int64
	seeded bool
	rng    *rand.Rand
}

var _ Backend = (*Engine)(nil)

// New creates an empty engine. The default model is openskill Plackett-Luce.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		relativeEpsilon: defaultRelativeEpsilon,
		pool:            newPool(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if math.IsNaN(e.relativeEpsilon) || e.relativeEpsilon < 0 {
		return nil, fmt.Errorf("%w: relative matchup epsilon must be >= 0, got %v", ErrInvalidArgument, e.relativeEpsilon)
	}
	if e.model == nil {
		e.model = rating.NewPlackettLuce()
	}
	if !e.seeded {
		e.seed = time.Now().UnixNano()
	}
	e.rng = rand.New(rand.NewSource(e.seed)) //nolint:gosec // tie-breaking, not security

	e.priorSigma = e.model.Uncertainty(e.model.InitialBelief())
	e.matchupEpsilon = e.priorSigma * e.relativeEpsilon

	return e, nil
}

// NewPlayer registers id with a fresh belief.
func (e *Engine) NewPlayer(id PlayerID) error {
	if id < 0 {
		return fmt.Errorf("%w: id %d is not >= 0", ErrInvalidArgument, id)
	}
	if e.pool.has(id) {
		return fmt.Errorf("%w: id %d", ErrAlreadyExists, id)
	}
	e.pool.add(id, e.model.InitialBelief())
	return nil
}

// OverallRating returns the ordinal rating of id.
func (e *Engine) OverallRating(id PlayerID) (float64, error) {
	b, err := e.pool.belief(id)
	if err != nil {
		return 0, err
	}
	return e.model.Ordinal(b), nil
}

// Update applies a win of winner over loser and stores both new beliefs.
func (e *Engine) Update(winner, loser PlayerID) error {
	if winner == loser {
		return nil
	}
	nw, nl, err := e.rate(winner, loser)
	if err != nil {
		return err
	}
	e.pool.set(winner, nw)
	e.pool.set(loser, nl)
	return nil
}

// PreviewUpdate returns the ordinal ratings winner and loser would have after
// Update(winner, loser) without changing any state. Self-play previews the
// current ratings.
func (e *Engine) PreviewUpdate(winner, loser PlayerID) (float64, float64, error) {
	if winner == loser {
		r, err := e.OverallRating(winner)
		return r, r, err
	}
	nw, nl, err := e.rate(winner, loser)
	if err != nil {
		return 0, 0, err
	}
	return e.model.Ordinal(nw), e.model.Ordinal(nl), nil
}

func (e *Engine) rate(winner, loser PlayerID) (rating.Belief, rating.Belief, error) {
	w, err := e.pool.belief(winner)
	if err != nil {
		return rating.Belief{}, rating.Belief{}, err
	}
	l, err := e.pool.belief(loser)
	if err != nil {
		return rating.Belief{}, rating.Belief{}, err
	}
	nw, nl := e.model.Rate(w, l)
	return nw, nl, nil
}

// Size returns the number of registered players.
func (e *Engine) Size() int {
	return e.pool.len()
}

// Players returns the registered IDs in creation order.
func (e *Engine) Players() []PlayerID {
	return e.pool.ids()
}

// Has reports whether id is registered.
func (e *Engine) Has(id PlayerID) bool {
	return e.pool.has(id)
}
