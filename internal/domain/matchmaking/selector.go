package matchmaking

import (
	"fmt"
	"math"

	"github.com/okian/compare/internal/domain/rating"
)

// Matchup is a candidate pair and its expected change in summed uncertainty.
type Matchup struct {
	A, B PlayerID
	EV   float64
}

// sigmaChange is the change in the pair's summed uncertainty if winner beat
// loser. Negative means the comparison would make the model more certain.
func (e *Engine) sigmaChange(winner, loser rating.Belief) float64 {
	before := e.model.Uncertainty(winner) + e.model.Uncertainty(loser)
	nw, nl := e.model.Rate(winner, loser)
	after := e.model.Uncertainty(nw) + e.model.Uncertainty(nl)
	return after - before
}

// matchupEV weighs both hypothetical outcomes of a vs b by their predicted
// probability. Nothing is stored.
func (e *Engine) matchupEV(a, b rating.Belief) float64 {
	pa, pb := e.model.PredictWin(a, b)
	return pa*e.sigmaChange(a, b) + pb*e.sigmaChange(b, a)
}

// Candidates evaluates every unordered pair in creation order and returns the
// ones whose EV lies within the matchup epsilon of the best (lowest) EV.
// The search is O(n^2) model evaluations.
func (e *Engine) Candidates() ([]Matchup, error) {
	n := e.pool.len()
	if n < 2 {
		return nil, fmt.Errorf("%w: need 2 players, have %d", ErrInsufficientPlayers, n)
	}

	all := make([]Matchup, 0, n*(n-1)/2)
	best := math.Inf(1)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ev := e.matchupEV(e.pool.beliefs[i], e.pool.beliefs[j])
			all = append(all, Matchup{A: e.pool.order[i], B: e.pool.order[j], EV: ev})
			best = math.Min(best, ev)
		}
	}

	out := all[:0]
	for _, m := range all {
		if math.Abs(m.EV-best) <= e.matchupEpsilon {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		// Only reachable when every EV is NaN.
		out = all
	}
	return out, nil
}

// PickTwoPlayers returns the most informative matchup, drawing uniformly
// among near-equal candidates with the engine's own generator.
func (e *Engine) PickTwoPlayers() (PlayerID, PlayerID, error) {
	m, _, err := e.PickMatchup()
	if err != nil {
		return 0, 0, err
	}
	return m.A, m.B, nil
}

// PickMatchup is PickTwoPlayers that also reports the chosen pair's EV and
// how many candidates it was drawn from. It consumes the generator exactly
// like PickTwoPlayers.
func (e *Engine) PickMatchup() (Matchup, int, error) {
	candidates, err := e.Candidates()
	if err != nil {
		return Matchup{}, 0, err
	}
	return candidates[e.rng.Intn(len(candidates))], len(candidates), nil
}
