package rating

import (
	"github.com/intinig/go-openskill/rating"
	"github.com/intinig/go-openskill/types"
	"go.uber.org/thriftrw/ptr"
)

// Openskill defaults.
const (
	defaultMu    = 25.0
	defaultSigma = defaultMu / 3
	defaultZ     = 3
	defaultTau   = defaultMu / 300
	defaultBeta  = defaultSigma / 2
)

// PlackettLuce implements Model on top of the openskill Plackett-Luce model.
type PlackettLuce struct {
	mu    float64
	sigma float64
	z     int
	tau   float64
	beta  float64
}

// NewPlackettLuce creates a model with openskill defaults unless overridden.
func NewPlackettLuce(opts ...Option) *PlackettLuce {
	m := &PlackettLuce{
		mu:    defaultMu,
		sigma: defaultSigma,
		z:     defaultZ,
		tau:   defaultTau,
		beta:  defaultBeta,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// options builds a fresh openskill option set; openskill keeps pointers,
// so every call gets its own copy. Beta is always set: openskill would
// otherwise derive it from sigma.
func (m *PlackettLuce) options() *types.OpenSkillOptions {
	z := m.z
	return &types.OpenSkillOptions{
		Mu:    ptr.Float64(m.mu),
		Sigma: ptr.Float64(m.sigma),
		Z:     &z,
		Tau:   ptr.Float64(m.tau),
		Beta:  ptr.Float64(m.beta),
	}
}

func (m *PlackettLuce) toOpenskill(b Belief) types.Rating {
	return types.Rating{Mu: b.Mu, Sigma: b.Sigma, Z: m.z}
}

func fromOpenskill(r types.Rating) Belief {
	return Belief{Mu: r.Mu, Sigma: r.Sigma}
}

// InitialBelief returns the prior belief.
func (m *PlackettLuce) InitialBelief() Belief {
	return fromOpenskill(rating.NewWithOptions(m.options()))
}

// Rate applies a win of winner over loser.
func (m *PlackettLuce) Rate(winner, loser Belief) (Belief, Belief) {
	opts := m.options()
	opts.Score = []int{1, 0}
	teams := rating.Rate([]types.Team{
		{m.toOpenskill(winner)},
		{m.toOpenskill(loser)},
	}, opts)
	return fromOpenskill(teams[0][0]), fromOpenskill(teams[1][0])
}

// PredictWin returns the probabilities of a and b winning a comparison.
func (m *PlackettLuce) PredictWin(a, b Belief) (float64, float64) {
	probs := rating.PredictWin([]types.Team{
		{m.toOpenskill(a)},
		{m.toOpenskill(b)},
	}, m.options())
	total := probs[0] + probs[1]
	if total <= 0 {
		return 0.5, 0.5
	}
	pa := probs[0] / total
	return pa, 1 - pa
}

// Ordinal returns mu - z*sigma.
func (m *PlackettLuce) Ordinal(b Belief) float64 {
	return rating.Ordinal(m.toOpenskill(b))
}

// Uncertainty returns sigma.
func (m *PlackettLuce) Uncertainty(b Belief) float64 {
	return b.Sigma
}
