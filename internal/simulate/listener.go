package simulate

import (
	"math"
	"math/rand"

	"github.com/okian/compare/internal/domain/matchmaking"
)

// Listener is a synthetic judge with hidden song strengths.
type Listener struct {
	strength map[matchmaking.PlayerID]float64
	noise    float64
	rng      *rand.Rand
}

// NewListener spaces strengths evenly over [0, songs-1] for IDs 0..songs-1.
func NewListener(songs int, noise float64, rng *rand.Rand) *Listener {
	ids := make([]matchmaking.PlayerID, songs)
	for i := range ids {
		ids[i] = matchmaking.PlayerID(i)
	}
	return NewListenerFor(ids, noise, rng)
}

// NewListenerFor spaces strengths evenly over [0, len(ids)-1] and shuffles
// them across ids so the hidden order is unrelated to registration order.
func NewListenerFor(ids []matchmaking.PlayerID, noise float64, rng *rand.Rand) *Listener {
	l := &Listener{
		strength: make(map[matchmaking.PlayerID]float64, len(ids)),
		noise:    noise,
		rng:      rng,
	}
	for i, s := range rng.Perm(len(ids)) {
		l.strength[ids[i]] = float64(s)
	}
	return l
}

// Strength returns the hidden strength of id.
func (l *Listener) Strength(id matchmaking.PlayerID) float64 {
	return l.strength[id]
}

// Judge returns the winner and loser of a vs b.
func (l *Listener) Judge(a, b matchmaking.PlayerID) (matchmaking.PlayerID, matchmaking.PlayerID) {
	diff := l.strength[a] - l.strength[b]
	if l.noise == 0 {
		if diff >= 0 {
			return a, b
		}
		return b, a
	}
	// Bradley-Terry: P(a wins) = 1 / (1 + exp(-diff/noise)).
	if l.rng.Float64() < 1/(1+math.Exp(-diff/l.noise)) {
		return a, b
	}
	return b, a
}

// KendallTau compares engine ranks (1 best) with the hidden strengths.
// 1 is perfect agreement, -1 perfect reversal.
func (l *Listener) KendallTau(ranks map[matchmaking.PlayerID]int) float64 {
	ids := make([]matchmaking.PlayerID, 0, len(ranks))
	for id := range ranks {
		ids = append(ids, id)
	}
	n := len(ids)
	if n < 2 {
		return 1
	}
	var concordant, discordant int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := ids[i], ids[j]
			byRank := ranks[a] < ranks[b]
			byStrength := l.strength[a] > l.strength[b]
			if byRank == byStrength {
				concordant++
			} else {
				discordant++
			}
		}
	}
	return float64(concordant-discordant) / float64(n*(n-1)/2)
}
