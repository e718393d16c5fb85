package matchmaking

import (
	"math"
	"sort"

	"github.com/okian/compare/internal/domain/rating"
)

// certainty maps a belief's uncertainty to [0, 1] relative to the prior:
// a prior belief maps to 0, shrinking uncertainty moves toward 1.
func (e *Engine) certainty(b rating.Belief) float64 {
	if e.priorSigma == 0 {
		return 0
	}
	c := 1 - e.model.Uncertainty(b)/e.priorSigma
	if math.IsNaN(c) {
		return 0
	}
	return math.Max(0, math.Min(1, c))
}

// RatingCertainties returns the certainty of every registered player.
func (e *Engine) RatingCertainties() map[PlayerID]float64 {
	out := make(map[PlayerID]float64, e.pool.len())
	for i, id := range e.pool.order {
		out[id] = e.certainty(e.pool.beliefs[i])
	}
	return out
}

type scored struct {
	id      PlayerID
	ordinal float64
}

// Ranks orders players by ordinal rating descending. Equal ratings rank the
// lower PlayerID first.
func (e *Engine) Ranks() map[PlayerID]int {
	n := e.pool.len()
	out := make(map[PlayerID]int, n)
	if n == 0 {
		return out
	}

	rows := make([]scored, n)
	for i, id := range e.pool.order {
		rows[i] = scored{id: id, ordinal: e.model.Ordinal(e.pool.beliefs[i])}
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].ordinal != rows[b].ordinal {
			return rows[a].ordinal > rows[b].ordinal
		}
		return rows[a].id < rows[b].id
	})

	for i, r := range rows {
		out[r.id] = i + 1
	}
	return out
}
