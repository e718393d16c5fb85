package matchmaking

import (
	"fmt"

	"github.com/okian/compare/internal/domain/rating"
)

// pool maps stable player IDs to positions in a dense belief slice.
// Positions never leave this file.
type pool struct {
	order   []PlayerID
	beliefs []rating.Belief
	index   map[PlayerID]int
}

func newPool() *pool {
	return &pool{index: make(map[PlayerID]int)}
}

func (p *pool) len() int {
	return len(p.beliefs)
}

func (p *pool) has(id PlayerID) bool {
	_, ok := p.index[id]
	return ok
}

func (p *pool) add(id PlayerID, b rating.Belief) {
	p.index[id] = len(p.beliefs)
	p.beliefs = append(p.beliefs, b)
	p.order = append(p.order, id)
}

func (p *pool) belief(id PlayerID) (rating.Belief, error) {
	i, ok := p.index[id]
	if !ok {
		return rating.Belief{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return p.beliefs[i], nil
}

// set assumes id is registered.
func (p *pool) set(id PlayerID, b rating.Belief) {
	p.beliefs[p.index[id]] = b
}

// ids returns a copy of the IDs in creation order.
func (p *pool) ids() []PlayerID {
	out := make([]PlayerID, len(p.order))
	copy(out, p.order)
	return out
}
