// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/compare/internal/domain/types"
)

// MatchupDependencies defines the interface for proposing matchups.
type MatchupDependencies interface {
	NextMatchup(ctx context.Context) (types.Matchup, error)
}

// MatchupHandler handles matchup requests.
type MatchupHandler struct {
	deps MatchupDependencies
	rw   *responder
}

// newMatchupHandler creates a new matchup handler.
func newMatchupHandler(deps MatchupDependencies, rw *responder) *MatchupHandler {
	return &MatchupHandler{deps: deps, rw: rw}
}

// HandleGetMatchup handles GET /matchup requests.
func (h *MatchupHandler) HandleGetMatchup(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.NextMatchup(r.Context())
	if err != nil {
		h.rw.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
