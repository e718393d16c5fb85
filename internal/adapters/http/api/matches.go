// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/compare/internal/domain/types"
)

// MatchesDependencies defines the interface for recording verdicts.
type MatchesDependencies interface {
	RecordMatch(ctx context.Context, v types.Verdict) (types.MatchResult, error)
}

// MatchesHandler handles verdict submissions.
type MatchesHandler struct {
	deps MatchesDependencies
	rw   *responder
}

// newMatchesHandler creates a new matches handler.
func newMatchesHandler(deps MatchesDependencies, rw *responder) *MatchesHandler {
	return &MatchesHandler{deps: deps, rw: rw}
}

// HandlePostMatch handles POST /matches requests. A verdict that changed
// ratings answers 201; duplicates and self-play answer 200.
func (h *MatchesHandler) HandlePostMatch(w http.ResponseWriter, r *http.Request) {
	var v types.Verdict
	if err := h.rw.decode(w, r, &v); err != nil {
		h.rw.fail(w, r, err)
		return
	}
	res, err := h.deps.RecordMatch(r.Context(), v)
	if err != nil {
		h.rw.fail(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Duplicate || res.SelfPlay {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}
