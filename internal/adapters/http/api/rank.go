// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/compare/internal/domain/types"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	Standing(ctx context.Context, songID int) (types.Standing, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
	rw   *responder
}

// newRankHandler creates a new rank handler.
func newRankHandler(deps RankDependencies, rw *responder) *RankHandler {
	return &RankHandler{deps: deps, rw: rw}
}

// HandleGetRank handles GET /rank/{song_id} requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "song_id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		h.rw.fail(w, r, fmt.Errorf("%w: song id %q", ErrBadRequest, raw))
		return
	}
	st, err := h.deps.Standing(r.Context(), id)
	if err != nil {
		h.rw.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
