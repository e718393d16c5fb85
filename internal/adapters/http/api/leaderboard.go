// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/compare/internal/domain/types"
)

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, limit int) ([]types.Standing, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	rw       *responder
	maxLimit int
}

// newLeaderboardHandler creates a new leaderboard handler
func newLeaderboardHandler(deps LeaderboardDependencies, rw *responder, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		rw:       rw,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests.
// Without limit the first maxLimit standings are returned.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			h.rw.fail(w, r, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			h.rw.fail(w, r, fmt.Errorf("%w: %d > %d", ErrLimitExceeded, n, h.maxLimit))
			return
		}
	}
	standings, err := h.deps.Leaderboard(r.Context(), n)
	if err != nil {
		h.rw.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}
