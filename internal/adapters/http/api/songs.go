// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/compare/internal/domain/model"
	"github.com/okian/compare/internal/domain/types"
)

// SongsDependencies defines the interface for song operations.
type SongsDependencies interface {
	AddSong(ctx context.Context, req types.NewSong) (model.Song, error)
	Songs(ctx context.Context) []model.Song
}

// SongsHandler handles song listing and registration.
type SongsHandler struct {
	deps SongsDependencies
	rw   *responder
}

// newSongsHandler creates a new songs handler.
func newSongsHandler(deps SongsDependencies, rw *responder) *SongsHandler {
	return &SongsHandler{deps: deps, rw: rw}
}

// HandleListSongs handles GET /songs requests.
func (h *SongsHandler) HandleListSongs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Songs(r.Context()))
}

// HandleAddSong handles POST /songs requests.
func (h *SongsHandler) HandleAddSong(w http.ResponseWriter, r *http.Request) {
	var req types.NewSong
	if err := h.rw.decode(w, r, &req); err != nil {
		h.rw.fail(w, r, err)
		return
	}
	song, err := h.deps.AddSong(r.Context(), req)
	if err != nil {
		h.rw.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}
