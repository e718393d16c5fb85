// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// AdminDependencies defines the interface for maintenance operations.
type AdminDependencies interface {
	Reload(ctx context.Context) error
}

// AdminHandler handles maintenance requests.
type AdminHandler struct {
	deps AdminDependencies
	rw   *responder
}

// newAdminHandler creates a new admin handler.
func newAdminHandler(deps AdminDependencies, rw *responder) *AdminHandler {
	return &AdminHandler{deps: deps, rw: rw}
}

// HandleReload handles POST /admin/reload: the engine is rebuilt from the
// persisted history.
func (h *AdminHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Reload(r.Context()); err != nil {
		h.rw.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "reloaded"})
}
