// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/scout/internal/adapters/repository"
)

// ReloadDependencies defines the interface for reloading the source.
type ReloadDependencies interface {
	Reload(ctx context.Context, version string) (repository.Key, error)
}

// ReloadHandler handles reload requests.
type ReloadHandler struct {
	deps ReloadDependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps ReloadDependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

// HandleReload handles POST /reload?version= requests. On failure the
// previous table keeps serving.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_reload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	key, err := h.deps.Reload(r.Context(), strings.TrimSpace(r.URL.Query().Get("version")))
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Status: "reloaded", Key: key})
}
