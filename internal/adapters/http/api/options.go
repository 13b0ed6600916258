// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/scout/internal/app"
)

// OptionsDependencies lists the filter choices a client can offer.
type OptionsDependencies interface {
	Leagues(ctx context.Context) ([]string, error)
	Matchdays(ctx context.Context, league string) ([]string, error)
	Groups(ctx context.Context) ([]string, error)
	Catalog(ctx context.Context) (service.CatalogView, error)
	Timeframe(ctx context.Context) (service.Timeframe, error)
}

// OptionsHandler serves the filter choice endpoints.
type OptionsHandler struct {
	deps OptionsDependencies
}

// NewOptionsHandler creates a new options handler.
func NewOptionsHandler(deps OptionsDependencies) *OptionsHandler {
	return &OptionsHandler{deps: deps}
}

// HandleLeagues handles GET /leagues requests.
func (h *OptionsHandler) HandleLeagues(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "api.get_leagues", h.deps.Leagues)
}

// HandleMatchdays handles GET /matchdays?league= requests.
func (h *OptionsHandler) HandleMatchdays(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_matchdays"
	league := strings.TrimSpace(r.URL.Query().Get("league"))
	if league == "" && r.Method == http.MethodGet {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("league is required")))
		return
	}
	serve(w, r, op, func(ctx context.Context) ([]string, error) {
		return h.deps.Matchdays(ctx, league)
	})
}

// HandleGroups handles GET /groups requests.
func (h *OptionsHandler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "api.get_groups", h.deps.Groups)
}

// HandleCatalog handles GET /catalog requests.
func (h *OptionsHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "api.get_catalog", h.deps.Catalog)
}

// HandleTimeframe handles GET /timeframe requests.
func (h *OptionsHandler) HandleTimeframe(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "api.get_timeframe", h.deps.Timeframe)
}

func serve[T any](w http.ResponseWriter, r *http.Request, op string, get func(context.Context) (T, error)) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	v, err := get(r.Context())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
