// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/adapters/source"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/ranking"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LeaderboardDependencies
	OptionsDependencies
	ReloadDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	optionsHandler     *OptionsHandler
	reloadHandler      *ReloadHandler

	username string
	password string
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxLimit int
	username string
	password string
}

// WithMaxLimit caps the leaderboard ?limit parameter.
func WithMaxLimit(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// WithBasicAuth gates the business routes behind HTTP basic auth.
func WithBasicAuth(username, password string) Option {
	return func(o *serverOptions) {
		o.username = username
		o.password = password
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		leaderboardHandler: NewLeaderboardHandler(deps, o.maxLimit),
		optionsHandler:     NewOptionsHandler(deps),
		reloadHandler:      NewReloadHandler(deps),
		username:           o.username,
		password:           o.password,
	}
}

// Register attaches all HTTP routes to mux. /healthz stays open for probes.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	guard := func(h http.HandlerFunc, endpoint string) http.HandlerFunc {
		return MetricsMiddleware(BasicAuth(h, s.username, s.password), endpoint)
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", guard(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/leaderboard", guard(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/leagues", guard(s.optionsHandler.HandleLeagues, "leagues"))
	mux.HandleFunc("/matchdays", guard(s.optionsHandler.HandleMatchdays, "matchdays"))
	mux.HandleFunc("/groups", guard(s.optionsHandler.HandleGroups, "groups"))
	mux.HandleFunc("/catalog", guard(s.optionsHandler.HandleCatalog, "catalog"))
	mux.HandleFunc("/timeframe", guard(s.optionsHandler.HandleTimeframe, "timeframe"))
	mux.HandleFunc("/reload", guard(s.reloadHandler.HandleReload, "reload"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeUpstreamError translates service errors to status codes.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrTableUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, source.ErrSourceLoad):
		writeError(w, http.StatusBadGateway, "source_load_failed", Wrap(op, err))
	case errors.Is(err, ranking.ErrLeagueRequired), errors.Is(err, ranking.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// reloadResponse is the body of a successful POST /reload.
type reloadResponse struct {
	Status string         `json:"status"`
	Key    repository.Key `json:"key"`
}
