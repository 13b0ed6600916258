// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/scout/internal/domain/ranking"
)

const defaultMaxLimit = 100

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	TopN(ctx context.Context, q ranking.Query) (ranking.Result, error)
}

// leaderboardRequest mirrors the query string of GET /leaderboard.
type leaderboardRequest struct {
	Metric   string `json:"metric" validate:"required,max=128"`
	League   string `json:"league" validate:"required,max=128"`
	Matchday string `json:"matchday" validate:"omitempty,max=64"`
	Group    string `json:"group" validate:"omitempty,alphanum,max=16"`
	Limit    int    `json:"limit" validate:"gte=0"`
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
	validate *validator.Validate
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	v := validator.New()
	// Use query parameter names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
		validate: v,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?metric=&league=&matchday=&group=&limit= requests
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	req, err := h.parse(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded",
			WrapKind(op, ErrBadRequest, fmt.Errorf("limit must not exceed %d", h.maxLimit)))
		return
	}
	res, err := h.deps.TopN(r.Context(), ranking.Query{
		Metric:   req.Metric,
		League:   req.League,
		Matchday: req.Matchday,
		Group:    req.Group,
		Limit:    req.Limit,
	})
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *LeaderboardHandler) parse(r *http.Request) (leaderboardRequest, error) {
	q := r.URL.Query()
	req := leaderboardRequest{
		Metric:   strings.TrimSpace(q.Get("metric")),
		League:   strings.TrimSpace(q.Get("league")),
		Matchday: strings.TrimSpace(q.Get("matchday")),
		Group:    strings.TrimSpace(q.Get("group")),
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return req, fmt.Errorf("limit: %w", err)
		}
		req.Limit = n
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fieldMessage(fe)
			}
			return req, errors.New(strings.Join(msgs, "; "))
		}
		return req, err
	}
	return req, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " is too long"
	case "gte":
		return fe.Field() + " must not be negative"
	case "alphanum":
		return fe.Field() + " must be alphanumeric"
	default:
		return fe.Field() + " is invalid"
	}
}
