package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/scout/internal/adapters/http/api"
	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/adapters/source"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/ranking"
	"github.com/okian/scout/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies serves a fixed league table.
type mockDependencies struct {
	entries   []types.Entry
	lastQuery ranking.Query
	topNErr   error
	reloadErr error
	reloaded  string
}

func (m *mockDependencies) TopN(_ context.Context, q ranking.Query) (ranking.Result, error) {
	m.lastQuery = q
	if m.topNErr != nil {
		return ranking.Result{}, m.topNErr
	}
	res := ranking.Result{Query: q, Entries: []types.Entry{}}
	if q.Metric != "Goal" {
		res.Message = ranking.MsgMetricNotFound
		return res, nil
	}
	res.Available = true
	limit := q.Limit
	if limit == 0 {
		limit = ranking.DefaultLimit
	}
	for _, e := range m.entries {
		if q.League != "L1" || len(res.Entries) == limit {
			break
		}
		res.Entries = append(res.Entries, e)
	}
	if len(res.Entries) == 0 {
		res.Message = ranking.MsgNoData
	}
	return res, nil
}

func (m *mockDependencies) Leagues(context.Context) ([]string, error) {
	return []string{"L1", "L2"}, nil
}

func (m *mockDependencies) Matchdays(_ context.Context, league string) ([]string, error) {
	if league != "L1" {
		return []string{}, nil
	}
	return []string{"1", "2"}, nil
}

func (m *mockDependencies) Groups(context.Context) ([]string, error) {
	return []string{"IV", "ST"}, nil
}

func (m *mockDependencies) Catalog(context.Context) (service.CatalogView, error) {
	return service.CatalogView{Scores: []string{"Overall Score"}, Metrics: []string{"Goal"}}, nil
}

func (m *mockDependencies) Timeframe(context.Context) (service.Timeframe, error) {
	return service.Timeframe{From: "01-08-2024", To: "15-08-2024", Label: "01-08-2024 - 15-08-2024"}, nil
}

func (m *mockDependencies) Reload(_ context.Context, version string) (repository.Key, error) {
	if m.reloadErr != nil {
		return repository.Key{}, m.reloadErr
	}
	m.reloaded = version
	return repository.Key{Source: "/data/export.xlsx", Version: version}, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newDeps() *mockDependencies {
	deps := &mockDependencies{}
	for i, p := range []string{"Ana", "Ben", "Cai", "Dan"} {
		deps.entries = append(deps.entries, types.Entry{Rank: i + 1, Player: p, Value: float64(10 - i)})
	}
	return deps
}

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newDeps()
		server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("Then health serves the metrics registry", func() {
			w := serve(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats are served as JSON", func() {
			w := serve(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then the filter choices are served", func() {
			for target, want := range map[string]string{
				"/leagues":             `["L1","L2"]`,
				"/matchdays?league=L1": `["1","2"]`,
				"/groups":              `["IV","ST"]`,
				"/catalog":             `"scores":["Overall Score"]`,
				"/timeframe":           `"label":"01-08-2024 - 15-08-2024"`,
			} {
				w := serve(mux, http.MethodGet, target)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, want)
			}
		})

		Convey("Then matchdays without a league are rejected", func() {
			w := serve(mux, http.MethodGet, "/matchdays")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then wrong methods and unknown paths are not found", func() {
			So(serve(mux, http.MethodPost, "/leagues").Code, ShouldEqual, http.StatusNotFound)
			So(serve(mux, http.MethodGet, "/reload").Code, ShouldEqual, http.StatusNotFound)
			So(serve(mux, http.MethodGet, "/unknown").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given a leaderboard handler", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}, api.WithMaxLimit(20)).Register(context.Background(), mux)

		Convey("When asking for a league table", func() {
			w := serve(mux, http.MethodGet, "/leaderboard?metric=Goal&league=L1&limit=3")

			Convey("Then entries are ranked 1..n", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var res ranking.Result
				So(json.NewDecoder(w.Body).Decode(&res), ShouldBeNil)
				So(res.Available, ShouldBeTrue)
				So(len(res.Entries), ShouldEqual, 3)
				for i, e := range res.Entries {
					So(e.Rank, ShouldEqual, i+1)
				}
			})
		})

		Convey("When the filter matches nothing", func() {
			w := serve(mux, http.MethodGet, "/leaderboard?metric=Goal&league=L9")

			Convey("Then the result says so", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var res ranking.Result
				So(json.NewDecoder(w.Body).Decode(&res), ShouldBeNil)
				So(res.Available, ShouldBeTrue)
				So(res.Entries, ShouldBeEmpty)
				So(res.Message, ShouldEqual, "no data available")
			})
		})

		Convey("When the metric is unknown", func() {
			w := serve(mux, http.MethodGet, "/leaderboard?metric=Nope&league=L1")

			Convey("Then the result is unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"available":false`)
				So(w.Body.String(), ShouldContainSubstring, "metric not found")
			})
		})

		Convey("When optional filters are passed", func() {
			w := serve(mux, http.MethodGet, "/leaderboard?metric=Goal&league=L1&matchday=2&group=ST")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastQuery, ShouldResemble, ranking.Query{Metric: "Goal", League: "L1", Matchday: "2", Group: "ST"})
		})

		Convey("When the query is invalid", func() {
			cases := map[string]string{
				"/leaderboard?league=L1":                         "metric is required",
				"/leaderboard?metric=Goal":                       "league is required",
				"/leaderboard?metric=Goal&league=L1&limit=x":     "limit",
				"/leaderboard?metric=Goal&league=L1&limit=-1":    "limit must not be negative",
				"/leaderboard?metric=Goal&league=L1&group=a%20b": "group must be alphanumeric",
			}
			for target, msg := range cases {
				w := serve(mux, http.MethodGet, target)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "bad_request")
				So(body["message"], ShouldContainSubstring, msg)
			}
		})

		Convey("When the limit is above the cap", func() {
			w := serve(mux, http.MethodGet, "/leaderboard?metric=Goal&league=L1&limit=21")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When the service is not started", func() {
			deps.topNErr = service.ErrNotStarted
			w := serve(mux, http.MethodGet, "/leaderboard?metric=Goal&league=L1")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(w)["code"], ShouldEqual, "unavailable")
		})

		Convey("When the service fails", func() {
			deps.topNErr = fmt.Errorf("boom")
			w := serve(mux, http.MethodGet, "/leaderboard?metric=Goal&league=L1")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestReloadHandler(t *testing.T) {
	Convey("Given a reload handler", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When reloading a version", func() {
			w := serve(mux, http.MethodPost, "/reload?version=v2")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.reloaded, ShouldEqual, "v2")
			So(w.Body.String(), ShouldContainSubstring, `"version":"v2"`)
		})

		Convey("When the source cannot be loaded", func() {
			deps.reloadErr = fmt.Errorf("%w: open: no such file", source.ErrSourceLoad)
			w := serve(mux, http.MethodPost, "/reload")
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(decodeError(w)["code"], ShouldEqual, "source_load_failed")
		})
	})
}

func TestBasicAuth(t *testing.T) {
	Convey("Given a server behind basic auth", t, func() {
		mux := http.NewServeMux()
		api.NewServer(newDeps(), &mockStatsProvider{}, api.WithBasicAuth("scout", "secret")).Register(context.Background(), mux)

		Convey("Then requests without credentials are rejected", func() {
			w := serve(mux, http.MethodGet, "/leagues")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Header().Get("WWW-Authenticate"), ShouldStartWith, "Basic")
		})

		Convey("Then wrong credentials are rejected", func() {
			req := httptest.NewRequest(http.MethodGet, "/leagues", http.NoBody)
			req.SetBasicAuth("scout", "wrong")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Then valid credentials pass", func() {
			req := httptest.NewRequest(http.MethodGet, "/leagues", http.NoBody)
			req.SetBasicAuth("scout", "secret")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then health stays open", func() {
			So(serve(mux, http.MethodGet, "/healthz").Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped with metrics", t, func() {
		h := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}, "teapot")

		Convey("Then status and body pass through", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/teapot", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusTeapot)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "short and stout")
		})
	})
}
