// Package service wires the source loader, the scoring pipeline and the
// table cache into the read API used by the HTTP layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/adapters/source"
	"github.com/okian/scout/internal/domain/catalog"
	"github.com/okian/scout/internal/domain/cumulative"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/pipeline"
	"github.com/okian/scout/internal/domain/position"
	"github.com/okian/scout/internal/domain/ranking"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Leaderboard query outcomes for metrics.
const (
	queryOK       = "ok"
	queryNoData   = "no_data"
	queryNotFound = "not_found"
	queryError    = "error"
)

const timeframeLayout = "02-01-2006"

// CatalogView lists what a Top-N table can be requested for.
type CatalogView struct {
	Scores  []string `json:"scores"`
	Metrics []string `json:"metrics"`
}

// Timeframe is the span of parsed match dates. Label is empty when no match
// date parsed.
type Timeframe struct {
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
	Label string `json:"label"`
}

// Service serves Top-N tables over the currently loaded source version.
type Service struct {
	mu       sync.RWMutex
	reloadMu sync.Mutex

	// Source
	path      string
	sheet     string
	version   string
	delimiter rune
	columns   model.IdentityColumns

	// Scoring
	weights   map[string]float64
	policy    cumulative.Policy
	reference time.Time
	youngAge  int
	topN      int

	// Components, built on Start
	catalog  *catalog.Catalog
	groups   *position.GroupMap
	pipeline *pipeline.Pipeline
	store    *repository.Store
	viewer   *ranking.Viewer

	// State
	started  bool
	key      repository.Key
	report   pipeline.Report
	loadedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the path of the .xlsx or .csv export.
func WithSource(path string) Option {
	return func(s *Service) {
		s.path = path
	}
}

// WithSheet picks a workbook sheet by name.
func WithSheet(name string) Option {
	return func(s *Service) {
		s.sheet = name
	}
}

// WithVersion pins the source version used for the initial load.
func WithVersion(v string) Option {
	return func(s *Service) {
		s.version = v
	}
}

// WithDelimiter sets the CSV field delimiter.
func WithDelimiter(r rune) Option {
	return func(s *Service) {
		if r != 0 {
			s.delimiter = r
		}
	}
}

// WithColumns sets the identity column names of the source.
func WithColumns(c model.IdentityColumns) Option {
	return func(s *Service) {
		s.columns = c.WithDefaults()
	}
}

// WithWeights overrides metric weights. Keys match catalog metrics
// case-insensitively.
func WithWeights(w map[string]float64) Option {
	return func(s *Service) {
		s.weights = maps.Clone(w)
	}
}

// WithPolicy sets the cumulative missing-value policy.
func WithPolicy(p cumulative.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithReferenceDate fixes the date ages are computed against.
func WithReferenceDate(t time.Time) Option {
	return func(s *Service) {
		s.reference = t
	}
}

// WithYoungAge sets the age below which players are flagged.
func WithYoungAge(age int) Option {
	return func(s *Service) {
		if age > 0 {
			s.youngAge = age
		}
	}
}

// WithTopN sets the default table length.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		delimiter: ',',
		columns:   model.DefaultIdentityColumns(),
		policy:    cumulative.PolicyObserved,
		youngAge:  ranking.DefaultYoungAge,
		topN:      ranking.DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the catalog and components and performs the initial load.
// A source that cannot be loaded fails Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting scouting service...", logger.String("source", s.path))

	cat, err := catalog.Default(catalog.WithWeights(s.resolveWeights(ctx)))
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("build catalog: %w", err)
	}
	s.catalog = cat
	s.groups = position.Default()
	s.pipeline = pipeline.New(cat,
		pipeline.WithGroupMap(s.groups),
		pipeline.WithIdentityColumns(s.columns),
		pipeline.WithPolicy(s.policy),
		pipeline.WithReferenceDate(s.reference),
		pipeline.WithLogger(s.logger),
	)
	s.store = repository.NewStore(
		repository.WithLogger(s.logger.Named("cache")),
		repository.WithMaxVersions(0),
	)
	s.viewer = ranking.NewViewer(ranking.WithYoungAge(s.youngAge), ranking.WithDefaultLimit(s.topN))
	s.mu.Unlock()

	key, rep, err := s.load(ctx, s.version)
	if err != nil {
		s.logger.Error(ctx, "initial load failed", logger.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.swap(ctx, key, rep)
	s.started = true
	s.logger.Info(ctx, "scouting service started",
		logger.String("version", key.Version),
		logger.Int("rows", s.report.Rows),
		logger.Int("scores", len(s.report.Scores)),
	)
	return nil
}

// Stop releases cached tables.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	for _, k := range s.store.Keys() {
		s.store.Evict(k)
	}
	s.started = false
	s.logger.Info(context.Background(), "scouting service stopped")
}

// Reload loads the source again under version. An empty version falls back
// to the configured one, or to the file's modification time and size. On
// error the previous table keeps serving.
func (s *Service) Reload(ctx context.Context, version string) (repository.Key, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return repository.Key{}, ErrNotStarted
	}
	if version == "" {
		version = s.version
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	key, rep, err := s.load(ctx, version)
	if err != nil {
		s.logger.Warn(ctx, "reload failed; keeping previous table", logger.Error(err))
		return repository.Key{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.key
	s.swap(ctx, key, rep)
	if prev != key {
		s.logger.Info(ctx, "reloaded source",
			logger.String("previous", prev.Version),
			logger.String("version", key.Version),
		)
	}
	return key, nil
}

// load reads and scores the source under version unless the key is cached.
// The report is nil on a cache hit.
func (s *Service) load(ctx context.Context, version string) (repository.Key, *pipeline.Report, error) {
	loader := source.NewLoader(s.path,
		source.WithSheet(s.sheet),
		source.WithVersion(version),
		source.WithDelimiter(s.delimiter),
		source.WithIdentityColumns(s.columns),
		source.WithLogger(s.logger.Named("source")),
	)
	src, ver, err := loader.Identity()
	if err != nil {
		return repository.Key{}, nil, err
	}
	key := repository.Key{Source: src, Version: ver}

	var rep *pipeline.Report
	_, err = s.store.Table(ctx, key, func(ctx context.Context) (*model.Table, error) {
		raw, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		res, err := s.pipeline.Run(ctx, raw)
		if err != nil {
			return nil, err
		}
		rep = &res.Report
		return res.Table, nil
	})
	if err != nil {
		return repository.Key{}, nil, err
	}
	return key, rep, nil
}

// swap points queries at key, then drops older versions. The previous table
// serves until the swap. swap must be called with mu held.
func (s *Service) swap(ctx context.Context, key repository.Key, rep *pipeline.Report) {
	s.key = key
	if rep != nil {
		s.report = *rep
		s.loadedAt = time.Now()
	}
	s.store.Retain(ctx, key)
}

func (s *Service) resolveWeights(ctx context.Context) map[string]float64 {
	if len(s.weights) == 0 {
		return nil
	}
	var known []string
	for _, d := range catalog.DefaultScores() {
		known = append(known, d.Keys()...)
	}
	out := make(map[string]float64, len(s.weights))
	for k, w := range s.weights {
		i := slices.IndexFunc(known, func(m string) bool { return strings.EqualFold(m, k) })
		if i < 0 {
			s.logger.Warn(ctx, "weight for unknown metric ignored", logger.String("metric", k))
			continue
		}
		out[known[i]] = w
	}
	return out
}

func (s *Service) current() (repository.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return repository.Key{}, ErrNotStarted
	}
	return s.key, nil
}

// query runs build against the current table through the cache. A reload
// can evict the key between reading and querying it; that case is retried
// once against the new key.
func query[T any](ctx context.Context, s *Service, transform string, build func(context.Context, *model.Table) (T, error)) (T, error) {
	var zero T
	for range 2 {
		key, err := s.current()
		if err != nil {
			return zero, err
		}
		out, err := repository.Derived(ctx, s.store, key, transform, build)
		if errors.Is(err, repository.ErrUnknownKey) {
			continue
		}
		return out, err
	}
	return zero, fmt.Errorf("%s: %w", transform, ErrTableUnavailable)
}

// TopN returns the Top-N table for q. A zero limit uses the configured
// default.
func (s *Service) TopN(ctx context.Context, q ranking.Query) (ranking.Result, error) {
	start := time.Now()
	if q.Limit == 0 {
		q.Limit = s.topN
	}
	transform := strings.Join([]string{"topn", q.Metric, q.League, q.Matchday, q.Group, strconv.Itoa(q.Limit)}, "\x00")
	res, err := query(ctx, s, transform, func(_ context.Context, t *model.Table) (ranking.Result, error) {
		return s.viewer.View(t, q)
	})
	metrics.RecordLeaderboardLatency(float64(time.Since(start).Microseconds()) / 1000)

	switch {
	case err != nil:
		metrics.RecordLeaderboardQuery(queryError)
		return ranking.Result{}, err
	case !res.Available:
		metrics.RecordLeaderboardQuery(queryNotFound)
	case len(res.Entries) == 0:
		metrics.RecordLeaderboardQuery(queryNoData)
	default:
		metrics.RecordLeaderboardQuery(queryOK)
	}
	return res, nil
}

// Leagues lists the leagues of the current table.
func (s *Service) Leagues(ctx context.Context) ([]string, error) {
	return query(ctx, s, "leagues", func(_ context.Context, t *model.Table) ([]string, error) {
		return nonNil(t.Leagues()), nil
	})
}

// Matchdays lists the matchdays of a league in date order.
func (s *Service) Matchdays(ctx context.Context, league string) ([]string, error) {
	return query(ctx, s, "matchdays\x00"+league, func(_ context.Context, t *model.Table) ([]string, error) {
		return nonNil(t.Matchdays(league)), nil
	})
}

// Groups lists the position group tags.
func (s *Service) Groups(_ context.Context) ([]string, error) {
	if _, err := s.current(); err != nil {
		return nil, err
	}
	return s.groups.Tags(), nil
}

// Catalog lists the score names and display metrics.
func (s *Service) Catalog(_ context.Context) (CatalogView, error) {
	if _, err := s.current(); err != nil {
		return CatalogView{}, err
	}
	return CatalogView{
		Scores:  s.catalog.ScoreNames(),
		Metrics: s.catalog.DisplayMetrics(),
	}, nil
}

// Timeframe returns the span of match dates as "dd-mm-yyyy - dd-mm-yyyy".
func (s *Service) Timeframe(ctx context.Context) (Timeframe, error) {
	return query(ctx, s, "timeframe", func(_ context.Context, t *model.Table) (Timeframe, error) {
		from, to, ok := t.Timeframe()
		if !ok {
			return Timeframe{}, nil
		}
		tf := Timeframe{From: from.Format(timeframeLayout), To: to.Format(timeframeLayout)}
		tf.Label = tf.From + " - " + tf.To
		return tf, nil
	})
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":  s.started,
		"source":   s.path,
		"top_n":    s.topN,
		"policy":   s.policy.String(),
		"youngAge": s.youngAge,
	}
	if !s.started {
		return stats
	}

	failed := make(map[string]string, len(s.report.FailedScores))
	for name, err := range s.report.FailedScores {
		failed[name] = err.Error()
	}
	stats["version"] = s.key.Version
	stats["loadedAt"] = s.loadedAt.UTC().Format(time.RFC3339)
	stats["runId"] = s.report.RunID
	stats["rows"] = s.report.Rows
	stats["scores"] = s.report.Scores
	stats["failedScores"] = failed
	stats["missingCells"] = s.report.MissingCells
	stats["birthDateFailures"] = s.report.BirthDateFailures
	stats["matchDateFailures"] = s.report.MatchDateFailures
	stats["absentColumns"] = s.report.AbsentColumns
	stats["cache"] = s.store.Stats()
	return stats
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
