// Package pipeline runs the scoring stages over a raw source grid and
// produces an immutable model.Table.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scout/internal/domain/catalog"
	"github.com/okian/scout/internal/domain/cumulative"
	"github.com/okian/scout/internal/domain/derive"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/internal/domain/position"
	"github.com/okian/scout/internal/domain/scoring"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Stage names used for logging and latency metrics.
const (
	StageIdentity   = "identity"
	StageClassify   = "classify"
	StageNormalize  = "normalize"
	StageDerive     = "derive"
	StageScore      = "score"
	StageCumulative = "cumulative"
)

// Report summarizes one run.
type Report struct {
	RunID    string
	Rows     int
	Duration time.Duration

	// MissingCells counts unparsable or empty numeric cells per column.
	MissingCells map[string]int
	// BirthDateFailures and MatchDateFailures count rows whose date did not parse.
	BirthDateFailures int
	MatchDateFailures int
	// AbsentColumns are catalog numeric columns the source does not carry.
	AbsentColumns []string
	// Scores lists the computed score columns; FailedScores maps the rest
	// to their error.
	Scores       []string
	FailedScores map[string]error
}

// Result is the output of Run.
type Result struct {
	Table  *model.Table
	Report Report
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithGroupMap sets the position group map.
func WithGroupMap(m *position.GroupMap) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.groups = m
		}
	}
}

// WithEngine sets the score engine.
func WithEngine(e *scoring.Engine) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithRatios replaces the derived ratio definitions.
func WithRatios(defs []derive.RatioDef) Option {
	return func(p *Pipeline) {
		p.ratios = defs
	}
}

// WithIdentityColumns sets the identity column names.
func WithIdentityColumns(c model.IdentityColumns) Option {
	return func(p *Pipeline) {
		p.columns = c.WithDefaults()
	}
}

// WithPolicy sets the cumulative missing-value policy.
func WithPolicy(policy cumulative.Policy) Option {
	return func(p *Pipeline) {
		p.policy = policy
	}
}

// WithReferenceDate fixes the date ages are computed against. The zero time
// means "today" at run time.
func WithReferenceDate(t time.Time) Option {
	return func(p *Pipeline) {
		p.reference = t
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pipeline is safe for concurrent use; every Run works on its own table.
type Pipeline struct {
	catalog   *catalog.Catalog
	groups    *position.GroupMap
	engine    *scoring.Engine
	ratios    []derive.RatioDef
	columns   model.IdentityColumns
	policy    cumulative.Policy
	reference time.Time
	logger    logger.Logger
}

// New constructs a pipeline over a catalog.
func New(cat *catalog.Catalog, opts ...Option) *Pipeline {
	p := &Pipeline{
		catalog: cat,
		groups:  position.Default(),
		engine:  scoring.NewEngine(),
		ratios:  derive.DefaultRatios,
		columns: model.DefaultIdentityColumns(),
		policy:  cumulative.PolicyObserved,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run transforms raw into a scored table. Only a missing identity column
// fails the run; per-column and per-row problems are recorded in the report.
func (p *Pipeline) Run(ctx context.Context, raw *model.RawTable) (*Result, error) {
	start := time.Now()
	log := p.logger
	if log == nil {
		log = logger.Get()
	}
	rep := Report{
		RunID:        uuid.NewString(),
		MissingCells: make(map[string]int),
		FailedScores: make(map[string]error),
	}
	log = log.Named("pipeline").With(logger.String("run_id", rep.RunID))

	res, err := p.run(ctx, log, raw, &rep)
	rep.Duration = time.Since(start)
	metrics.RecordPipelineDuration(float64(rep.Duration.Milliseconds()))
	if err != nil {
		metrics.RecordPipelineRun("failed")
		log.Error(ctx, "pipeline failed", logger.Error(err))
		return nil, err
	}
	metrics.RecordPipelineRun("ok")
	metrics.UpdateRowsLoaded(rep.Rows)
	metrics.UpdateScoreColumns(len(rep.Scores))
	log.Info(ctx, "pipeline finished",
		logger.Int("rows", rep.Rows),
		logger.Int("scores", len(rep.Scores)),
		logger.Int("failed_scores", len(rep.FailedScores)),
		logger.Duration("duration", rep.Duration),
	)
	res.Report = rep
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, log logger.Logger, raw *model.RawTable, rep *Report) (*Result, error) {
	if raw == nil {
		return nil, ErrNilTable
	}
	for _, name := range p.columns.Names() {
		if raw.Index(name) < 0 {
			return nil, fmt.Errorf("%q: %w", name, ErrMissingIdentity)
		}
	}
	rep.Rows = len(raw.Rows)

	var records []model.Record
	stage(StageIdentity, func() {
		records = p.identity(ctx, log, raw, rep)
	})
	stage(StageClassify, func() {
		for i := range records {
			records[i].Groups = position.Classify(records[i].Position, p.groups)
		}
	})

	t := model.NewTable(records)
	var err error
	stage(StageNormalize, func() {
		err = p.normalize(ctx, log, raw, t, rep)
	})
	if err != nil {
		return nil, err
	}
	stage(StageDerive, func() {
		err = p.derive(ctx, log, t)
	})
	if err != nil {
		return nil, err
	}
	stage(StageScore, func() {
		err = p.score(ctx, log, t, rep)
	})
	if err != nil {
		return nil, err
	}
	stage(StageCumulative, func() {
		_, err = cumulative.Apply(t, t.Columns(), p.policy)
	})
	if err != nil {
		return nil, fmt.Errorf("cumulative: %w", err)
	}
	return &Result{Table: t}, nil
}

func stage(name string, fn func()) {
	start := time.Now()
	fn()
	metrics.RecordStageDuration(name, float64(time.Since(start).Microseconds())/1000)
}

func (p *Pipeline) identity(ctx context.Context, log logger.Logger, raw *model.RawTable, rep *Report) []model.Record {
	col := func(name string) []string {
		c, _ := raw.Column(name)
		return c
	}
	players, teams, positions := col(p.columns.Player), col(p.columns.Team), col(p.columns.Position)
	births, leagues, dates, weeks := col(p.columns.BirthDate), col(p.columns.League), col(p.columns.MatchDate), col(p.columns.Week)

	ref := p.reference
	if ref.IsZero() {
		ref = time.Now()
	}

	records := make([]model.Record, len(raw.Rows))
	for i := range records {
		r := model.Record{
			Row:      i,
			Player:   strings.TrimSpace(players[i]),
			Team:     strings.TrimSpace(teams[i]),
			Position: strings.TrimSpace(positions[i]),
			League:   strings.TrimSpace(leagues[i]),
			Week:     strings.TrimSpace(weeks[i]),
		}
		if b, err := normalize.ParseDate(births[i]); err == nil {
			r.BirthDate = b
			r.Age = derive.Age(b, ref)
			r.AgeKnown = true
		} else {
			rep.BirthDateFailures++
		}
		if d, err := normalize.ParseDate(dates[i]); err == nil {
			r.MatchDate = d
		} else {
			rep.MatchDateFailures++
		}
		records[i] = r
	}

	metrics.AddDateParseFailures(p.columns.BirthDate, rep.BirthDateFailures)
	metrics.AddDateParseFailures(p.columns.MatchDate, rep.MatchDateFailures)
	if rep.BirthDateFailures > 0 || rep.MatchDateFailures > 0 {
		log.Warn(ctx, "date parse failures",
			logger.Int("birth_date", rep.BirthDateFailures),
			logger.Int("match_date", rep.MatchDateFailures),
		)
	}
	return records
}

func (p *Pipeline) normalize(ctx context.Context, log logger.Logger, raw *model.RawTable, t *model.Table, rep *Report) error {
	derived := make(map[string]struct{}, len(p.ratios))
	for _, d := range p.ratios {
		derived[d.Name] = struct{}{}
	}
	for _, name := range p.catalog.NumericColumns() {
		cells, ok := raw.Column(name)
		if !ok {
			if _, ok := derived[name]; ok {
				continue
			}
			rep.AbsentColumns = append(rep.AbsentColumns, name)
			metrics.RecordSchemaMismatch(name)
			continue
		}
		vals, missing := normalize.Column(cells)
		if err := t.AddColumn(name, vals); err != nil {
			return fmt.Errorf("normalize: %w", err)
		}
		if missing > 0 {
			rep.MissingCells[name] = missing
			metrics.AddMissingCells(name, missing)
		}
	}
	if len(rep.AbsentColumns) > 0 {
		log.Warn(ctx, "metric columns absent from source", logger.Strings("columns", rep.AbsentColumns))
	}
	return nil
}

func (p *Pipeline) derive(ctx context.Context, log logger.Logger, t *model.Table) error {
	added, err := derive.Apply(t, p.ratios)
	if errors.Is(err, derive.ErrSchemaMismatch) {
		log.Warn(ctx, "ratio inputs absent", logger.Error(err))
		err = nil
	}
	if err != nil {
		return fmt.Errorf("derive: %w", err)
	}
	log.Debug(ctx, "ratios derived", logger.Strings("columns", added))
	return nil
}

func (p *Pipeline) score(ctx context.Context, log logger.Logger, t *model.Table, rep *Report) error {
	for _, def := range p.catalog.Scores() {
		vals, err := p.engine.Score(t, def)
		if err != nil {
			rep.FailedScores[def.Name] = err
			metrics.RecordSchemaMismatch(def.Name)
			log.Warn(ctx, "score not computed", logger.String("score", def.Name), logger.Error(err))
			continue
		}
		if err := t.AddColumn(def.Name, vals); err != nil {
			return fmt.Errorf("score: %w", err)
		}
		rep.Scores = append(rep.Scores, def.Name)
	}
	return nil
}
