// Package scoring turns groups of heterogeneous metric columns into composite
// 0-10 scores: each column is rank-uniformized, rescaled to [0,10] and the
// columns are combined by weighted row mean.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/scout/internal/domain/catalog"
	"github.com/okian/scout/internal/domain/model"
)

// Default engine configuration constants.
const (
	defaultMaxQuantiles = 1000
	defaultScaleMax     = 10
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMaxQuantiles caps the number of quantiles used for uniformization.
func WithMaxQuantiles(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxQuantiles = n
		}
	}
}

// WithScaleMax sets the upper end of the rescaled range.
func WithScaleMax(hi float64) Option {
	return func(e *Engine) {
		if hi > 0 {
			e.scaleMax = hi
		}
	}
}

// Engine computes catalog scores over a table. It holds no per-table state
// and is safe for concurrent use.
type Engine struct {
	maxQuantiles int
	scaleMax     float64
}

// NewEngine creates an engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxQuantiles: defaultMaxQuantiles,
		scaleMax:     defaultScaleMax,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute scores rows from columns using the default engine.
func Compute(columns [][]model.Value, weights []float64) ([]model.Value, error) {
	return NewEngine().Compute(columns, weights)
}

// Compute scores rows from columns. Missing cells count as zero. A nil
// weights slice means uniform weights. With no columns every row is missing
// and ErrNoMetrics is returned. Every weight must be positive and finite.
func (e *Engine) Compute(columns [][]model.Value, weights []float64) ([]model.Value, error) {
	if len(columns) == 0 {
		return nil, ErrNoMetrics
	}
	rows := len(columns[0])
	for _, c := range columns[1:] {
		if len(c) != rows {
			return nil, fmt.Errorf("%w: %d != %d", ErrRaggedColumns, len(c), rows)
		}
	}
	if weights == nil {
		weights = make([]float64, len(columns))
		for i := range weights {
			weights[i] = catalog.DefaultWeight
		}
	}
	if len(weights) != len(columns) {
		return nil, fmt.Errorf("%w: %d weights for %d columns", ErrWeightCount, len(weights), len(columns))
	}

	var wsum float64
	for j, w := range weights {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %d is %v", ErrInvalidWeight, j, w)
		}
		wsum += w
	}
	if wsum <= 0 || math.IsInf(wsum, 0) {
		return nil, fmt.Errorf("%w: weights sum to %v", ErrInvalidWeight, wsum)
	}
	sums := make([]float64, rows)
	for j, c := range columns {
		filled := make([]float64, rows)
		for i, v := range c {
			filled[i] = v.Or(0)
		}
		scaled := rescale(uniformize(filled, e.maxQuantiles), e.scaleMax)
		for i, x := range scaled {
			sums[i] += weights[j] * x
		}
	}

	out := make([]model.Value, rows)
	for i, s := range sums {
		out[i] = model.Some(s / wsum)
	}
	return out, nil
}

// Score computes a catalog score over t. Every metric key must be a column
// of t; otherwise ErrSchemaMismatch names the absent keys and no score is
// produced.
func (e *Engine) Score(t *model.Table, def catalog.ScoreDef) ([]model.Value, error) {
	keys := def.Keys()
	if len(keys) == 0 {
		return missing(t.Len()), fmt.Errorf("%s: %w", def.Name, ErrNoMetrics)
	}

	var absent []string
	columns := make([][]model.Value, 0, len(keys))
	for _, k := range keys {
		c, ok := t.Column(k)
		if !ok {
			absent = append(absent, k)
			continue
		}
		columns = append(columns, c)
	}
	if len(absent) > 0 {
		return missing(t.Len()), fmt.Errorf("%s: %w: %s", def.Name, ErrSchemaMismatch, strings.Join(absent, ", "))
	}

	out, err := e.Compute(columns, def.Weights())
	if err != nil {
		return missing(t.Len()), fmt.Errorf("%s: %w", def.Name, err)
	}
	return out, nil
}

func missing(n int) []model.Value {
	return make([]model.Value, n)
}
