// Package catalog holds the immutable configuration that drives score
// computation: which metrics feed which score and with what weight.
package catalog

import (
	"fmt"
	"slices"
)

// DefaultWeight applies to metrics without an explicit weight.
const DefaultWeight = 1.0

// OverallScore is the name of the score built from every other score's metrics.
const OverallScore = "Overall Score"

// MetricRef is one metric key with its weight.
type MetricRef struct {
	Key    string
	Weight float64
}

// ScoreDef defines one composite score.
type ScoreDef struct {
	Name    string
	Metrics []MetricRef
}

// Keys returns the metric keys in order.
func (d ScoreDef) Keys() []string {
	out := make([]string, len(d.Metrics))
	for i, m := range d.Metrics {
		out[i] = m.Key
	}
	return out
}

// Weights returns the metric weights in key order.
func (d ScoreDef) Weights() []float64 {
	out := make([]float64, len(d.Metrics))
	for i, m := range d.Metrics {
		out[i] = m.Weight
	}
	return out
}

// Catalog is built once at startup and passed explicitly to the pipeline.
type Catalog struct {
	scores  []ScoreDef
	display []string
	numeric []string
}

// Option customizes a catalog under construction.
type Option func(*builder)

type builder struct {
	weights map[string]float64
	overall bool
}

// WithWeights overrides the weight of a metric in every score that uses it.
func WithWeights(w map[string]float64) Option {
	return func(b *builder) {
		for k, v := range w {
			b.weights[k] = v
		}
	}
}

// WithoutOverall skips the derived Overall Score.
func WithoutOverall() Option {
	return func(b *builder) { b.overall = false }
}

// New validates the definitions and returns a catalog. Unless disabled, an
// Overall Score is appended that covers the union of all metric keys, with
// the weight of the first score that names each key.
func New(scores []ScoreDef, display, numeric []string, opts ...Option) (*Catalog, error) {
	b := &builder{weights: make(map[string]float64), overall: true}
	for _, opt := range opts {
		opt(b)
	}
	for k, w := range b.weights {
		if w <= 0 {
			return nil, fmt.Errorf("%s=%v: %w", k, w, ErrInvalidWeight)
		}
	}

	c := &Catalog{
		display: dedupe(display),
		numeric: dedupe(numeric),
	}
	names := make(map[string]struct{})
	for _, s := range scores {
		if s.Name == "" {
			return nil, ErrEmptyName
		}
		if _, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("%s: %w", s.Name, ErrDuplicate)
		}
		names[s.Name] = struct{}{}

		def := ScoreDef{Name: s.Name}
		seen := make(map[string]struct{})
		for _, m := range s.Metrics {
			if _, dup := seen[m.Key]; dup {
				continue
			}
			seen[m.Key] = struct{}{}
			w := m.Weight
			if w == 0 {
				w = DefaultWeight
			}
			if o, ok := b.weights[m.Key]; ok {
				w = o
			}
			if w <= 0 {
				return nil, fmt.Errorf("%s/%s=%v: %w", s.Name, m.Key, w, ErrInvalidWeight)
			}
			def.Metrics = append(def.Metrics, MetricRef{Key: m.Key, Weight: w})
		}
		c.scores = append(c.scores, def)
	}

	if b.overall {
		if _, dup := names[OverallScore]; dup {
			return nil, fmt.Errorf("%s: %w", OverallScore, ErrDuplicate)
		}
		c.scores = append(c.scores, overall(c.scores))
	}
	return c, nil
}

func overall(scores []ScoreDef) ScoreDef {
	def := ScoreDef{Name: OverallScore}
	seen := make(map[string]struct{})
	for _, s := range scores {
		for _, m := range s.Metrics {
			if _, dup := seen[m.Key]; dup {
				continue
			}
			seen[m.Key] = struct{}{}
			def.Metrics = append(def.Metrics, m)
		}
	}
	return def
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Scores returns the score definitions in order (Overall Score last).
func (c *Catalog) Scores() []ScoreDef {
	out := make([]ScoreDef, len(c.scores))
	for i, s := range c.scores {
		out[i] = ScoreDef{Name: s.Name, Metrics: slices.Clone(s.Metrics)}
	}
	return out
}

// Score looks up a score definition by name.
func (c *Catalog) Score(name string) (ScoreDef, bool) {
	for _, s := range c.scores {
		if s.Name == name {
			return ScoreDef{Name: s.Name, Metrics: slices.Clone(s.Metrics)}, true
		}
	}
	return ScoreDef{}, false
}

// ScoreNames lists score names in order.
func (c *Catalog) ScoreNames() []string {
	out := make([]string, len(c.scores))
	for i, s := range c.scores {
		out[i] = s.Name
	}
	return out
}

// DisplayMetrics lists the raw/derived metrics offered as Top-10 tables.
func (c *Catalog) DisplayMetrics() []string { return slices.Clone(c.display) }

// NumericColumns lists every source column that must be normalized, i.e.
// all score inputs, display metrics and ratio inputs.
func (c *Catalog) NumericColumns() []string { return slices.Clone(c.numeric) }

// Rankable lists every name a Top-10 table can be requested for: scores
// first, then display metrics.
func (c *Catalog) Rankable() []string {
	return dedupe(append(c.ScoreNames(), c.display...))
}
