// Package model contains the player table passed between pipeline stages.
package model

import "math"

// Value is an optional metric value. The zero Value is missing, which is
// distinct from a recorded zero.
type Value struct {
	Float64 float64
	Valid   bool
}

// Missing is the explicit "no value" marker.
var Missing = Value{}

// Some wraps f. Non-finite inputs yield Missing.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing
	}
	return Value{Float64: f, Valid: true}
}

// Or returns the value, or def when missing.
func (v Value) Or(def float64) float64 {
	if !v.Valid {
		return def
	}
	return v.Float64
}
