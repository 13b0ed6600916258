package scoring

import (
	"math"
	"slices"
	"sort"
)

// boundsThreshold widens the comparison against the outermost quantiles so
// that values equal to the column extremes map exactly onto 0 and 1.
const boundsThreshold = 1e-7

// quantiles returns nq evenly spaced reference points on [0,1] and the
// column's linearly interpolated quantiles at those points, made
// non-decreasing.
func quantiles(col []float64, nq int) (refs, qs []float64) {
	sorted := slices.Clone(col)
	slices.Sort(sorted)

	refs = make([]float64, nq)
	qs = make([]float64, nq)
	for i := range refs {
		if nq > 1 {
			refs[i] = float64(i) / float64(nq-1)
		}
		qs[i] = percentile(sorted, refs[i])
	}
	for i := 1; i < nq; i++ {
		qs[i] = math.Max(qs[i], qs[i-1])
	}
	return refs, qs
}

// percentile interpolates linearly between the closest ranks of a sorted
// slice; p is in [0,1].
func percentile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// interp is piecewise linear interpolation over increasing xp, clamped to
// fp's end points outside the range. With repeated xp values the segment
// right of the last equal point is used.
func interp(x float64, xp, fp []float64) float64 {
	last := len(xp) - 1
	switch {
	case x < xp[0]:
		return fp[0]
	case x >= xp[last]:
		return fp[last]
	}
	j := sort.Search(len(xp), func(i int) bool { return xp[i] > x }) - 1
	slope := (fp[j+1] - fp[j]) / (xp[j+1] - xp[j])
	return slope*(x-xp[j]) + fp[j]
}

// uniformize maps a column onto [0,1] by its empirical quantile rank.
// Interpolating from both ends and averaging gives tied values their mean
// rank. The minimum maps to 0 and the maximum to 1; a constant column maps
// to 0.
func uniformize(col []float64, maxQuantiles int) []float64 {
	out := make([]float64, len(col))
	if len(col) == 0 {
		return out
	}
	nq := min(maxQuantiles, len(col))
	refs, qs := quantiles(col, nq)

	negQs := make([]float64, nq)
	negRefs := make([]float64, nq)
	for i := range nq {
		negQs[i] = -qs[nq-1-i]
		negRefs[i] = -refs[nq-1-i]
	}

	lower, upper := qs[0], qs[nq-1]
	for i, x := range col {
		v := 0.5 * (interp(x, qs, refs) - interp(-x, negQs, negRefs))
		if x+boundsThreshold > upper {
			v = 1
		}
		if x-boundsThreshold < lower {
			v = 0
		}
		out[i] = v
	}
	return out
}

// rescale maps a column linearly onto [0, hi]. A zero-range column maps to 0.
func rescale(col []float64, hi float64) []float64 {
	out := make([]float64, len(col))
	if len(col) == 0 {
		return out
	}
	lo, top := slices.Min(col), slices.Max(col)
	span := top - lo
	if span == 0 {
		return out
	}
	for i, x := range col {
		out[i] = (x - lo) / span * hi
	}
	return out
}
