package kuehlmak

import (
	"fmt"
	"sort"
)

// ComputeReferenceStats evaluates every layout in the reference set at full
// precision and returns the per-component median/IQR needed to populate
// Params.ReferenceStats, grounded on the teacher's
// Scorer.computeMediansAndIQR (internal/keycraft/scorer.go): a small corpus
// of known layouts (e.g. Qwerty, the layouts under comparison) stands in
// for "typical" component scale, since there is no closed-form range for
// quantities like Redirects or Contorts.
func ComputeReferenceStats(model *Model, layouts []*Layout, stats TextStats) (map[string]ComponentStats, error) {
	if len(layouts) == 0 {
		return nil, fmt.Errorf("need at least one reference layout")
	}

	samples := make(map[string][]float64, len(componentNames))
	for _, name := range componentNames {
		samples[name] = make([]float64, 0, len(layouts))
	}

	for _, layout := range layouts {
		scores, err := EvalLayout(model, layout, stats, 1.0, false)
		if err != nil {
			return nil, fmt.Errorf("evaluating reference layout %s: %w", layout.String(), err)
		}
		for _, name := range componentNames {
			samples[name] = append(samples[name], componentValue(name, scores))
		}
	}

	out := make(map[string]ComponentStats, len(componentNames))
	for _, name := range componentNames {
		out[name] = medianIQR(samples[name])
	}
	return out, nil
}

// medianIQR computes the median and interquartile range of a sample using
// linear quantile interpolation at position q*(n-1) (the "inclusive"
// method), the same approach as the
// teacher's RobustScale (internal/keycraft/scorer.go).
func medianIQR(values []float64) ComponentStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return ComponentStats{
		Median: quantile(sorted, 0.5),
		IQR:    quantile(sorted, 0.75) - quantile(sorted, 0.25),
	}
}

// quantile returns the q-th quantile (0<=q<=1) of an already-sorted slice
// via linear interpolation between the two nearest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// normalizeComponent rescales a raw component value to (value-Median)/IQR
// when Params.Normalize is on and a reference entry exists for name; an IQR
// of 0 (a degenerate or missing reference set) leaves the value untouched
// rather than dividing by zero.
func normalizeComponent(params Params, name string, sVal float64) float64 {
	if !params.Normalize {
		return sVal
	}
	stats, ok := params.ReferenceStats[name]
	if !ok || stats.IQR == 0 {
		return sVal
	}
	return (sVal - stats.Median) / stats.IQR
}
