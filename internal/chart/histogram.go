package chart

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the fixed bin count of the amount histograms.
const DefaultBins = 20

// Histogram is a fixed-bin count of amounts. Edges has len(Counts)+1 entries.
// Every value falls in [Edges[i], Edges[i+1]); the last bin also holds the maximum.
type Histogram struct {
	Title  string    `json:"title"`
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
	Mean   float64   `json:"mean"`
	Median float64   `json:"median"`
}

// NewHistogram bins values into bins equal-width buckets spanning their range.
// A single distinct value gets a unit-wide range centred on it. It returns nil
// for empty input.
func NewHistogram(title string, values []float64, bins int) *Histogram {
	if len(values) == 0 {
		return nil
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	x := append([]float64(nil), values...)
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram excludes the upper divider; nudge it so the maximum lands in the last bin.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	return &Histogram{
		Title:  title,
		Edges:  edges,
		Counts: stat.Histogram(nil, dividers, x, nil),
		Mean:   stat.Mean(x, nil),
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
	}
}

// Total returns the number of binned values.
func (h *Histogram) Total() int {
	return int(floats.Sum(h.Counts))
}
