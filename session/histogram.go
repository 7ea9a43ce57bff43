// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"math"
	"sort"
)

// Histogram is a compact quantile summary of a series of millisecond
// measurements, emitted in ws_metrics events and run summaries.
type Histogram struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Mean  float64 `json:"mean"`
}

// HistogramSummary summarizes values (milliseconds) into count, min,
// max, mean, and linearly interpolated p50/p95/p99. An empty series
// yields the all-zero summary.
func HistogramSummary(values []float64) Histogram {
	if len(values) == 0 {
		return Histogram{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	total := 0.0
	for _, value := range sorted {
		total += value
	}
	return Histogram{
		Count: len(sorted),
		Min:   round3(sorted[0]),
		Max:   round3(sorted[len(sorted)-1]),
		P50:   round3(percentile(sorted, 0.50)),
		P95:   round3(percentile(sorted, 0.95)),
		P99:   round3(percentile(sorted, 0.99)),
		Mean:  round3(total / float64(len(sorted))),
	}
}

// percentile computes quantile q over sorted values with linear
// interpolation at rank (n-1)*q.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0.0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	position := float64(len(sorted)-1) * q
	low := int(position)
	high := low + 1
	if high > len(sorted)-1 {
		high = len(sorted) - 1
	}
	fraction := position - float64(low)
	return sorted[low] + (sorted[high]-sorted[low])*fraction
}

func round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}
