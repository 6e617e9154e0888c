package signal

import (
	"math"
	"sort"
)

// Normalize removes the window mean and rescales the result to [0, 1]. A
// constant window has no range to rescale and comes back as all zeros.
func Normalize(window []float64) []float64 {
	return minMax(detrend(window))
}

func detrend(window []float64) []float64 {
	out := make([]float64, len(window))
	m := mean(window)
	for i, v := range window {
		out[i] = v - m
	}
	return out
}

func minMax(window []float64) []float64 {
	out := make([]float64, len(window))
	if len(window) == 0 {
		return out
	}

	lo, hi := window[0], window[0]
	for _, v := range window[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 || math.IsNaN(span) {
		return out
	}
	for i, v := range window {
		out[i] = (v - lo) / span
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
