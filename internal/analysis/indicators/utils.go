// Package indicators provides technical indicators over closing-price series.
//
// Results are aligned with their input: element i is the indicator value after
// observing values[0..i]. Positions without a defined value hold NaN, matching
// rolling-window semantics, so callers can tell "not enough history" from zero.
package indicators

import (
	"errors"
	"math"
)

var (
	// ErrInsufficientData is returned when there's not enough data for calculation.
	ErrInsufficientData = errors.New("insufficient data for calculation")
	// ErrInvalidPeriod is returned when the period is invalid.
	ErrInvalidPeriod = errors.New("invalid period")
)

// Fixed parameters of the momentum indicators.
const (
	RSICenterOfMass = 13
	MACDFastSpan    = 12
	MACDSlowSpan    = 26
	MACDSignalSpan  = 9
)

// sum calculates the sum of a slice of float64.
func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// mean calculates the arithmetic mean of a slice of float64.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return sum(values) / float64(len(values))
}

// nanSeries returns n NaN values.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SpanAlpha is the smoothing factor for an exponential window of the given span.
func SpanAlpha(span int) float64 {
	return 2.0 / (float64(span) + 1.0)
}

// ComAlpha is the smoothing factor for a given center of mass.
func ComAlpha(com float64) float64 {
	return 1.0 / (1.0 + com)
}

// ewm applies the non-adjusted exponential recurrence
// out[0] = v[0], out[t] = alpha*v[t] + (1-alpha)*out[t-1].
func ewm(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = values[0]
	for t := 1; t < len(values); t++ {
		out[t] = alpha*values[t] + (1-alpha)*out[t-1]
	}
	return out
}

// Last returns the final element, or NaN for an empty series.
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
