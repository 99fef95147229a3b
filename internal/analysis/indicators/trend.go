package indicators

import (
	"fmt"
)

// SMA calculates Simple Moving Average.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator.
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

func (s *SMA) Name() string {
	return fmt.Sprintf("SMA_%d", s.period)
}

// Calculate returns the rolling mean. The first period-1 values are NaN, so a period
// longer than the series yields only NaN rather than an error.
func (s *SMA) Calculate(values []float64) ([]float64, error) {
	if s.period <= 0 {
		return nil, ErrInvalidPeriod
	}

	result := nanSeries(len(values))
	for i := s.period - 1; i < len(values); i++ {
		result[i] = mean(values[i-s.period+1 : i+1])
	}

	return result, nil
}

// Latest returns the most recent rolling mean.
func (s *SMA) Latest(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrInsufficientData
	}
	result, err := s.Calculate(values)
	if err != nil {
		return 0, err
	}
	return Last(result), nil
}

// EMA calculates Exponential Moving Average seeded with the first value.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator whose span is period.
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA_%d", e.period)
}

// Calculate returns EMA[0] = v[0], EMA[t] = a*v[t] + (1-a)*EMA[t-1] with a = 2/(period+1).
func (e *EMA) Calculate(values []float64) ([]float64, error) {
	if e.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	return ewm(values, SpanAlpha(e.period)), nil
}

// Latest returns the most recent EMA value.
func (e *EMA) Latest(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrInsufficientData
	}
	result, err := e.Calculate(values)
	if err != nil {
		return 0, err
	}
	return Last(result), nil
}

// CalculateEMA calculates a span-based EMA on raw values (helper for other indicators).
func CalculateEMA(values []float64, span int) []float64 {
	if span <= 0 {
		return nil
	}
	return ewm(values, SpanAlpha(span))
}
