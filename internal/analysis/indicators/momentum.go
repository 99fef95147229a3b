package indicators

import (
	"fmt"
	"math"

	"stock-assistant/internal/models"
)

// RSI calculates the Relative Strength Index with exponential smoothing
// of up and down moves (center of mass com, non-adjusted).
type RSI struct {
	com float64
}

// NewRSI creates a new RSI indicator with the given center of mass.
func NewRSI(com float64) *RSI {
	return &RSI{com: com}
}

// DefaultRSI is the 14-period-equivalent RSI (center of mass 13).
func DefaultRSI() *RSI {
	return NewRSI(RSICenterOfMass)
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI_com%g", r.com)
}

// Calculate returns the RSI series. result[0] is NaN because the first delta is undefined.
// With no down moves the smoothed loss is zero, RS is +Inf and RSI is exactly 100;
// with no moves at all RS is 0/0 and RSI is NaN.
func (r *RSI) Calculate(values []float64) ([]float64, error) {
	if r.com < 0 {
		return nil, ErrInvalidPeriod
	}

	n := len(values)
	result := nanSeries(n)
	if n < 2 {
		return result, nil
	}

	up := make([]float64, n-1)
	down := make([]float64, n-1)
	for i := 1; i < n; i++ {
		delta := values[i] - values[i-1]
		up[i-1] = math.Max(delta, 0)
		down[i-1] = math.Max(-delta, 0)
	}

	alpha := ComAlpha(r.com)
	avgUp := ewm(up, alpha)
	avgDown := ewm(down, alpha)

	for i := range avgUp {
		rs := avgUp[i] / avgDown[i]
		result[i+1] = 100 - 100/(1+rs)
	}

	return result, nil
}

// Latest returns the most recent RSI value.
func (r *RSI) Latest(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrInsufficientData
	}
	result, err := r.Calculate(values)
	if err != nil {
		return 0, err
	}
	return Last(result), nil
}

// MACD calculates Moving Average Convergence Divergence.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator.
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// DefaultMACD is MACD(12, 26, 9).
func DefaultMACD() *MACD {
	return NewMACD(MACDFastSpan, MACDSlowSpan, MACDSignalSpan)
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD_%d_%d_%d", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

// MACDSeries holds the three aligned MACD series.
type MACDSeries struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// Latest returns the final triple.
func (s MACDSeries) Latest() models.MACDValue {
	return models.MACDValue{
		MACD:      Last(s.MACD),
		Signal:    Last(s.Signal),
		Histogram: Last(s.Histogram),
	}
}

func (m *MACD) Calculate(values []float64) (MACDSeries, error) {
	if m.fastPeriod <= 0 || m.slowPeriod <= 0 || m.signalPeriod <= 0 {
		return MACDSeries{}, ErrInvalidPeriod
	}

	fastEMA := CalculateEMA(values, m.fastPeriod)
	slowEMA := CalculateEMA(values, m.slowPeriod)

	// MACD Line = Fast EMA - Slow EMA
	macdLine := make([]float64, len(values))
	for i := range values {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	// Signal Line = EMA of MACD Line
	signalLine := CalculateEMA(macdLine, m.signalPeriod)

	// Histogram = MACD Line - Signal Line
	histogram := make([]float64, len(values))
	for i := range values {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return MACDSeries{
		MACD:      macdLine,
		Signal:    signalLine,
		Histogram: histogram,
	}, nil
}

// LatestValue returns the most recent MACD triple.
func (m *MACD) LatestValue(values []float64) (models.MACDValue, error) {
	if len(values) == 0 {
		return models.MACDValue{}, ErrInsufficientData
	}
	series, err := m.Calculate(values)
	if err != nil {
		return models.MACDValue{}, err
	}
	return series.Latest(), nil
}
