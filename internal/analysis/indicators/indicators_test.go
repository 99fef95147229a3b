package indicators

import (
	"errors"
	"math"
	"testing"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.10f, want %.10f (tol=%g)", label, got, want, tol)
	}
}

// fixtureCloses is a deterministic year-like series with trend and oscillation.
func fixtureCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		x := float64(i)
		out[i] = 150 + 0.25*x + 8*math.Sin(x/6) + 3*math.Cos(x/2.5)
	}
	return out
}

func TestSMA_Correctness_Period3(t *testing.T) {
	// Prices: 100, 102, 104, 103, 105
	// SMA(3): -, -, 102, 103, 104
	got, err := NewSMA(3).Calculate([]float64{100, 102, 104, 103, 105})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Errorf("warm-up values should be NaN, got %v", got[:2])
	}
	assertClose(t, "SMA[2]", got[2], 102, 1e-12)
	assertClose(t, "SMA[3]", got[3], 103, 1e-12)
	assertClose(t, "SMA[4]", got[4], 104, 1e-12)
}

func TestSMA_WindowLongerThanSeriesIsNaN(t *testing.T) {
	v, err := NewSMA(30).Latest([]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("window longer than history must not error: %v", err)
	}
	if !math.IsNaN(v) {
		t.Errorf("got %v, want NaN", v)
	}
}

func TestSMA_Window20MatchesIndependentMean(t *testing.T) {
	closes := fixtureCloses(252)

	got, err := NewSMA(20).Latest(closes)
	if err != nil {
		t.Fatal(err)
	}

	var total float64
	for i := len(closes) - 20; i < len(closes); i++ {
		total += closes[i]
	}
	assertClose(t, "SMA(20)", got, total/20, 1e-9)
}

func TestSMA_InvalidPeriod(t *testing.T) {
	for _, p := range []int{0, -3} {
		if _, err := NewSMA(p).Calculate([]float64{1, 2}); !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("period %d: err = %v", p, err)
		}
	}
	if _, err := NewSMA(5).Latest(nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty series: err = %v", err)
	}
}

func TestEMA_TwoPoint(t *testing.T) {
	for _, w := range []int{1, 2, 5, 12, 50} {
		alpha := 2.0 / float64(w+1)
		got, err := NewEMA(w).Latest([]float64{100, 110})
		if err != nil {
			t.Fatal(err)
		}
		assertClose(t, "EMA two-point", got, alpha*110+(1-alpha)*100, 1e-12)
	}
}

func TestEMA_SeededWithFirstValue(t *testing.T) {
	got, _ := NewEMA(10).Calculate([]float64{42, 50, 60})
	if got[0] != 42 {
		t.Errorf("EMA[0] = %v, want 42", got[0])
	}
	// alpha = 2/11
	e1 := 2.0/11*50 + 9.0/11*42
	e2 := 2.0/11*60 + 9.0/11*e1
	assertClose(t, "EMA[1]", got[1], e1, 1e-12)
	assertClose(t, "EMA[2]", got[2], e2, 1e-12)
}

func TestRSI_HandCalculated(t *testing.T) {
	// deltas: +1, -1; alpha = 1/14
	// up:   1, 13/14   down: 0, 1/14
	// RS[1] = +Inf -> 100; RS[2] = 13 -> 100 - 100/14
	got, err := DefaultRSI().Calculate([]float64{1, 2, 1})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got[0]) {
		t.Errorf("RSI[0] = %v, want NaN", got[0])
	}
	if got[1] != 100 {
		t.Errorf("RSI[1] = %v, want 100", got[1])
	}
	assertClose(t, "RSI[2]", got[2], 100-100.0/14, 1e-9)
}

func TestRSI_NoDownMovesIs100(t *testing.T) {
	got, err := DefaultRSI().Latest([]float64{10, 11, 11, 12, 15, 15, 20})
	if err != nil {
		t.Fatal(err)
	}
	if got != 100 {
		t.Errorf("RSI = %v, want 100", got)
	}
}

func TestRSI_FlatSeriesIsNaN(t *testing.T) {
	got, _ := DefaultRSI().Latest([]float64{5, 5, 5, 5})
	if !math.IsNaN(got) {
		t.Errorf("RSI of flat series = %v, want NaN", got)
	}
}

func TestRSI_SingleValueIsNaN(t *testing.T) {
	got, err := DefaultRSI().Latest([]float64{5})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got) {
		t.Errorf("RSI = %v, want NaN", got)
	}
}

func TestMACD_ConstantSeriesIsZero(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 250
	}
	v, err := DefaultMACD().LatestValue(closes)
	if err != nil {
		t.Fatal(err)
	}
	assertClose(t, "MACD", v.MACD, 0, 1e-9)
	assertClose(t, "signal", v.Signal, 0, 1e-9)
	assertClose(t, "histogram", v.Histogram, 0, 1e-9)
}

func TestMACD_MatchesComponentEMAs(t *testing.T) {
	closes := fixtureCloses(252)
	series, err := DefaultMACD().Calculate(closes)
	if err != nil {
		t.Fatal(err)
	}

	fast, _ := NewEMA(12).Calculate(closes)
	slow, _ := NewEMA(26).Calculate(closes)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal, _ := NewEMA(9).Calculate(line)

	last := len(closes) - 1
	assertClose(t, "MACD", series.MACD[last], line[last], 1e-12)
	assertClose(t, "signal", series.Signal[last], signal[last], 1e-12)
	if series.Histogram[last] != series.MACD[last]-series.Signal[last] {
		t.Errorf("histogram %v != MACD - signal", series.Histogram[last])
	}
}

func TestMACD_InvalidPeriod(t *testing.T) {
	if _, err := NewMACD(12, 0, 9).Calculate([]float64{1}); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("err = %v", err)
	}
}

func TestLast(t *testing.T) {
	if !math.IsNaN(Last(nil)) {
		t.Error("Last(nil) should be NaN")
	}
	if Last([]float64{1, 2, 3}) != 3 {
		t.Error("Last returned wrong element")
	}
}
