// Package models provides domain models for the stock assistant.
package models

import (
	"time"
)

// Candle represents one daily OHLCV bar.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// History is one ticker's daily bars, oldest first.
type History struct {
	Ticker  string
	Candles []Candle
}

// Len returns the number of bars.
func (h History) Len() int {
	return len(h.Candles)
}

// Closes returns the closing-price series.
func (h History) Closes() PriceSeries {
	series := PriceSeries{
		Ticker: h.Ticker,
		Dates:  make([]time.Time, len(h.Candles)),
		Values: make([]float64, len(h.Candles)),
	}
	for i, c := range h.Candles {
		series.Dates[i] = c.Timestamp
		series.Values[i] = c.Close
	}
	return series
}

// PriceSeries is an ordered (date, close) series. Dates and Values have equal length.
type PriceSeries struct {
	Ticker string
	Dates  []time.Time
	Values []float64
}

// Len returns the number of points.
func (s PriceSeries) Len() int {
	return len(s.Values)
}

// Last returns the most recent value and false when the series is empty.
func (s PriceSeries) Last() (float64, bool) {
	if len(s.Values) == 0 {
		return 0, false
	}
	return s.Values[len(s.Values)-1], true
}

// MACDValue is the latest MACD triple.
type MACDValue struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}
