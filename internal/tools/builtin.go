package tools

import (
	"context"

	"stock-assistant/internal/analysis/indicators"
	apperrors "stock-assistant/internal/errors"
	"stock-assistant/internal/models"
	"stock-assistant/pkg/utils"
)

// SeriesSource supplies a fresh closing-price series per call.
type SeriesSource interface {
	Closes(ctx context.Context, ticker string) (models.PriceSeries, error)
}

// ChartRenderer writes a price chart for a ticker and returns the image path.
type ChartRenderer interface {
	Render(ctx context.Context, ticker string) (string, error)
}

// NewDefaultRegistry builds the registry of market tools.
func NewDefaultRegistry(source SeriesSource, renderer ChartRenderer) (*Registry, error) {
	return NewRegistry(Builtin(source, renderer)...)
}

// Builtin returns descriptors for all market tools.
func Builtin(source SeriesSource, renderer ChartRenderer) []Descriptor {
	m := &marketTools{source: source, renderer: renderer}
	return []Descriptor{
		{
			ID:          StockPrice,
			Description: "Gets the latest stock price given the ticker symbol of a company.",
			Parameters:  tickerSchema(),
			Handler:     m.latestPrice,
		},
		{
			ID:          SimpleMovingAverage,
			Description: "Calculates the Simple Moving Average (SMA) for a given stock ticker and a window.",
			Parameters:  windowSchema("SMA"),
			Handler:     m.simpleMovingAverage,
		},
		{
			ID:          ExponentialMovingAverage,
			Description: "Calculates the Exponential Moving Average (EMA) for a given stock ticker and a window.",
			Parameters:  windowSchema("EMA"),
			Handler:     m.exponentialMovingAverage,
		},
		{
			ID:          RelativeStrengthIndex,
			Description: "Calculates the Relative Strength Index (RSI) for a given stock ticker.",
			Parameters:  tickerSchema(),
			Handler:     m.relativeStrengthIndex,
		},
		{
			ID:          MovingAverageConvergenceDivergence,
			Description: "Calculates the Moving Average Convergence Divergence (MACD) for a given stock ticker. Returns MACD, signal and histogram.",
			Parameters:  tickerSchema(),
			Handler:     m.macd,
		},
		{
			ID:          PlotStockPrice,
			Description: "Plots the stock price for the last year given the stock ticker symbol of a company.",
			Parameters:  tickerSchema(),
			Handler:     m.plot,
			Terminal:    true,
		},
	}
}

type marketTools struct {
	source   SeriesSource
	renderer ChartRenderer
}

func (m *marketTools) closes(ctx context.Context, ticker string) ([]float64, error) {
	series, err := m.source.Closes(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, apperrors.NewDataError(ticker, "no price history returned", nil)
	}
	return series.Values, nil
}

func (m *marketTools) latestPrice(ctx context.Context, args Arguments) (Result, error) {
	values, err := m.closes(ctx, args.Ticker)
	if err != nil {
		return Result{}, err
	}
	return Result{Content: utils.FormatValue(indicators.Last(values))}, nil
}

func (m *marketTools) simpleMovingAverage(ctx context.Context, args Arguments) (Result, error) {
	values, err := m.closes(ctx, args.Ticker)
	if err != nil {
		return Result{}, err
	}
	sma := indicators.NewSMA(args.Window)
	v, err := sma.Latest(values)
	if err != nil {
		return Result{}, apperrors.Wrapf(err, "%s for %s", sma.Name(), args.Ticker)
	}
	return Result{Content: utils.FormatValue(v)}, nil
}

func (m *marketTools) exponentialMovingAverage(ctx context.Context, args Arguments) (Result, error) {
	values, err := m.closes(ctx, args.Ticker)
	if err != nil {
		return Result{}, err
	}
	ema := indicators.NewEMA(args.Window)
	v, err := ema.Latest(values)
	if err != nil {
		return Result{}, apperrors.Wrapf(err, "%s for %s", ema.Name(), args.Ticker)
	}
	return Result{Content: utils.FormatValue(v)}, nil
}

func (m *marketTools) relativeStrengthIndex(ctx context.Context, args Arguments) (Result, error) {
	values, err := m.closes(ctx, args.Ticker)
	if err != nil {
		return Result{}, err
	}
	rsi := indicators.DefaultRSI()
	v, err := rsi.Latest(values)
	if err != nil {
		return Result{}, apperrors.Wrapf(err, "%s for %s", rsi.Name(), args.Ticker)
	}
	return Result{Content: utils.FormatValue(v)}, nil
}

func (m *marketTools) macd(ctx context.Context, args Arguments) (Result, error) {
	values, err := m.closes(ctx, args.Ticker)
	if err != nil {
		return Result{}, err
	}
	macd := indicators.DefaultMACD()
	v, err := macd.LatestValue(values)
	if err != nil {
		return Result{}, apperrors.Wrapf(err, "%s for %s", macd.Name(), args.Ticker)
	}
	return Result{Content: utils.FormatValues(v.MACD, v.Signal, v.Histogram)}, nil
}

func (m *marketTools) plot(ctx context.Context, args Arguments) (Result, error) {
	path, err := m.renderer.Render(ctx, args.Ticker)
	if err != nil {
		return Result{}, err
	}
	return Result{Content: path, ImagePath: path}, nil
}
