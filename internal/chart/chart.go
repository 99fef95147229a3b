// Package chart renders closing-price history to a PNG file.
package chart

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	apperrors "stock-assistant/internal/errors"
	"stock-assistant/internal/logging"
	"stock-assistant/internal/models"
)

const (
	DefaultWidth  = 1000
	DefaultHeight = 500
)

var gridStyle = gochart.Style{
	StrokeColor: drawing.ColorFromHex("d3d3d3"),
	StrokeWidth: 1.0,
}

// SeriesSource supplies a closing-price series for a ticker.
type SeriesSource interface {
	Closes(ctx context.Context, ticker string) (models.PriceSeries, error)
}

// Renderer writes a one-year price chart to a fixed path. Concurrent renders
// overwrite each other; the last writer wins.
type Renderer struct {
	source SeriesSource
	path   string
	width  int
	height int
	logger zerolog.Logger
}

// NewRenderer creates a renderer writing to path. Non-positive sizes fall back to defaults.
func NewRenderer(source SeriesSource, path string, width, height int, logger zerolog.Logger) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{
		source: source,
		path:   path,
		width:  width,
		height: height,
		logger: logger.With().Str("component", "chart").Logger(),
	}
}

// Path returns the output file path.
func (r *Renderer) Path() string {
	return r.path
}

// Title is the chart heading for ticker.
func Title(ticker string) string {
	return fmt.Sprintf("%s Stock Price Over the Last Year", ticker)
}

// Render fetches the series for ticker and writes the PNG, returning the file path.
func (r *Renderer) Render(ctx context.Context, ticker string) (string, error) {
	series, err := r.source.Closes(ctx, ticker)
	if err != nil {
		return "", err
	}
	if series.Len() == 0 {
		return "", apperrors.NewDataError(ticker, "nothing to plot", nil)
	}

	if err := r.writeFile(series); err != nil {
		return "", err
	}

	log := logging.WithTicker(r.logger, series.Ticker)
	log.Debug().
		Str("path", r.path).
		Int("points", series.Len()).
		Msg("chart written")
	return r.path, nil
}

// writeFile renders into a temp file next to the target and renames it into
// place, so a failed render never clobbers the previous chart.
func (r *Renderer) writeFile(series models.PriceSeries) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := WritePNG(f, series, r.width, r.height); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace chart file: %w", err)
	}
	return nil
}

// WritePNG plots close against date and encodes the result as PNG.
func WritePNG(w io.Writer, series models.PriceSeries, width, height int) error {
	if series.Len() == 0 || len(series.Dates) != series.Len() {
		return apperrors.NewDataError(series.Ticker, "nothing to plot", nil)
	}

	graph := gochart.Chart{
		Title:  Title(series.Ticker),
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeDateValueFormatter,
			GridMajorStyle: gridStyle,
			Range:          timeRange(series.Dates),
		},
		YAxis: gochart.YAxis{
			Name:           "Price (USD)",
			GridMajorStyle: gridStyle,
			Range:          valueRange(series.Values),
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "Close",
				XValues: series.Dates,
				YValues: series.Values,
			},
		},
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// timeRange pads a single-day series so the axis has non-zero width.
func timeRange(dates []time.Time) gochart.Range {
	if len(dates) != 1 {
		return nil
	}
	day := 24 * time.Hour
	return &gochart.ContinuousRange{
		Min: gochart.TimeToFloat64(dates[0].Add(-day)),
		Max: gochart.TimeToFloat64(dates[0].Add(day)),
	}
}

// valueRange pads a flat series so the axis has non-zero height.
func valueRange(values []float64) gochart.Range {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi > lo {
		return nil
	}
	return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}
