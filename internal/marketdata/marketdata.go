// Package marketdata fetches daily price history for a ticker.
package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apperrors "stock-assistant/internal/errors"
	"stock-assistant/internal/logging"
	"stock-assistant/internal/models"
	"stock-assistant/internal/security"
)

// Lookback is how much history every request covers.
const Lookback = 365 * 24 * time.Hour

// Provider returns one year of daily bars for a ticker, oldest first.
type Provider interface {
	History(ctx context.Context, ticker string) (models.History, error)
}

// Accessor validates tickers, queries the provider once per call and rejects empty results.
// It keeps no state between calls.
type Accessor struct {
	provider Provider
	logger   zerolog.Logger
}

// NewAccessor creates an accessor over the given provider.
func NewAccessor(provider Provider, logger zerolog.Logger) *Accessor {
	return &Accessor{
		provider: provider,
		logger:   logger.With().Str("component", "marketdata").Logger(),
	}
}

// History fetches daily bars for ticker. An empty result is a DataError.
func (a *Accessor) History(ctx context.Context, ticker string) (models.History, error) {
	ticker = security.NormalizeTicker(ticker)
	if err := security.ValidateTicker(ticker); err != nil {
		return models.History{}, apperrors.NewDataError(ticker, "invalid ticker", err)
	}

	start := time.Now()
	history, err := a.provider.History(ctx, ticker)
	log := logging.WithTicker(a.logger, ticker)
	if err != nil {
		log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("history request failed")
		return models.History{}, apperrors.NewDataError(ticker, "history request failed", err)
	}
	if history.Len() == 0 {
		log.Warn().Dur("duration", time.Since(start)).Msg("no rows returned")
		return models.History{}, apperrors.NewDataError(ticker, "no price history returned", nil)
	}

	history.Ticker = ticker
	log.Debug().Int("bars", history.Len()).Dur("duration", time.Since(start)).Msg("history fetched")
	return history, nil
}

// Closes fetches the closing-price series for ticker.
func (a *Accessor) Closes(ctx context.Context, ticker string) (models.PriceSeries, error) {
	history, err := a.History(ctx, ticker)
	if err != nil {
		return models.PriceSeries{}, err
	}
	return history.Closes(), nil
}
