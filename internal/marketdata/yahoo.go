package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"stock-assistant/internal/models"
)

// YahooProvider reads daily bars from Yahoo Finance.
type YahooProvider struct {
	now func() time.Time
}

// NewYahooProvider creates a Yahoo Finance provider.
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{now: time.Now}
}

// History fetches the last year of daily bars.
func (p *YahooProvider) History(ctx context.Context, ticker string) (models.History, error) {
	end := p.now()
	start := end.Add(-Lookback)

	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	history := models.History{Ticker: ticker}
	iter := chart.Get(params)
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return models.History{}, err
		}
		bar := iter.Bar()
		history.Candles = append(history.Candles, models.Candle{
			Timestamp: time.Unix(int64(bar.Timestamp), 0).UTC(),
			Open:      price(bar.Open),
			High:      price(bar.High),
			Low:       price(bar.Low),
			Close:     price(bar.Close),
			Volume:    int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return models.History{}, fmt.Errorf("failed to get historical data for %s: %w", ticker, err)
	}

	return history, nil
}

func price(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
