package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "stock-assistant/internal/errors"
	"stock-assistant/internal/models"
)

type stubProvider struct {
	calls   []string
	history models.History
	err     error
}

func (p *stubProvider) History(ctx context.Context, ticker string) (models.History, error) {
	p.calls = append(p.calls, ticker)
	return p.history, p.err
}

func candles(closes ...float64) []models.Candle {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Timestamp: base.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func TestAccessor_ClosesNormalizesTicker(t *testing.T) {
	provider := &stubProvider{history: models.History{Candles: candles(10, 11, 12)}}
	acc := NewAccessor(provider, zerolog.Nop())

	series, err := acc.Closes(context.Background(), " aapl ")
	if err != nil {
		t.Fatalf("Closes failed: %v", err)
	}
	if len(provider.calls) != 1 || provider.calls[0] != "AAPL" {
		t.Errorf("provider calls = %v, want [AAPL]", provider.calls)
	}
	if series.Ticker != "AAPL" || series.Len() != 3 {
		t.Errorf("series = %+v", series)
	}
	if last, _ := series.Last(); last != 12 {
		t.Errorf("last close = %v, want 12", last)
	}
}

func TestAccessor_EmptyHistoryIsDataUnavailable(t *testing.T) {
	acc := NewAccessor(&stubProvider{}, zerolog.Nop())

	_, err := acc.History(context.Background(), "NOPE")
	if !errors.Is(err, apperrors.ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
	var dataErr *apperrors.DataError
	if !errors.As(err, &dataErr) || dataErr.Ticker != "NOPE" {
		t.Errorf("expected DataError for NOPE, got %#v", err)
	}
}

func TestAccessor_ProviderErrorIsDataUnavailable(t *testing.T) {
	cause := errors.New("connection reset")
	acc := NewAccessor(&stubProvider{err: cause}, zerolog.Nop())

	_, err := acc.History(context.Background(), "MSFT")
	if !errors.Is(err, apperrors.ErrDataUnavailable) {
		t.Errorf("err = %v, want ErrDataUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("provider cause should stay in the chain: %v", err)
	}
}

func TestAccessor_InvalidTickerSkipsProvider(t *testing.T) {
	provider := &stubProvider{history: models.History{Candles: candles(1)}}
	acc := NewAccessor(provider, zerolog.Nop())

	for _, ticker := range []string{"", "AAPL; DROP TABLE", "THIS-TICKER-IS-WAY-TOO-LONG"} {
		if _, err := acc.History(context.Background(), ticker); !errors.Is(err, apperrors.ErrDataUnavailable) {
			t.Errorf("ticker %q: err = %v", ticker, err)
		}
	}
	if len(provider.calls) != 0 {
		t.Errorf("provider should not be called, got %v", provider.calls)
	}
}

func TestAccessor_QueriesProviderEveryCall(t *testing.T) {
	provider := &stubProvider{history: models.History{Candles: candles(1, 2)}}
	acc := NewAccessor(provider, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if _, err := acc.Closes(context.Background(), "IBM"); err != nil {
			t.Fatal(err)
		}
	}
	if len(provider.calls) != 3 {
		t.Errorf("provider calls = %d, want 3", len(provider.calls))
	}
}
