package candle

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one OHLCV record for a single bucketed time window.
// Time is the bucket start in epoch seconds, aligned to the timeframe width.
type Candle struct {
	Time   int64           `json:"time"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// New builds a Candle from possibly malformed input. Non-positive time is
// replaced with the current wall clock, non-positive prices with fallback,
// negative volume with zero, and high/low are re-derived from open/close/low
// so the OHLC invariant holds no matter what the caller handed in.
func New(t int64, open, high, low, close decimal.Decimal, volume int64, fallback decimal.Decimal) Candle {
	if t <= 0 {
		t = time.Now().Unix()
	}
	if volume < 0 {
		volume = 0
	}

	open = safePrice(open, fallback)
	high = safePrice(high, fallback)
	low = safePrice(low, fallback)
	close = safePrice(close, fallback)

	high = decimal.Max(decimal.Max(open, close), low)
	low = decimal.Min(decimal.Min(open, close), high)

	return Candle{
		Time:   t,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}
}

// Flat builds a zero-volume candle where all four prices equal price.
// Used for gap-fill and for symbols with no trades in the window.
func Flat(t int64, price, fallback decimal.Decimal) Candle {
	return New(t, price, price, price, price, 0, fallback)
}

func safePrice(p, fallback decimal.Decimal) decimal.Decimal {
	if p.IsPositive() {
		return p
	}
	return fallback
}
