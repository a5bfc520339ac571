package candle

import "github.com/shopspring/decimal"

// Tick is one trade event driving aggregation.
type Tick struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	TradeTime int64           `json:"tradeTime"` // epoch seconds
}

// Sanitize replaces malformed fields with safe defaults: a non-positive price
// becomes fallback, a non-positive trade time becomes now, a negative quantity
// becomes zero. Ticks are never rejected.
func (t Tick) Sanitize(fallback decimal.Decimal, now int64) Tick {
	if !t.Price.IsPositive() {
		t.Price = fallback
	}
	if t.TradeTime <= 0 {
		t.TradeTime = now
	}
	if t.Quantity.IsNegative() {
		t.Quantity = decimal.Zero
	}
	return t
}

// VolumeUnits converts the traded quantity to whole volume units.
func (t Tick) VolumeUnits() int64 {
	return t.Quantity.IntPart()
}
