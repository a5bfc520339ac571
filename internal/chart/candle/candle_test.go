package candle

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var fallback = decimal.NewFromInt(100)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestNewRecomputesHighLow(t *testing.T) {
	// High/low arrive inconsistent with open/close and must be re-derived.
	c := New(60, dec(10), dec(5), dec(20), dec(12), 3, fallback)

	assert.True(t, c.High.Equal(dec(20)), "high should be max(open, close, low)")
	assert.True(t, c.Low.Equal(dec(10)), "low should be min(open, close, high)")
	assert.True(t, c.Open.Equal(dec(10)))
	assert.True(t, c.Close.Equal(dec(12)))
	assert.Equal(t, int64(3), c.Volume)
}

func TestNewInvariantHolds(t *testing.T) {
	cases := [][4]float64{
		{10, 10, 10, 10},
		{10, 8, 12, 9},
		{1, 100, 0.5, 50},
		{3, 1, 2, 4},
	}
	for _, tc := range cases {
		c := New(60, dec(tc[0]), dec(tc[1]), dec(tc[2]), dec(tc[3]), 1, fallback)
		assert.True(t, c.High.GreaterThanOrEqual(c.Open))
		assert.True(t, c.High.GreaterThanOrEqual(c.Close))
		assert.True(t, c.High.GreaterThanOrEqual(c.Low))
		assert.True(t, c.Low.LessThanOrEqual(c.Open))
		assert.True(t, c.Low.LessThanOrEqual(c.Close))
	}
}

func TestNewSanitizesInput(t *testing.T) {
	c := New(0, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, -5, fallback)

	assert.Greater(t, c.Time, int64(0), "non-positive time replaced with now")
	assert.True(t, c.Open.Equal(fallback), "invalid price replaced with fallback")
	assert.True(t, c.Close.Equal(fallback))
	assert.Equal(t, int64(0), c.Volume, "negative volume clamped to zero")

	neg := New(60, dec(-1), dec(-1), dec(-1), dec(-1), 1, fallback)
	assert.True(t, neg.Open.Equal(fallback))
}

func TestFlat(t *testing.T) {
	c := Flat(900, dec(42), fallback)

	assert.Equal(t, int64(900), c.Time)
	assert.True(t, c.Open.Equal(dec(42)))
	assert.True(t, c.High.Equal(dec(42)))
	assert.True(t, c.Low.Equal(dec(42)))
	assert.True(t, c.Close.Equal(dec(42)))
	assert.Equal(t, int64(0), c.Volume)
}

func TestTickSanitize(t *testing.T) {
	tick := Tick{Symbol: "005930", Price: decimal.Zero, Quantity: dec(-3), TradeTime: 0}
	clean := tick.Sanitize(fallback, 1000)

	assert.True(t, clean.Price.Equal(fallback))
	assert.Equal(t, int64(1000), clean.TradeTime)
	assert.True(t, clean.Quantity.IsZero())

	valid := Tick{Symbol: "005930", Price: dec(10.5), Quantity: dec(2), TradeTime: 500}
	assert.Equal(t, valid, valid.Sanitize(fallback, 1000))
}

func TestTickVolumeUnits(t *testing.T) {
	assert.Equal(t, int64(3), Tick{Quantity: dec(3)}.VolumeUnits())
	assert.Equal(t, int64(2), Tick{Quantity: dec(2.9)}.VolumeUnits())
	assert.Equal(t, int64(0), Tick{Quantity: decimal.Zero}.VolumeUnits())
}
