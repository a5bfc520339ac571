package store

import (
	"fmt"
	"sync"
	"testing"

	"chartengine/internal/chart/candle"
	"chartengine/internal/chart/timeframe"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return New(Options{
		SeriesRetention:   100,
		RawTradeRetention: 1000,
		DefaultPrice:      decimal.NewFromInt(100),
	})
}

func tick(symbol string, price float64, qty int64, ts int64) candle.Tick {
	return candle.Tick{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(price),
		Quantity:  decimal.NewFromInt(qty),
		TradeTime: ts,
	}
}

func TestGetCreatesOnce(t *testing.T) {
	s := newTestStore()

	first := s.Get("005930")
	second := s.Get("005930")
	assert.Same(t, first, second)
	assert.Equal(t, 1, s.Count())
}

func TestGetConcurrentCreateRace(t *testing.T) {
	s := newTestStore()

	const workers = 64
	states := make([]*SymbolState, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i] = s.Get("RACE")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		require.Same(t, states[0], states[i], "two states created for one symbol")
	}
	assert.Equal(t, 1, s.Count())
}

func TestPeekDoesNotCreate(t *testing.T) {
	s := newTestStore()

	_, ok := s.Peek("NOPE")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Count())

	s.Get("NOPE")
	_, ok = s.Peek("NOPE")
	assert.True(t, ok)
}

func TestApplyTickUpdatesAllTimeframes(t *testing.T) {
	s := newTestStore()
	st := s.Get("005930")

	st.ApplyTick(tick("005930", 10, 2, 36010))

	tails := st.Tails()
	require.Len(t, tails, len(timeframe.All))
	for tf, c := range tails {
		assert.Equal(t, tf.Bucket(36010), c.Time, tf.Code())
		assert.True(t, c.Close.Equal(decimal.NewFromFloat(10)), tf.Code())
		assert.Equal(t, int64(2), c.Volume, tf.Code())
	}
}

func TestConcurrentTicksSameSymbol(t *testing.T) {
	s := newTestStore()
	st := s.Get("005930")

	// All ticks land in one 1h bucket; total volume must equal the sum of
	// quantities against any sequential interleaving.
	const workers = 50
	const ticksPerWorker = 20
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < ticksPerWorker; i++ {
				st.ApplyTick(tick("005930", 10, 1, 36010))
			}
		}()
	}
	wg.Wait()

	c, ok := st.Latest(timeframe.Hour1)
	require.True(t, ok)
	assert.Equal(t, int64(workers*ticksPerWorker), c.Volume, "no lost updates")
	assert.True(t, c.High.Equal(decimal.NewFromFloat(10)))
	assert.True(t, c.Low.Equal(decimal.NewFromFloat(10)))
}

func TestConcurrentTicksDistinctSymbols(t *testing.T) {
	s := newTestStore()

	const symbols = 20
	const ticksPerSymbol = 50
	var wg sync.WaitGroup
	for i := 0; i < symbols; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			symbol := fmt.Sprintf("SYM%02d", i)
			st := s.Get(symbol)
			for j := 0; j < ticksPerSymbol; j++ {
				st.ApplyTick(tick(symbol, float64(i+1), 1, 36010))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, symbols, s.Count())
	for i := 0; i < symbols; i++ {
		st, ok := s.Peek(fmt.Sprintf("SYM%02d", i))
		require.True(t, ok)
		c, ok := st.Latest(timeframe.Minute1)
		require.True(t, ok)
		assert.Equal(t, int64(ticksPerSymbol), c.Volume, "cross-symbol interference")
		assert.True(t, c.Close.Equal(decimal.NewFromFloat(float64(i+1))))
	}
}

func TestRecentTradesBounded(t *testing.T) {
	s := New(Options{
		SeriesRetention:   100,
		RawTradeRetention: 10,
		DefaultPrice:      decimal.NewFromInt(100),
	})
	st := s.Get("005930")

	for i := int64(0); i < 25; i++ {
		st.ApplyTick(tick("005930", 10, 1, 1000+i))
	}

	recent := st.RecentTrades()
	require.Len(t, recent, 10, "FIFO capped at the retention limit")
	assert.Equal(t, int64(1015), recent[0].TradeTime, "oldest dropped first")
	assert.Equal(t, int64(1024), recent[9].TradeTime)
}

func TestLastPriceTracksMostRecentTick(t *testing.T) {
	s := newTestStore()
	st := s.Get("005930")

	assert.True(t, st.LastPrice().IsZero())

	st.ApplyTick(tick("005930", 10, 1, 36010))
	st.ApplyTick(tick("005930", 12, 1, 36070))
	assert.True(t, st.LastPrice().Equal(decimal.NewFromFloat(12)))
}

func TestAdvanceUsesLastPriceForEmptySeries(t *testing.T) {
	s := newTestStore()
	st := s.Get("005930")

	// No trades ever: advancing synthesizes a flat candle at the default price.
	c, ok := st.Advance(timeframe.Minute15, 1000)
	require.True(t, ok)
	assert.Equal(t, int64(900), c.Time)
	assert.True(t, c.Close.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(0), c.Volume)
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := newTestStore()
	st := s.Get("005930")
	st.ApplyTick(tick("005930", 10, 1, 100))

	h := st.History(timeframe.Minute1)
	require.Len(t, h, 1)
	h[0].Volume = 999

	c, _ := st.Latest(timeframe.Minute1)
	assert.Equal(t, int64(1), c.Volume)
}

func TestOptionDefaults(t *testing.T) {
	s := New(Options{})
	assert.Equal(t, defaultRawTradeRetention, s.RawTradeRetention())
	assert.True(t, s.DefaultPrice().IsPositive())
}
