package store

import (
	"sync"

	"chartengine/internal/chart/candle"
	"chartengine/internal/chart/series"
	"chartengine/internal/chart/timeframe"

	"github.com/shopspring/decimal"
)

// SymbolState owns everything the engine tracks for one traded symbol: one
// candle series per timeframe, a bounded FIFO of recent raw trades, and the
// last observed trade price/quantity. A single RWMutex guards all of it, so
// mutations for one symbol are totally ordered while symbols stay independent.
type SymbolState struct {
	mu sync.RWMutex

	series       map[timeframe.Timeframe]*series.Series
	recent       []candle.Tick
	lastPrice    decimal.Decimal
	lastQuantity decimal.Decimal

	rawLimit int
	fallback decimal.Decimal
}

func newSymbolState(seriesLimit, rawLimit int, fallback decimal.Decimal) *SymbolState {
	st := &SymbolState{
		series:   make(map[timeframe.Timeframe]*series.Series, len(timeframe.All)),
		rawLimit: rawLimit,
		fallback: fallback,
	}
	for _, tf := range timeframe.All {
		st.series[tf] = series.New(tf, seriesLimit, fallback)
	}
	return st
}

// ApplyTick records the raw trade and folds it into every timeframe's series
// inside one critical section. Returns the number of series that dropped the
// tick because its bucket was older than their tail.
func (st *SymbolState) ApplyTick(t candle.Tick) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.recent = append(st.recent, t)
	if len(st.recent) > st.rawLimit {
		st.recent = st.recent[len(st.recent)-st.rawLimit:]
	}
	st.lastPrice = t.Price
	st.lastQuantity = t.Quantity

	dropped := 0
	for _, tf := range timeframe.All {
		if !st.series[tf].ApplyTick(t) {
			dropped++
		}
	}
	return dropped
}

// Advance moves one timeframe's series forward to the bucket containing now,
// gap-filling with flat candles, and returns the new tail.
func (st *SymbolState) Advance(tf timeframe.Timeframe, now int64) (candle.Candle, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := st.series[tf]
	s.AdvanceTo(now, st.lastPrice)
	return s.Last()
}

// AdvanceAll moves every timeframe's series forward to now. Used by bootstrap
// to close the gap between the last historical trade and process start.
func (st *SymbolState) AdvanceAll(now int64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, tf := range timeframe.All {
		st.series[tf].AdvanceTo(now, st.lastPrice)
	}
}

// History returns a defensive copy of one timeframe's candles.
func (st *SymbolState) History(tf timeframe.Timeframe) []candle.Candle {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.series[tf].Candles()
}

// Latest returns the tail candle of one timeframe's series.
func (st *SymbolState) Latest(tf timeframe.Timeframe) (candle.Candle, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.series[tf].Last()
}

// Tails returns the tail candle of every non-empty series.
func (st *SymbolState) Tails() map[timeframe.Timeframe]candle.Candle {
	st.mu.RLock()
	defer st.mu.RUnlock()

	tails := make(map[timeframe.Timeframe]candle.Candle, len(st.series))
	for tf, s := range st.series {
		if last, ok := s.Last(); ok {
			tails[tf] = last
		}
	}
	return tails
}

// LastPrice returns the most recent trade price, or zero if no trade was seen.
func (st *SymbolState) LastPrice() decimal.Decimal {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.lastPrice
}

// RecentTrades returns a copy of the bounded raw-trade FIFO, oldest first.
func (st *SymbolState) RecentTrades() []candle.Tick {
	st.mu.RLock()
	defer st.mu.RUnlock()

	cp := make([]candle.Tick, len(st.recent))
	copy(cp, st.recent)
	return cp
}
