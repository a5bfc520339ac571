package store

import (
	"sync"

	"github.com/shopspring/decimal"
)

const (
	defaultSeriesRetention   = 100
	defaultRawTradeRetention = 1000
)

// Options tunes the per-symbol state created by the store.
type Options struct {
	SeriesRetention   int             // candles kept per (symbol, timeframe)
	RawTradeRetention int             // raw trades kept per symbol
	DefaultPrice      decimal.Decimal // flat price for symbols with no history
}

// Store is the registry of per-symbol state. Symbol state is created lazily
// on first reference and retained for the life of the process.
type Store struct {
	globalMu sync.RWMutex
	data     map[string]*SymbolState

	opts Options
}

func New(opts Options) *Store {
	if opts.SeriesRetention <= 0 {
		opts.SeriesRetention = defaultSeriesRetention
	}
	if opts.RawTradeRetention <= 0 {
		opts.RawTradeRetention = defaultRawTradeRetention
	}
	if !opts.DefaultPrice.IsPositive() {
		opts.DefaultPrice = decimal.NewFromInt(100)
	}
	return &Store{
		data: make(map[string]*SymbolState),
		opts: opts,
	}
}

// Get returns the state for a symbol, creating it if absent. The create path
// re-checks under the exclusive lock so two callers never race two states
// into existence for the same symbol.
func (s *Store) Get(symbol string) *SymbolState {
	// Fast path: shared lock only
	s.globalMu.RLock()
	st, ok := s.data[symbol]
	s.globalMu.RUnlock()
	if ok {
		return st
	}

	s.globalMu.Lock()
	defer s.globalMu.Unlock()
	if st, ok = s.data[symbol]; ok {
		return st
	}
	st = newSymbolState(s.opts.SeriesRetention, s.opts.RawTradeRetention, s.opts.DefaultPrice)
	s.data[symbol] = st
	return st
}

// Peek returns the state for a symbol without creating it.
func (s *Store) Peek(symbol string) (*SymbolState, bool) {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()
	st, ok := s.data[symbol]
	return st, ok
}

// Symbols returns a snapshot of all known symbols.
func (s *Store) Symbols() []string {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	out := make([]string, 0, len(s.data))
	for sym := range s.data {
		out = append(out, sym)
	}
	return out
}

// Count returns the number of known symbols.
func (s *Store) Count() int {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()
	return len(s.data)
}

// DefaultPrice exposes the configured fallback price.
func (s *Store) DefaultPrice() decimal.Decimal {
	return s.opts.DefaultPrice
}

// RawTradeRetention exposes the per-symbol raw trade FIFO capacity.
func (s *Store) RawTradeRetention() int {
	return s.opts.RawTradeRetention
}
