package engine

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"chartengine/internal/chart/candle"
	"chartengine/internal/chart/store"
	"chartengine/internal/chart/timeframe"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UpdatePublisher fans chart updates out to subscribers. Implementations are
// best-effort: the engine logs publish failures and keeps going.
type UpdatePublisher interface {
	PublishTick(symbol string, price decimal.Decimal, volume int64) error
	PublishTimeframe(symbol string, tf timeframe.Timeframe, c candle.Candle) error
	PublishSeries(symbol string, tf timeframe.Timeframe, candles []candle.Candle) error
}

// TradeHistoryRepository is the durable trade log the engine bootstraps from.
type TradeHistoryRepository interface {
	FindDistinctSymbols(ctx context.Context) ([]string, error)
	// FindRecentTrades returns up to limit trades for the symbol, newest first.
	FindRecentTrades(ctx context.Context, symbol string, limit int) ([]candle.Tick, error)
}

// HistoryResponse is the query surface payload for one timeframe's candles.
type HistoryResponse struct {
	Candles  []candle.Candle `json:"candles"`
	TimeCode string          `json:"timeCode"`
}

// Engine owns the tick ingestion path, the scheduler advance path, the
// bootstrap pass, and the history query API. All series mutation goes through
// the per-symbol state in the store; the engine itself holds no candle data.
type Engine struct {
	store   *store.Store
	pub     UpdatePublisher
	history TradeHistoryRepository
	logger  *zap.Logger

	ready atomic.Bool
	now   func() time.Time
}

func New(st *store.Store, pub UpdatePublisher, history TradeHistoryRepository, logger *zap.Logger) *Engine {
	return &Engine{
		store:   st,
		pub:     pub,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// Ready reports whether the bootstrap pass has completed.
func (e *Engine) Ready() bool {
	return e.ready.Load()
}

// OnTrade ingests one trade tick: sanitize, fold into every timeframe's
// series for the symbol, then publish the tick update and the refreshed tail
// candle per timeframe.
func (e *Engine) OnTrade(t candle.Tick) {
	if strings.TrimSpace(t.Symbol) == "" {
		e.logger.Warn("dropping trade with blank symbol")
		return
	}

	t = t.Sanitize(e.store.DefaultPrice(), e.now().Unix())

	st := e.store.Get(t.Symbol)
	if dropped := st.ApplyTick(t); dropped > 0 {
		e.logger.Debug("late tick excluded from aggregation",
			zap.String("symbol", t.Symbol),
			zap.Int64("tradeTime", t.TradeTime),
			zap.Int("series", dropped))
	}

	if err := e.pub.PublishTick(t.Symbol, t.Price, t.VolumeUnits()); err != nil {
		e.logger.Warn("failed to publish tick update", zap.String("symbol", t.Symbol), zap.Error(err))
	}
	for tf, tail := range st.Tails() {
		if err := e.pub.PublishTimeframe(t.Symbol, tf, tail); err != nil {
			e.logger.Warn("failed to publish timeframe update",
				zap.String("symbol", t.Symbol),
				zap.String("timeframe", tf.Code()),
				zap.Error(err))
		}
	}
}

// AdvanceSymbols moves one timeframe forward to the current wall clock for
// every known symbol and broadcasts the result. Called by the scheduler once
// per timeframe width. A no-op until bootstrap completes so undercooked
// series are never published. One symbol's failure never stops the rest.
func (e *Engine) AdvanceSymbols(tf timeframe.Timeframe) {
	if !e.Ready() {
		e.logger.Debug("skipping candle advance, bootstrap not complete",
			zap.String("timeframe", tf.Code()))
		return
	}

	now := e.now().Unix()
	for _, symbol := range e.store.Symbols() {
		e.advanceSymbol(symbol, tf, now)
	}
}

func (e *Engine) advanceSymbol(symbol string, tf timeframe.Timeframe, now int64) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("candle advance panicked",
				zap.String("symbol", symbol),
				zap.String("timeframe", tf.Code()),
				zap.Any("panic", r))
		}
	}()

	st, ok := e.store.Peek(symbol)
	if !ok {
		return
	}

	tail, ok := st.Advance(tf, now)
	if !ok {
		return
	}

	if err := e.pub.PublishTimeframe(symbol, tf, tail); err != nil {
		e.logger.Warn("failed to publish timeframe update",
			zap.String("symbol", symbol),
			zap.String("timeframe", tf.Code()),
			zap.Error(err))
	}
	if err := e.pub.PublishSeries(symbol, tf, st.History(tf)); err != nil {
		e.logger.Warn("failed to publish series snapshot",
			zap.String("symbol", symbol),
			zap.String("timeframe", tf.Code()),
			zap.Error(err))
	}
}

// History serves the chart query surface. Blank input yields an empty
// response tagged with the default timeframe; an unknown timeframe code falls
// back to the default. The series is advanced to the current wall clock first
// so the response never trails behind real time, and the returned candles are
// a defensive copy.
func (e *Engine) History(symbol, timeframeCode string) HistoryResponse {
	if strings.TrimSpace(symbol) == "" || strings.TrimSpace(timeframeCode) == "" {
		e.logger.Warn("chart history request with blank parameters",
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframeCode))
		return HistoryResponse{Candles: []candle.Candle{}, TimeCode: timeframe.Default.Code()}
	}

	tf := timeframe.ParseOrDefault(timeframeCode)

	st := e.store.Get(symbol)
	st.Advance(tf, e.now().Unix())

	return HistoryResponse{
		Candles:  st.History(tf),
		TimeCode: tf.Code(),
	}
}

// Bootstrap rebuilds every symbol's series from the durable trade log and
// marks the engine ready. extraSymbols are subscribed symbols that may have
// no trade history yet; they still get a flat default candle per timeframe.
// Per-symbol failures are logged and skipped; bootstrap always completes.
func (e *Engine) Bootstrap(ctx context.Context, extraSymbols []string) {
	started := e.now()
	e.logger.Info("loading trade history for candle bootstrap")

	symbols, err := e.history.FindDistinctSymbols(ctx)
	if err != nil {
		e.logger.Error("failed to list symbols from trade history", zap.Error(err))
	}

	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		seen[s] = true
	}
	for _, s := range extraSymbols {
		if s != "" && !seen[s] {
			symbols = append(symbols, s)
			seen[s] = true
		}
	}

	for _, symbol := range symbols {
		if err := e.bootstrapSymbol(ctx, symbol); err != nil {
			e.logger.Error("failed to bootstrap symbol", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	e.ready.Store(true)
	e.logger.Info("candle bootstrap complete",
		zap.Int("symbols", len(symbols)),
		zap.Duration("elapsed", e.now().Sub(started)))
}

func (e *Engine) bootstrapSymbol(ctx context.Context, symbol string) error {
	trades, err := e.history.FindRecentTrades(ctx, symbol, e.store.RawTradeRetention())
	if err != nil {
		return err
	}

	// Repository returns newest-first; replay needs ascending time.
	sort.Slice(trades, func(i, j int) bool {
		return trades[i].TradeTime < trades[j].TradeTime
	})

	now := e.now().Unix()
	st := e.store.Get(symbol)
	for _, trade := range trades {
		trade.Symbol = symbol
		st.ApplyTick(trade.Sanitize(e.store.DefaultPrice(), now))
	}
	st.AdvanceAll(now)

	e.logger.Debug("bootstrapped symbol", zap.String("symbol", symbol), zap.Int("trades", len(trades)))
	return nil
}
