package scheduler

import (
	"context"
	"time"

	"chartengine/internal/chart/timeframe"

	"go.uber.org/zap"
)

// Advancer is the engine-side hook a scheduler fire invokes.
type Advancer interface {
	AdvanceSymbols(tf timeframe.Timeframe)
}

// Scheduler runs one independent ticker per timeframe so each series keeps
// moving at its own cadence even when no trades arrive. Fires are decoupled
// from the tick-ingestion path; the engine serializes per symbol internally.
type Scheduler struct {
	advancer Advancer
	logger   *zap.Logger
}

func New(advancer Advancer, logger *zap.Logger) *Scheduler {
	return &Scheduler{advancer: advancer, logger: logger}
}

// Start launches one goroutine per timeframe, each firing at that
// timeframe's width. Returns immediately; tickers stop when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	for _, tf := range timeframe.All {
		go s.run(ctx, tf)
	}
	s.logger.Info("timeframe schedulers started", zap.Int("timeframes", len(timeframe.All)))
}

func (s *Scheduler) run(ctx context.Context, tf timeframe.Timeframe) {
	ticker := time.NewTicker(tf.Duration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("timeframe scheduler stopped", zap.String("timeframe", tf.Code()))
			return
		case <-ticker.C:
			s.advancer.AdvanceSymbols(tf)
		}
	}
}
