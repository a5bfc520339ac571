package series

import (
	"chartengine/internal/chart/candle"
	"chartengine/internal/chart/timeframe"

	"github.com/shopspring/decimal"
)

// Series is an ordered, bounded, gap-free sequence of candles for one
// (symbol, timeframe) pair. Bucket starts strictly increase by exactly one
// timeframe width; once the retention limit is reached the oldest candles
// are dropped from the front.
//
// Series does no locking. Callers hold the owning symbol's guard.
type Series struct {
	tf       timeframe.Timeframe
	limit    int
	fallback decimal.Decimal
	candles  []candle.Candle
}

// New creates an empty series. limit is the retention window and fallback
// the price used when input carries no usable price.
func New(tf timeframe.Timeframe, limit int, fallback decimal.Decimal) *Series {
	return &Series{tf: tf, limit: limit, fallback: fallback}
}

// Timeframe returns the series' timeframe.
func (s *Series) Timeframe() timeframe.Timeframe {
	return s.tf
}

// ApplyTick folds one trade into the series: merge into the tail candle when
// the tick lands in the same bucket, otherwise gap-fill the missing buckets
// with flat candles and append a fresh one. Returns false when the tick's
// bucket is older than the tail; such late ticks are dropped.
func (s *Series) ApplyTick(t candle.Tick) bool {
	bucket := s.tf.Bucket(t.TradeTime)
	vol := t.VolumeUnits()

	if len(s.candles) == 0 {
		s.candles = append(s.candles, candle.New(bucket, t.Price, t.Price, t.Price, t.Price, vol, s.fallback))
		return true
	}

	last := s.candles[len(s.candles)-1]
	switch {
	case bucket == last.Time:
		// Same window: running max/min on high/low, last-write-wins close,
		// summed volume. Built directly so a running high above both open and
		// close survives the merge.
		s.candles[len(s.candles)-1] = candle.Candle{
			Time:   last.Time,
			Open:   last.Open,
			High:   decimal.Max(last.High, t.Price),
			Low:    decimal.Min(last.Low, t.Price),
			Close:  t.Price,
			Volume: last.Volume + vol,
		}
		return true
	case bucket > last.Time:
		s.fillGap(last.Time, bucket, last.Close)
		s.candles = append(s.candles, candle.New(bucket, t.Price, t.Price, t.Price, t.Price, vol, s.fallback))
		s.trim()
		return true
	default:
		// Tick older than the tail bucket.
		return false
	}
}

// AdvanceTo extends the series with flat candles up to the bucket containing
// now, so a chart keeps moving even when no trades arrive. On an empty series
// a single flat candle at the current bucket is synthesized from lastPrice.
func (s *Series) AdvanceTo(now int64, lastPrice decimal.Decimal) {
	bucket := s.tf.Bucket(now)

	if len(s.candles) == 0 {
		s.candles = append(s.candles, candle.Flat(bucket, lastPrice, s.fallback))
		return
	}

	last := s.candles[len(s.candles)-1]
	if bucket <= last.Time {
		return
	}
	s.fillGap(last.Time, bucket, last.Close)
	s.candles = append(s.candles, candle.Flat(bucket, last.Close, s.fallback))
	s.trim()
}

// fillGap appends flat candles for every bucket strictly between from and to.
func (s *Series) fillGap(from, to int64, price decimal.Decimal) {
	w := s.tf.Width()
	for t := from + w; t < to; t += w {
		s.candles = append(s.candles, candle.Flat(t, price, s.fallback))
	}
}

// trim drops candles from the front until the series fits the retention limit.
func (s *Series) trim() {
	if len(s.candles) <= s.limit {
		return
	}
	trimmed := make([]candle.Candle, s.limit)
	copy(trimmed, s.candles[len(s.candles)-s.limit:])
	s.candles = trimmed
}

// Len returns the number of candles held.
func (s *Series) Len() int {
	return len(s.candles)
}

// Last returns the tail candle, if any.
func (s *Series) Last() (candle.Candle, bool) {
	if len(s.candles) == 0 {
		return candle.Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}

// Candles returns a copy of the series so callers cannot mutate engine state.
func (s *Series) Candles() []candle.Candle {
	cp := make([]candle.Candle, len(s.candles))
	copy(cp, s.candles)
	return cp
}
