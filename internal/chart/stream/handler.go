package stream

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"chartengine/internal/chart/candle"
	"chartengine/pkg/storage/postgres"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TradeSink receives parsed trade ticks, normally the candle engine.
type TradeSink interface {
	OnTrade(t candle.Tick)
}

// TradeWriter persists raw trades to the durable history store.
type TradeWriter interface {
	InsertTrade(ctx context.Context, record *postgres.TradeRecord) error
}

// MakeMessageHandler returns a function that handles incoming feed messages
// by parsing trade events, feeding them into the candle engine, and writing
// the raw trade to the durable history store.
func MakeMessageHandler(logger *zap.Logger, sink TradeSink, trades TradeWriter) func(msg []byte) {
	return func(msg []byte) {
		// Step 1: Extract topic string for early filtering
		var meta struct {
			Topic string `json:"topic"`
		}
		if err := json.Unmarshal(msg, &meta); err != nil {
			logger.Warn("failed to extract topic", zap.Error(err))
			return
		}
		if !isTradeTopic(meta.Topic) {
			return // Ignore non-trade messages (e.g., subscription responses)
		}

		// Step 2: Fully parse the trade message payload
		var parsed TradeMessage
		if err := json.Unmarshal(msg, &parsed); err != nil {
			logger.Warn("failed to parse trade payload", zap.Error(err))
			return
		}
		symbol := extractSymbolFromTopic(parsed.Topic) // e.g., "trade.005930" → "005930"

		// Step 3: Feed each trade into the engine and the durable store
		for _, d := range parsed.Data {
			tick := candle.Tick{
				Symbol:    symbol,
				Price:     parseDecimal(d.Price),
				Quantity:  parseDecimal(d.Quantity),
				TradeTime: d.TradeTime,
			}
			sink.OnTrade(tick)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err := trades.InsertTrade(ctx, postgres.ToTradeRecord(tick))
			cancel()
			if err != nil {
				logger.Warn("failed to insert trade record", zap.String("symbol", symbol), zap.Error(err))
			}
		}
	}
}

// parseDecimal converts a wire decimal string, returning zero on malformed
// input so the engine's sanitization can substitute the default.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// isTradeTopic returns true if the topic string indicates a trade stream.
func isTradeTopic(topic string) bool {
	return strings.HasPrefix(topic, "trade.")
}

// extractSymbolFromTopic parses the symbol from a topic like "trade.005930".
func extractSymbolFromTopic(topic string) string {
	parts := strings.Split(topic, ".")
	if len(parts) == 2 {
		return parts[1]
	}
	return ""
}
