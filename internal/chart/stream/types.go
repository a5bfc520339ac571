package stream

// TradeMessage is one feed message containing trade events for a symbol.
type TradeMessage struct {
	Topic string      `json:"topic"` // subscription stream, e.g. "trade.005930"
	Data  []TradeData `json:"data"`  // trade events, oldest first
	Ts    int64       `json:"ts"`    // time the message was produced (epoch millis)
	Type  string      `json:"type"`  // "snapshot" or "delta"
}

// TradeData is a single trade event as carried on the wire. Prices and
// quantities arrive as decimal strings.
type TradeData struct {
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
	TradeTime int64  `json:"tradeTime"` // epoch seconds
}
