package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"chartengine/config"
	"chartengine/internal/chart/candle"
	"chartengine/internal/chart/timeframe"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// Publisher pushes chart updates to a RabbitMQ topic exchange.
// Routing keys: "chart.{symbol}" for raw tick updates,
// "chart.{symbol}.{timeframe}" for tail-candle updates and
// "candle.{symbol}.{timeframe}" for full series snapshots.
type Publisher struct {
	mu       sync.Mutex // amqp channels are not safe for concurrent publish
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// New dials RabbitMQ and declares the durable topic exchange.
func New(cfg config.AMQPConfig, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	logger.Info("chart publisher connected", zap.String("exchange", cfg.Exchange))
	return &Publisher{conn: conn, ch: ch, exchange: cfg.Exchange, logger: logger}, nil
}

type tickUpdate struct {
	Price  decimal.Decimal `json:"price"`
	Volume int64           `json:"volume"`
}

type timeframeUpdate struct {
	Price    decimal.Decimal `json:"price"`
	Volume   int64           `json:"volume"`
	TimeCode string          `json:"timeCode"`
}

type seriesSnapshot struct {
	Candles  []candle.Candle `json:"candles"`
	TimeCode string          `json:"timeCode"`
}

// PublishTick broadcasts the latest trade price/volume for a symbol.
func (p *Publisher) PublishTick(symbol string, price decimal.Decimal, volume int64) error {
	return p.publish("chart."+symbol, tickUpdate{Price: price, Volume: volume})
}

// PublishTimeframe broadcasts the tail candle of one timeframe's series.
func (p *Publisher) PublishTimeframe(symbol string, tf timeframe.Timeframe, c candle.Candle) error {
	return p.publish("chart."+symbol+"."+tf.Code(), timeframeUpdate{
		Price:    c.Close,
		Volume:   c.Volume,
		TimeCode: tf.Code(),
	})
}

// PublishSeries broadcasts a full series snapshot after a scheduler advance.
func (p *Publisher) PublishSeries(symbol string, tf timeframe.Timeframe, candles []candle.Candle) error {
	return p.publish("candle."+symbol+"."+tf.Code(), seriesSnapshot{
		Candles:  candles,
		TimeCode: tf.Code(),
	})
}

func (p *Publisher) publish(key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload for %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	}); err != nil {
		return fmt.Errorf("publish to %s: %w", key, err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
