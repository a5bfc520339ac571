package feed

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client handles the WebSocket connection to the trade feed and message routing.
type Client struct {
	url     string
	topics  []string
	conn    *websocket.Conn
	handler func([]byte)
	logger  *zap.Logger
}

// NewClient creates a new feed client with the given URL and logger.
func NewClient(url string, logger *zap.Logger) *Client {
	return &Client{
		url:    url,
		logger: logger,
	}
}

// SetMessageHandler sets the function to handle incoming messages.
func (c *Client) SetMessageHandler(h func([]byte)) {
	c.handler = h
}

// TradeTopic renders the subscription topic for one symbol.
func TradeTopic(symbol string) string {
	return "trade." + symbol
}

// Connect establishes the WebSocket connection and subscribes to the given
// topics. It does not start the listener.
func (c *Client) Connect(topics []string) error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		c.logger.Error("Failed to connect to WebSocket", zap.String("url", c.url), zap.Error(err))
		return err
	}
	c.conn = conn
	c.logger.Info("WebSocket connected", zap.String("url", c.url))

	// Store subscription topics for future reconnects
	c.topics = topics

	if err := c.subscribe(); err != nil {
		c.logger.Error("Failed to send subscription", zap.Error(err))
		return err
	}

	return nil
}

// Listen reads messages until the connection drops, then reconnects and
// resubscribes indefinitely.
func (c *Client) Listen() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.Error("WebSocket read error", zap.Error(err))

			// Retry reconnecting indefinitely
			for {
				time.Sleep(3 * time.Second)
				if err := c.reconnectAndResubscribe(); err != nil {
					c.logger.Warn("Retrying reconnect...")
					continue
				}
				c.logger.Info("Reconnected successfully")
				break
			}
			continue // Start listening again with the new connection
		}

		if c.handler != nil {
			c.handler(msg)
		}
	}
}

func (c *Client) subscribe() error {
	subMsg := map[string]interface{}{
		"op":   "subscribe",
		"args": c.topics,
	}
	if err := c.conn.WriteJSON(subMsg); err != nil {
		return fmt.Errorf("websocket subscribe failed: %w", err)
	}
	return nil
}

func (c *Client) reconnectAndResubscribe() error {
	newConn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return err
	}

	// Close the old connection if it exists
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = newConn

	return c.subscribe()
}
