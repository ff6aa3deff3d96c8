package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"vnquant/internal/domain"
	"vnquant/internal/infra"
)

const (
	maxRetries       = 10
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
)

// quoteMessage is one tick from the quote stream.
type quoteMessage struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	TS     int64   `json:"ts"`
}

// Client maintains a websocket quote stream and caches the latest
// price per symbol. It reconnects with exponential backoff and keeps
// serving the last known prices while disconnected.
type Client struct {
	url     string
	symbols []string

	mu        sync.RWMutex
	prices    map[string]decimal.Decimal
	conn      *websocket.Conn
	connected bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient creates a quote stream client for the given symbols.
func NewClient(url string, symbols []string) *Client {
	return &Client{
		url:     url,
		symbols: symbols,
		prices:  make(map[string]decimal.Decimal),
	}
}

// Connect starts the connection loop in the background.
func (c *Client) Connect(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.connectionLoop(ctx)
	return nil
}

// Disconnect stops the connection loop and closes the socket.
func (c *Client) Disconnect() {
	if c.cancel != nil {
		c.cancel()
	}
	c.closeConnection()
	c.wg.Wait()
}

// IsConnected reports the current connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Source exposes the price cache as a domain.PriceSource. Symbols
// without a cached quote yield ErrPriceUnavailable.
func (c *Client) Source() domain.PriceSource {
	return func(symbol string) (decimal.Decimal, error) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		price, ok := c.prices[symbol]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrPriceUnavailable, symbol)
		}
		return price, nil
	}
}

func (c *Client) connectionLoop(ctx context.Context) {
	defer c.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.connect(ctx); err != nil {
			slog.Warn("quote feed connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		} else {
			retryCount = 0
			c.readLoop(ctx)
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, make(http.Header))
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.subscribe(); err != nil {
		c.closeConnection()
		return err
	}

	slog.Info("quote feed connected", slog.Int("subs", len(c.symbols)))
	return nil
}

func (c *Client) subscribe() error {
	sub := map[string]any{
		"op":      "subscribe",
		"symbols": c.symbols,
	}
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("no connection")
	}
	return conn.WriteJSON(sub)
}

func (c *Client) readLoop(ctx context.Context) {
	defer c.closeConnection()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			slog.Warn("quote feed read failed", slog.Any("error", err))
			return
		}

		var msg quoteMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("skipping malformed quote", slog.Any("error", err))
			continue
		}
		if msg.Symbol == "" || msg.Price <= 0 {
			continue
		}

		c.mu.Lock()
		c.prices[msg.Symbol] = decimal.NewFromFloat(msg.Price)
		c.mu.Unlock()
	}
}

func (c *Client) closeConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}
