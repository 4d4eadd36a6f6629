// ABOUTME: WebSocket client for the dev server's broadcast clock
// ABOUTME: Handles connection and delivers clock ticks on a channel
package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Resonate-Protocol/gtaradio-go/internal/server"
)

// Config holds client configuration
type Config struct {
	// ServerURL is the server's HTTP base URL or bare host:port
	ServerURL string
	Logger    *zap.SugaredLogger
}

// Client receives clock ticks from one server
type Client struct {
	config Config
	logger *zap.SugaredLogger
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Ticks delivers every clock message in order
	Ticks chan server.ClockTick

	// State
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new clock client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		config: config,
		logger: logger,
		Ticks:  make(chan server.ClockTick, 10),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ClockURL maps a server address to its websocket clock endpoint
func ClockURL(serverURL string) (string, error) {
	if !strings.Contains(serverURL, "://") {
		serverURL = "http://" + serverURL
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server URL has no host")
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// Connect dials the clock endpoint and waits for the first tick
func (c *Client) Connect(ctx context.Context) error {
	u, err := ClockURL(c.config.ServerURL)
	if err != nil {
		return err
	}
	c.logger.Infow("connecting to clock", "url", u)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	// The server ticks immediately on connect
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var first server.ClockTick
	if err := conn.ReadJSON(&first); err != nil {
		conn.Close()
		return fmt.Errorf("failed to read first tick: %w", err)
	}
	conn.SetReadDeadline(time.Time{})
	if first.Type != "clock" {
		conn.Close()
		return fmt.Errorf("expected clock message, got %q", first.Type)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.deliver(first)
	go c.readMessages()

	return nil
}

// readMessages reads ticks until the connection closes
func (c *Client) readMessages() {
	defer c.Close()
	defer close(c.Ticks)

	for {
		var tick server.ClockTick
		if err := c.conn.ReadJSON(&tick); err != nil {
			if c.ctx.Err() == nil {
				c.logger.Debugw("clock read error", "error", err)
			}
			return
		}
		if tick.Type != "clock" {
			c.logger.Debugw("ignoring message", "type", tick.Type)
			continue
		}
		if !c.deliver(tick) {
			return
		}
	}
}

func (c *Client) deliver(tick server.ClockTick) bool {
	select {
	case c.Ticks <- tick:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()
	if c.connected {
		c.connected = false
		c.conn.Close()
		c.logger.Debugw("clock connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
