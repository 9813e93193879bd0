// Package wsconn provides a WebSocket client with reconnection and keep-alive.
package wsconn

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// MessageHandler receives every inbound message.
type MessageHandler func(ctx context.Context, data []byte)

// StateChangeHandler is notified on every state transition. err is non-nil
// when the transition was caused by a failure.
type StateChangeHandler func(state State, err error)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string // connection name for diagnostics
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0, // infinite
		PingInterval:   30 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 1 << 22, // 4 MiB, combined depth streams are chunky
	}
}

// Client is a reconnecting WebSocket client.
type Client struct {
	config Config

	conn    *websocket.Conn
	connMu  sync.Mutex // guards conn and writes
	state   State
	stateMu sync.RWMutex

	onMessage     MessageHandler
	onStateChange StateChangeHandler
	handlerMu     sync.RWMutex

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a new WebSocket client.
func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("wsconn: URL is required")
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = 30 * time.Second
	}

	return &Client{
		config: config,
		state:  StateDisconnected,
		done:   make(chan struct{}),
	}, nil
}

// OnMessage registers the inbound message handler.
func (c *Client) OnMessage(handler MessageHandler) {
	c.handlerMu.Lock()
	c.onMessage = handler
	c.handlerMu.Unlock()
}

// OnStateChange registers the state transition handler.
func (c *Client) OnStateChange(handler StateChangeHandler) {
	c.handlerMu.Lock()
	c.onStateChange = handler
	c.handlerMu.Unlock()
}

// Connect dials the endpoint once and starts the read and ping loops.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting, nil)

	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		c.setState(StateDisconnected, err)
		return fmt.Errorf("wsconn %s: dial %s: %w", c.config.Name, c.config.URL, err)
	}

	if c.config.MaxMessageSize > 0 {
		conn.SetReadLimit(c.config.MaxMessageSize)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.setState(StateConnected, nil)

	go c.readLoop(ctx)
	if c.config.PingInterval > 0 {
		go c.pingLoop(ctx)
	}

	return nil
}

// ConnectWithRetry dials with exponential backoff until connected,
// the retry budget is exhausted, or the context is cancelled.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	backoff := c.config.InitialBackoff

	for attempt := 0; ; attempt++ {
		err := c.Connect(ctx)
		if err == nil {
			return nil
		}

		if c.config.MaxReconnects > 0 && attempt+1 >= c.config.MaxReconnects {
			return fmt.Errorf("wsconn %s: giving up after %d attempts: %w", c.config.Name, attempt+1, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return fmt.Errorf("wsconn %s: closed during retry", c.config.Name)
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}
	}
}

// readLoop reads until the connection drops, then reconnects unless closed.
func (c *Client) readLoop(ctx context.Context) {
	for {
		readCtx := ctx
		var cancel context.CancelFunc
		if c.config.ReadTimeout > 0 {
			readCtx, cancel = context.WithTimeout(ctx, c.config.ReadTimeout)
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn == nil {
			if cancel != nil {
				cancel()
			}
			return
		}

		_, data, err := conn.Read(readCtx)
		if cancel != nil {
			cancel()
		}

		if err != nil {
			select {
			case <-c.done:
				return
			case <-ctx.Done():
				return
			default:
			}
			c.reconnect(ctx, err)
			return
		}

		c.handlerMu.RLock()
		handler := c.onMessage
		c.handlerMu.RUnlock()
		if handler != nil {
			handler(ctx, data)
		}
	}
}

// pingLoop keeps the connection alive with protocol-level pings.
func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.connMu.Lock()
			conn := c.conn
			c.connMu.Unlock()
			if conn == nil || c.State() != StateConnected {
				continue
			}

			pingCtx, cancel := context.WithTimeout(ctx, c.config.WriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.reconnect(ctx, err)
				return
			}
		}
	}
}

// reconnect tears the connection down and redials with backoff.
func (c *Client) reconnect(ctx context.Context, cause error) {
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close(websocket.StatusGoingAway, "reconnecting")
		c.conn = nil
	}
	c.connMu.Unlock()

	c.setState(StateReconnecting, cause)

	// Wait one backoff interval before redialing so a server that
	// rejects us immediately does not turn this into a hot loop.
	select {
	case <-c.done:
		return
	case <-ctx.Done():
		return
	case <-time.After(c.config.InitialBackoff):
	}

	if err := c.ConnectWithRetry(ctx); err != nil {
		c.setState(StateDisconnected, err)
	}
}

// Send writes a raw message.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("wsconn %s: not connected", c.config.Name)
	}

	if c.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.WriteTimeout)
		defer cancel()
	}

	return c.conn.Write(ctx, websocket.MessageText, msg)
}

// SendJSON marshals v and sends it as a text message.
func (c *Client) SendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wsconn %s: marshal: %w", c.config.Name, err)
	}
	return c.Send(ctx, data)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// IsConnected reports whether the connection is established.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Close shuts the client down. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.connMu.Lock()
		if c.conn != nil {
			c.conn.Close(websocket.StatusNormalClosure, "")
			c.conn = nil
		}
		c.connMu.Unlock()
		c.setState(StateClosed, nil)
	})
	return nil
}

func (c *Client) setState(state State, err error) {
	c.stateMu.Lock()
	if c.state == StateClosed && state != StateClosed {
		// A closed client never transitions again.
		c.stateMu.Unlock()
		return
	}
	c.state = state
	c.stateMu.Unlock()

	c.handlerMu.RLock()
	handler := c.onStateChange
	c.handlerMu.RUnlock()
	if handler != nil {
		handler(state, err)
	}
}
