package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"SketchBoard/internal/state"

	"github.com/gorilla/websocket"
)

var (
	ErrQueueFull = errors.New("outbound queue full")
	ErrClosed    = errors.New("transport closed")
)

const (
	defaultQueueSize = 1024
	writeWait        = 10 * time.Second
)

// Client is the websocket transport of one drawing surface. Send only
// enqueues; Run owns the connection, writes the queue and hands every
// inbound frame to the OnMessage handler.
type Client struct {
	url       string
	dialer    *websocket.Dialer
	out       chan []byte
	logger    *slog.Logger
	reconnect bool
	backoff   Backoff

	mu      sync.RWMutex
	handler func([]byte)
	status  func(string)
	closed  bool
	done    chan struct{}
}

type ClientOption func(*Client)

func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReconnect makes Run redial after a failed dial or a dropped
// connection, waiting according to b between attempts.
func WithReconnect(b Backoff) ClientOption {
	return func(c *Client) {
		c.reconnect = true
		c.backoff = b
	}
}

func WithQueueSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.out = make(chan []byte, n)
		}
	}
}

func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:    url,
		dialer: websocket.DefaultDialer,
		out:    make(chan []byte, defaultQueueSize),
		logger: slog.New(slog.DiscardHandler),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) URL() string { return c.url }

// OnMessage sets the handler for inbound frames. It runs on the read
// goroutine.
func (c *Client) OnMessage(fn func([]byte)) {
	c.mu.Lock()
	c.handler = fn
	c.mu.Unlock()
}

// OnStatus sets a callback for human readable connection state changes.
func (c *Client) OnStatus(fn func(string)) {
	c.mu.Lock()
	c.status = fn
	c.mu.Unlock()
}

// Send queues m for delivery. It never blocks: a full queue or a closed
// client is reported as an error and the message is dropped.
func (c *Client) Send(m state.Message) error {
	data, err := state.Encode(m)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.out <- data:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops Run and makes further sends fail.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

// Run connects and serves the connection until ctx ends or Close is called.
// Without reconnect the first dial failure or disconnect is returned.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	for attempt := 0; ; attempt++ {
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err == nil {
			attempt = -1
			c.setStatus("Connected to " + c.url)
			c.logger.Info("connected", slog.String("url", c.url))
			err = c.serve(ctx, conn)
		}
		if ctx.Err() != nil {
			return nil
		}

		c.setStatus(fmt.Sprintf("Disconnected: %v", err))
		c.logger.Warn("connection lost", slog.String("url", c.url), slog.String("err", err.Error()))
		if !c.reconnect {
			return err
		}

		wait := c.backoff.Delay(max(attempt, 0))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// serve pumps one connection until it fails or ctx ends. Whatever was taken
// from the queue but not written is lost.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			c.mu.RLock()
			fn := c.handler
			c.mu.RUnlock()
			if fn != nil {
				fn(data)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return ctx.Err()
		case err := <-readErr:
			return err
		case data := <-c.out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		}
	}
}

func (c *Client) setStatus(s string) {
	c.mu.RLock()
	fn := c.status
	c.mu.RUnlock()
	if fn != nil {
		fn(s)
	}
}
