package ws

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/seabattle/internal/services/session"
)

// Client errors
var (
	ErrClientClosed   = errors.New("client connection closed")
	ErrSendBufferFull = errors.New("client send buffer full")
)

// Options tune the per-connection pumps
type Options struct {
	// WriteWait is the time allowed to write a frame
	WriteWait time.Duration
	// PongWait is the time allowed between pongs before the peer is considered dead
	PongWait time.Duration
	// PingPeriod must be shorter than PongWait
	PingPeriod time.Duration
	// MaxMessageSize caps inbound frames
	MaxMessageSize int64
	// SendBuffer is the number of queued outbound frames per connection
	SendBuffer int
}

// DefaultOptions returns the standard heartbeat and buffer settings
func DefaultOptions() Options {
	return Options{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 512 * 1024,
		SendBuffer:     256,
	}
}

// Client is one WebSocket connection. Its read and write pumps only move
// bytes; all game handling happens on the hub loop.
type Client struct {
	id   session.ConnID
	hub  *Hub
	conn *websocket.Conn
	opts Options

	mu     sync.Mutex
	send   chan []byte
	closed bool

	connectedAt time.Time
}

var _ session.Connection = (*Client)(nil)

func newClient(hub *Hub, conn *websocket.Conn, id session.ConnID, opts Options) *Client {
	return &Client{
		id:          id,
		hub:         hub,
		conn:        conn,
		opts:        opts,
		send:        make(chan []byte, opts.SendBuffer),
		connectedAt: time.Now(),
	}
}

// ID returns the connection id
func (c *Client) ID() session.ConnID {
	return c.id
}

// Send queues a frame for the write pump without blocking
func (c *Client) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops the write pump, which sends a close frame and drops the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error",
					slog.String("conn_id", string(c.id)),
					slog.String("error", err.Error()))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if !c.hub.submit(c, message) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Debug("websocket write failed",
					slog.String("conn_id", string(c.id)),
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
