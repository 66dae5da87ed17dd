package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/seabattle/internal/services/session"
)

// ErrHubStopped is returned once the hub loop has exited
var ErrHubStopped = errors.New("hub stopped")

// Handler receives connection lifecycle events and frames, always on the hub goroutine
type Handler interface {
	Connect(conn session.Connection)
	Handle(ctx context.Context, connID session.ConnID, frame []byte)
	Disconnect(ctx context.Context, connID session.ConnID)
}

type inboundFrame struct {
	client *Client
	frame  []byte
}

// Hub serializes every connection event, inbound frame and task onto one
// goroutine so the handler never runs concurrently with itself
type Hub struct {
	handler  Handler
	logger   *slog.Logger
	opts     Options
	upgrader websocket.Upgrader

	clients     map[session.ConnID]*Client
	clientCount atomic.Int64

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame
	tasks      chan func()

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new Hub
func NewHub(handler Handler, logger *slog.Logger, opts Options) *Hub {
	return &Hub{
		handler: handler,
		logger:  logger.With(slog.String("component", "ws-hub")),
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:    make(map[session.ConnID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame, 256),
		tasks:      make(chan func()),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Run processes hub events until ctx is cancelled or Close is called
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("hub started")
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.clients[client.id] = client
			h.clientCount.Store(int64(len(h.clients)))
			h.safely("connect", func() { h.handler.Connect(client) })
			h.logger.Info("client registered",
				slog.String("conn_id", string(client.id)),
				slog.Int("total_clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client.id]; !ok {
				continue
			}
			delete(h.clients, client.id)
			h.clientCount.Store(int64(len(h.clients)))
			client.Close()
			h.safely("disconnect", func() { h.handler.Disconnect(ctx, client.id) })
			h.logger.Info("client unregistered",
				slog.String("conn_id", string(client.id)),
				slog.Duration("connection_duration", time.Since(client.connectedAt)),
				slog.Int("total_clients", len(h.clients)))

		case in := <-h.inbound:
			if _, ok := h.clients[in.client.id]; !ok {
				continue
			}
			h.safely("handle", func() { h.handler.Handle(ctx, in.client.id, in.frame) })

		case task := <-h.tasks:
			h.safely("task", task)

		case <-ctx.Done():
			h.shutdown()
			return

		case <-h.done:
			h.shutdown()
			return
		}
	}
}

// Close stops the hub loop
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Stopped is closed when the hub loop has exited
func (h *Hub) Stopped() <-chan struct{} {
	return h.stopped
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.stopped:
		return ErrHubStopped
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// Do runs fn on the hub goroutine and waits for it to finish
func (h *Hub) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case h.tasks <- task:
	case <-h.stopped:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// ServeWS upgrades an HTTP request and attaches the connection to the hub
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(h, conn, session.ConnID(uuid.NewString()), h.opts)
	if err := h.Register(client); err != nil {
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// submit hands an inbound frame to the loop; false means the hub is gone
func (h *Hub) submit(client *Client, frame []byte) bool {
	select {
	case h.inbound <- inboundFrame{client: client, frame: frame}:
		return true
	case <-h.stopped:
		return false
	}
}

// safely runs one unit of work, containing any panic to that unit
func (h *Hub) safely(kind string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic in hub loop",
				slog.String("kind", kind),
				slog.String("panic", fmt.Sprint(rec)))
		}
	}()
	fn()
}

func (h *Hub) shutdown() {
	for id, client := range h.clients {
		client.Close()
		delete(h.clients, id)
	}
	h.clientCount.Store(0)
	h.logger.Info("hub stopped")
}
