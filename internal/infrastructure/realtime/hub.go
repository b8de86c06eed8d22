package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/macrolens/diettracker/internal/domain"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 25 * time.Second
	sendBuffer   = 16
)

// Client is one websocket subscriber. Only its write pump writes to conn.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn, send: make(chan []byte, sendBuffer)}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Hub fans totals snapshots out to websocket clients and implements domain.TotalsPublisher.
// New clients receive the latest snapshot on connect.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	latest   []byte
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

var _ domain.TotalsPublisher = (*Hub)(nil)

// NewHub creates a hub. checkOrigin may be nil to accept every origin.
func NewHub(checkOrigin func(r *http.Request) bool, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Hub{
		clients:  make(map[*Client]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		logger:   logger,
	}
}

// PublishTotals queues snapshot for every connected client without blocking.
// A client whose queue is full is dropped.
func (h *Hub) PublishTotals(ctx context.Context, snapshot domain.Snapshot) {
	msg, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.Error("failed to encode snapshot", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = msg
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow websocket client")
			h.removeLocked(c)
		}
	}
}

// ServeWS upgrades the request and streams snapshots until the client goes away
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(conn)
	h.register(c)
	go h.writePump(c)

	// read loop ends on client close/error
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister(c)
			return
		}
	}
}

// writePump drains the client's queue and keeps the connection alive with pings
func (h *Hub) writePump(c *Client) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("dropping websocket client", zap.Error(err))
				h.unregister(c)
				return
			}
		case <-t.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// register adds c and queues the latest snapshot for it
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.send <- h.latest
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes c once; the closed queue stops its write pump
func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	_ = c.conn.Close()
}
