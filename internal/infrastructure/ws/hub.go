// Package ws pushes notifications to users over WebSocket connections.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/pkg/metrics"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
	maxMessageSize      = 512
	sendBuffer          = 16
)

// Hub keeps at most one live connection per user. A new connection for a
// user replaces the previous one.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	upgrader websocket.Upgrader
	ping     time.Duration
	pongWait time.Duration
	log      zerolog.Logger
}

type Option func(*Hub)

// WithPingInterval sets how often pings are sent. Connections that miss a pong
// for longer than the interval plus a grace period are dropped.
func WithPingInterval(d time.Duration) Option {
	return func(h *Hub) {
		h.ping = d
		h.pongWait = d + d/3
	}
}

// WithOriginCheck sets the upgrader's origin policy.
func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(h *Hub) { h.upgrader.CheckOrigin = fn }
}

func NewHub(log zerolog.Logger, opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
	WithPingInterval(defaultPingInterval)(h)
	for _, o := range opts {
		o(h)
	}
	return h
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// Upgrade switches the request to the WebSocket protocol. A non-empty
// subprotocol is echoed back to the client.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, subprotocol string) (*websocket.Conn, error) {
	var header http.Header
	if subprotocol != "" {
		header = http.Header{"Sec-Websocket-Protocol": []string{subprotocol}}
	}
	return h.upgrader.Upgrade(w, r, header)
}

// Serve registers conn for userID and blocks until the connection ends.
func (h *Hub) Serve(userID string, conn *websocket.Conn) {
	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
	h.register(c)
	defer h.unregister(c)

	go h.writePump(c)
	h.readPump(c)
}

// Push sends payload as JSON to the user's live connection. It reports false
// when the user is offline or the connection is backed up.
func (h *Hub) Push(userID string, payload any) bool {
	h.mu.RLock()
	c := h.clients[userID]
	h.mu.RUnlock()
	if c == nil {
		return false
	}

	msg, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("marshal push payload")
		return false
	}
	select {
	case c.send <- msg:
		return true
	case <-c.closed:
		return false
	default:
		h.log.Warn().Str("user_id", userID).Msg("push buffer full, dropping message")
		return false
	}
}

// Connected reports whether userID has a live connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		metrics.WSConnections.Dec()
		c.close()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	old := h.clients[c.userID]
	h.clients[c.userID] = c
	h.mu.Unlock()

	if old != nil {
		old.close()
		h.log.Debug().Str("user_id", c.userID).Msg("websocket connection replaced")
		return
	}
	metrics.WSConnections.Inc()
	h.log.Debug().Str("user_id", c.userID).Msg("websocket connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c.userID] == c {
		delete(h.clients, c.userID)
		metrics.WSConnections.Dec()
	}
	h.mu.Unlock()
	c.close()
}

func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.ping)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
