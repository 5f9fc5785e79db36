package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rentfunnel/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

const (
	EventLeadCreated       = "lead_created"
	EventLeadStatusChanged = "lead_status_changed"
)

// FeedEvent is pushed to every connected back office client
type FeedEvent struct {
	Type string             `json:"type"`
	Lead *domain.Lead       `json:"lead"`
	From *domain.LeadStatus `json:"from,omitempty"`
	At   time.Time          `json:"at"`
}

type connection struct {
	adminID string
	conn    *websocket.Conn
	send    chan []byte
}

// Hub fans pipeline events out to admin websocket connections. It
// implements lead.Notifier.
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]struct{}
	upgrader    websocket.Upgrader
	now         func() time.Time
}

// NewHub creates a feed hub accepting browser connections from origins.
// Requests without an Origin header (non-browser clients) are accepted.
func NewHub(origins []string) *Hub {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &Hub{
		connections: make(map[*connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
		now: time.Now,
	}
}

func (h *Hub) LeadCreated(_ context.Context, l *domain.Lead) {
	h.Broadcast(&FeedEvent{Type: EventLeadCreated, Lead: l})
}

func (h *Hub) LeadStatusChanged(_ context.Context, l *domain.Lead, from domain.LeadStatus) {
	h.Broadcast(&FeedEvent{Type: EventLeadStatusChanged, Lead: l, From: &from})
}

// Broadcast sends the event to every connection. Slow clients miss it.
func (h *Hub) Broadcast(event *FeedEvent) {
	if event.At.IsZero() {
		event.At = h.now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("feed event encode failed", zap.String("type", event.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		select {
		case c.send <- data:
		default:
			zap.L().Warn("feed client too slow, event dropped", zap.String("admin_id", c.adminID))
		}
	}
}

// Connections is the number of live clients
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// ServeWS upgrades the request and blocks until the client disconnects
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, adminID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &connection{
		adminID: adminID,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
	}
	h.register(c)
	zap.L().Info("feed client connected", zap.String("admin_id", adminID))

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// Close disconnects every client, used on shutdown
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.connections {
		delete(h.connections, c)
		close(c.send)
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
	}
}

// readPump only services control frames; clients do not send events
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		zap.L().Info("feed client disconnected", zap.String("admin_id", c.adminID))
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("feed read failed", zap.String("admin_id", c.adminID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
