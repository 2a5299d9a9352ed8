// Package realtime pushes notification frames to connected staff members
// over websockets.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Frame is the JSON envelope written to clients.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type message struct {
	staffID string
	payload []byte
}

// Client is one websocket connection of a staff member.
type Client struct {
	hub     *Hub
	staffID string
	conn    *websocket.Conn
	send    chan []byte
}

// Hub keeps connected clients keyed by staff id. A staff member may hold
// several connections.
type Hub struct {
	logger     *zap.Logger
	upgrader   websocket.Upgrader
	clients    map[string]map[*Client]struct{}
	inbound    chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a hub; allowOrigins empty accepts any origin.
func NewHub(logger *zap.Logger, allowOrigins []string) *Hub {
	h := &Hub{
		logger:     logger,
		clients:    make(map[string]map[*Client]struct{}),
		inbound:    make(chan message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowOrigins),
	}
	return h
}

func originChecker(allow []string) func(r *http.Request) bool {
	if len(allow) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allow))
	for _, o := range allow {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Run is the dispatch loop. It returns when ctx is cancelled, closing every
// client connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.staffID] == nil {
				h.clients[c.staffID] = make(map[*Client]struct{})
			}
			h.clients[c.staffID][c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("realtime client connected", zap.String("staff_id", c.staffID))
		case c := <-h.unregister:
			h.remove(c)
		case m := <-h.inbound:
			h.mu.Lock()
			for c := range h.clients[m.staffID] {
				select {
				case c.send <- m.payload:
				default:
					// slow consumer
					h.removeLocked(c)
					h.logger.Warn("realtime client dropped: send buffer full", zap.String("staff_id", c.staffID))
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.staffID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.staffID)
	}
}

// SendTo queues a frame for every connection of staffID. It never blocks;
// frames for offline staff are discarded.
func (h *Hub) SendTo(staffID string, frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.logger.Warn("realtime frame encode failed", zap.String("type", frame.Type), zap.Error(err))
		return
	}
	select {
	case h.inbound <- message{staffID: staffID, payload: payload}:
	case <-h.done:
	default:
		h.logger.Warn("realtime frame dropped: hub busy", zap.String("staff_id", staffID))
	}
}

// ClientCount returns the number of live connections of staffID.
func (h *Hub) ClientCount(staffID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[staffID])
}

// Serve upgrades the request and attaches the connection to staffID.
// Authentication happens before Serve is called.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, staffID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{hub: h, staffID: staffID, conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return nil
	}

	go c.writePump()
	go c.readPump()
	return nil
}

// readPump discards client input and detects disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("realtime read failed", zap.String("staff_id", c.staffID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
