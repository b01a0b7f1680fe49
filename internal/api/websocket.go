// websocket.go - WebSocket push of snapshot lifecycle events
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/campus-floormap/backend/internal/models"
)

// Server -> client message types
const (
	MsgTypeSnapshot = "snapshot"
	MsgTypePong     = "pong"
)

// Client -> server message types
const (
	MsgTypePing = "ping"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// WSMessage is the envelope for all WebSocket traffic.
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WebSocketHandler pushes snapshot status changes to connected dashboards.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	metrics  *Metrics
	log      *zap.Logger

	clientsMu sync.Mutex
	// Each connection carries its own write lock: gorilla allows only one
	// concurrent writer.
	clients map[*websocket.Conn]*sync.Mutex
}

// NewWebSocketHandler creates the push handler. Wire its Broadcast method
// into the snapshot manager's notify callback.
func NewWebSocketHandler(metrics *Metrics, log *zap.Logger) *WebSocketHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The dashboard is served from this same process; other origins
			// are local dev servers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		metrics: metrics,
		log:     log,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// HandleWS upgrades the connection and keeps it registered until it closes.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return NewBadRequestError("websocket upgrade failed", err)
	}

	h.register(conn)
	defer h.unregister(conn)

	go h.pingLoop(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == MsgTypePing {
			h.send(conn, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		}
	}
}

// Broadcast pushes a snapshot status change to every connected client.
func (h *WebSocketHandler) Broadcast(snap models.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}
	msg := WSMessage{Type: MsgTypeSnapshot, Payload: payload, Timestamp: time.Now().UnixMilli()}

	h.clientsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clientsMu.Unlock()

	for _, conn := range conns {
		h.send(conn, msg)
	}
}

// Close disconnects every client.
func (h *WebSocketHandler) Close() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
}

func (h *WebSocketHandler) register(conn *websocket.Conn) {
	h.clientsMu.Lock()
	h.clients[conn] = &sync.Mutex{}
	count := len(h.clients)
	h.clientsMu.Unlock()

	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(count))
	}
	h.log.Debug("websocket client connected", zap.Int("clients", count))
}

func (h *WebSocketHandler) unregister(conn *websocket.Conn) {
	h.clientsMu.Lock()
	delete(h.clients, conn)
	count := len(h.clients)
	h.clientsMu.Unlock()
	conn.Close()

	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(count))
	}
	h.log.Debug("websocket client disconnected", zap.Int("clients", count))
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := h.write(conn, websocket.TextMessage, data); err != nil {
		h.unregister(conn)
	}
}

func (h *WebSocketHandler) write(conn *websocket.Conn, messageType int, data []byte) error {
	h.clientsMu.Lock()
	writeMu, ok := h.clients[conn]
	h.clientsMu.Unlock()
	if !ok {
		return websocket.ErrCloseSent
	}

	writeMu.Lock()
	defer writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, data)
}

func (h *WebSocketHandler) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := h.write(conn, websocket.PingMessage, nil); err != nil {
			return
		}
	}
}
