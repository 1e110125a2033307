package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
)

const (
	// telemetryBuffer is the per-client backlog; a client that falls further
	// behind loses frames instead of stalling the worker.
	telemetryBuffer = 8
	writeWait       = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// TelemetryHandler broadcasts per-frame engine telemetry via WebSocket.
type TelemetryHandler struct {
	app    *app.App
	logger *zap.SugaredLogger

	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	cancel  func()
}

// NewTelemetryHandler creates a TelemetryHandler fed by a. It stays
// subscribed until Close.
func NewTelemetryHandler(a *app.App, logger *zap.SugaredLogger) *TelemetryHandler {
	h := &TelemetryHandler{
		app:     a,
		logger:  logger,
		clients: make(map[*websocket.Conn]chan []byte),
	}
	h.cancel = a.Subscribe(h.broadcast)
	return h
}

// Close stops receiving telemetry. Connected clients see no further frames.
func (h *TelemetryHandler) Close() {
	h.cancel()
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *TelemetryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	out := make(chan []byte, telemetryBuffer)
	h.add(conn, out)
	defer h.remove(conn)

	// Reader: detects client close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if msg, err := json.Marshal(h.app.Last()); err == nil {
		select {
		case out <- msg:
		default:
		}
	}

	for {
		select {
		case <-closed:
			return
		case msg := <-out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

func (h *TelemetryHandler) add(conn *websocket.Conn, out chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = out
}

func (h *TelemetryHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// Clients returns the number of connected clients.
func (h *TelemetryHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast runs on the worker goroutine and never blocks.
func (h *TelemetryHandler) broadcast(t app.Telemetry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(t)
	if err != nil {
		h.logger.Warnw("encoding telemetry", "error", err)
		return
	}
	for _, out := range h.clients {
		select {
		case out <- msg:
		default:
		}
	}
}
