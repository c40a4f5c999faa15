// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "crossover/internal/log"
)

// WebSocketTransport broadcasts telemetry payloads as JSON to every
// connected WebSocket client. Sends are queued through a buffered
// channel; when the queue is full the payload is dropped, never
// blocking the caller.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	server    *http.Server
}

// NewWebSocketTransport creates the transport and starts its HTTP
// server on addr (e.g. ":8080"). Clients connect on /ws.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	t := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
	}
	t.start()
	return t
}

func (t *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", t.handleWebSocket)

	t.server = &http.Server{
		Addr:    t.addr,
		Handler: mux,
	}

	go func() {
		applog.Infof("telemetry: WebSocket server listening on %s", t.addr)
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("telemetry: WebSocket server error: %v", err)
		}
	}()

	go t.handleBroadcasts()
}

func (t *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("telemetry: WebSocket upgrade error: %v", err)
		return
	}

	t.clientsMu.Lock()
	t.clients[conn] = true
	total := len(t.clients)
	t.clientsMu.Unlock()
	applog.Infof("telemetry: client connected, total: %d", total)

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				t.clientsMu.Lock()
				delete(t.clients, conn)
				t.clientsMu.Unlock()
				conn.Close()
				applog.Debugf("telemetry: client disconnected: %v", err)
				return
			}
		}
	}()
}

func (t *WebSocketTransport) handleBroadcasts() {
	for data := range t.broadcast {
		t.clientsMu.Lock()
		for client := range t.clients {
			if err := client.WriteJSON(data); err != nil {
				applog.Debugf("telemetry: dropping client: %v", err)
				client.Close()
				delete(t.clients, client)
			}
		}
		t.clientsMu.Unlock()
	}
}

// Send queues a payload for broadcast. A full queue drops the payload
// silently; telemetry readers tolerate gaps.
func (t *WebSocketTransport) Send(data any) error {
	select {
	case t.broadcast <- data:
	default:
	}
	return nil
}

// Close disconnects all clients and shuts the server down.
func (t *WebSocketTransport) Close() error {
	t.clientsMu.Lock()
	for client := range t.clients {
		client.Close()
		delete(t.clients, client)
	}
	t.clientsMu.Unlock()

	return t.server.Close()
}

var _ Transport = (*WebSocketTransport)(nil)
