package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Local web UI only, so any origin is fine.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// eventMessage is the wire form of one confirmed gesture or action event.
type eventMessage struct {
	Kind       string  `json:"kind"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Timestamp  int64   `json:"timestamp"`
}

// EventsHandler pushes confirmed gesture and action events to websocket
// clients as they fire.
type EventsHandler struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler() *EventsHandler {
	return &EventsHandler{clients: make(map[*websocket.Conn]bool)}
}

// ServeHTTP upgrades the request and parks the connection until the client
// goes away.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.remove(conn)
		conn.Close()
	}()

	// Drain incoming messages so pings and close frames are processed
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventsHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Publish fans one confirmed event out to every connected client. Clients
// whose writes fail are dropped.
func (h *EventsHandler) Publish(kind, name string, confidence float64) {
	msg, err := json.Marshal(eventMessage{
		Kind:       kind,
		Name:       name,
		Confidence: confidence,
		Timestamp:  time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
