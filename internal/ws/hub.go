package ws

import (
	"log"
	"net/http"
	"sync"

	"fleet-backend/internal/models"

	"github.com/gorilla/websocket"
)

// Event types pushed to dashboard clients after successful mutations.
const (
	EventCreated   = "created"
	EventUpdated   = "updated"
	EventCollected = "collected"
	EventDeleted   = "deleted"
)

// Event is one fleet change. Dispenser is present for everything but
// deletions, which only carry the id.
type Event struct {
	Type        string            `json:"type"`
	Dispenser   *models.Dispenser `json:"dispenser,omitempty"`
	DispenserID string            `json:"dispenserId,omitempty"`
	Owner       *models.Owner     `json:"owner,omitempty"`
}

// Hub fans fleet events out to connected websocket clients.
type Hub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Event
	upgrader   websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, 64),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run delivers broadcast events to every connected client. Dead connections
// are dropped on write failure.
func (h *Hub) Run() {
	for event := range h.broadcast {
		h.clientsMux.Lock()
		for conn := range h.clients {
			if err := conn.WriteJSON(event); err != nil {
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.clientsMux.Unlock()
	}
}

// Broadcast queues an event without blocking the mutation path. If the
// buffer is full the event is dropped; clients resync on the next refresh.
func (h *Hub) Broadcast(event Event) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[WS] Broadcast buffer full, dropping %s event", event.Type)
	}
}

// HandleWS upgrades the request and registers the client. The read loop only
// exists to detect disconnects; clients never send payloads.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	go func() {
		defer func() {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
