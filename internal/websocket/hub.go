package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Event notifies listing pages that the record collection changed.
type Event struct {
	Type        string `json:"type"` // "atendimento_added" | "atendimento_removed"
	NumeroLaudo string `json:"numero_laudo"`
}

// Hub maintains the set of open listing pages and broadcasts collection
// change events to them.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]*Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			log.Printf("🖥️ Listing page connected: %s", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
				log.Printf("📴 Listing page disconnected: %s", client.id)
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends the event to every connected page. Slow or dead clients
// are skipped rather than blocking the caller.
func (h *Hub) Broadcast(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Error marshaling event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.send <- msg:
		default:
		}
	}
}
