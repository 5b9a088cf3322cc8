package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/kaspertech/crowdguard-console/models"
)

// StreamClient is one connected console client.
type StreamClient interface {
	Send(payload []byte) error
	Close()
}

// Frame is the wire envelope pushed to console clients.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans monitoring frames and alert toasts out to connected console
// clients. A client registered with an entrance id receives global frames
// plus that entrance's; a client with no scope receives everything.
type Hub struct {
	mu      sync.Mutex
	clients map[StreamClient]string
}

func NewHub() *Hub {
	return &Hub{clients: make(map[StreamClient]string)}
}

func (h *Hub) Register(client StreamClient, entranceID string) {
	h.mu.Lock()
	h.clients[client] = entranceID
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("[Hub] Console client connected (%d active)", count)
}

func (h *Hub) Unregister(client StreamClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
	}
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("[Hub] Console client disconnected (%d active)", count)
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast delivers a frame to every client whose scope matches.
// An empty entranceID means broadcast to everyone. Clients whose send
// fails are closed and dropped.
func (h *Hub) broadcast(entranceID string, frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Printf("[Hub] Failed to marshal %q frame: %v", frame.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client, scope := range h.clients {
		if entranceID != "" && scope != "" && scope != entranceID {
			continue
		}
		if err := client.Send(payload); err != nil {
			client.Close()
			delete(h.clients, client)
		}
	}
}

// Notify implements Notifier: entrance-scoped toasts route to that
// entrance's watchers, global toasts to everyone.
func (h *Hub) Notify(n models.Notification) {
	scope := ""
	if n.Scope == models.ScopeEntrance {
		scope = n.EntranceID
	}
	h.broadcast(scope, Frame{Type: "toast", Data: n})
}

// BroadcastWindow pushes a freshly closed window plus the camera's
// refreshed snapshot to every client.
func (h *Hub) BroadcastWindow(window models.AggregateWindow, snapshot models.MonitorSnapshot) {
	h.broadcast("", Frame{Type: "window", Data: struct {
		Window   models.AggregateWindow `json:"window"`
		Snapshot models.MonitorSnapshot `json:"snapshot"`
	}{window, snapshot}})
}
