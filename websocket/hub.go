package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Notification types pushed to connected admin dashboards.
const (
	NotificationTypePendingRegistration = "pending_registration"
	NotificationTypeApprovalChanged     = "approval_changed"
)

// Notification is a message sent over the admin feed.
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Client is one connected admin dashboard.
type Client struct {
	Conn *websocket.Conn
	send chan Notification
}

// Hub maintains the set of connected admin clients and broadcasts
// registration and approval events to all of them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Notification
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Notification, 16),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				client.Conn.Close()
			}
			h.mu.Unlock()
		case notification := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- notification:
				default:
					// Slow client; drop the event rather than stall the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a notification for every connected admin.
func (h *Hub) Broadcast(notification Notification) {
	h.broadcast <- notification
}
