// Package websocket pushes checkout lifecycle events to storefront clients.
// The feed is push-only: the server never acts on client messages.
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/arhambuilds/storefront-backend/pkg/logger"
)

// Event names pushed over the feed.
const (
	EventCheckoutCompleted = "checkout.completed"
	EventCheckoutFailed    = "checkout.failed"
)

// Event is a checkout lifecycle notification for one session.
type Event struct {
	Type    string      `json:"type"`
	OrderID string      `json:"order_id,omitempty"`
	Reason  string      `json:"reason,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// Client is one connected storefront tab.
type Client struct {
	Hub       *Hub
	Conn      *Conn
	SessionID string
	Send      chan []byte
}

// Hub tracks connected clients per session. A session can have several tabs
// open; events go to all of them.
type Hub struct {
	clients    map[string][]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register/unregister requests. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			logger.Debug("Checkout feed client connected", map[string]interface{}{
				"session_id": client.SessionID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.SessionID]
			for i, c := range clients {
				if c == client {
					h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
					close(c.Send)
					break
				}
			}
			if len(h.clients[client.SessionID]) == 0 {
				delete(h.clients, client.SessionID)
			}
			h.mu.Unlock()
			logger.Debug("Checkout feed client disconnected", map[string]interface{}{
				"session_id": client.SessionID,
			})
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Push sends an event to every connected tab of the session. Slow clients
// are skipped rather than blocking the checkout flow.
func (h *Hub) Push(sessionID string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode checkout event", err, map[string]interface{}{
			"session_id": sessionID,
			"type":       event.Type,
		})
		return
	}

	h.mu.RLock()
	clients := h.clients[sessionID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			logger.Warn("Dropping checkout event for slow client", map[string]interface{}{
				"session_id": sessionID,
				"type":       event.Type,
			})
		}
	}
}
