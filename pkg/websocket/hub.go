// Package websocket pushes reservation and hold events to connected
// calendar clients.
package websocket

import (
	"context"
	"log"
	"sync"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	// done is closed once Run has returned
	done chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is done, closing every
// client's send channel. Register and Unregister stop blocking after that.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WebSocket] client connected (total: %d)", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WebSocket] client disconnected (total: %d)", n)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop it rather than block the hub
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish wraps payload in an event envelope and queues it for every client.
// A full queue drops the event.
func (h *Hub) Publish(routingKey string, payload any) error {
	data, err := NewMessage(MessageType(routingKey), payload).JSON()
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	default:
		log.Printf("[WebSocket] broadcast queue full, dropping %s", routingKey)
	}
	return nil
}

// Register attaches client. On a stopped hub the client's send channel is
// closed straight away so its write pump shuts the connection.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
