// Package websocket pushes fresh dashboard state to connected views. Clients
// subscribe to a topic ("sponsors" or "session"); the hub broadcasts the
// re-read state whenever the notifier reports an external change. Traffic is
// one-way: views never mutate state over this channel.
package websocket

import (
	"context"
	"log/slog"

	"weather-dashboard/internal/observability"
)

// Topics served by the hub.
const (
	TopicSponsors = "sponsors"
	TopicSession  = "session"
)

// BroadcastMessage represents a state update to be pushed
type BroadcastMessage struct {
	Topic   string
	Payload []byte
}

// Hub maintains active clients and broadcasts state updates
type Hub struct {
	// Registered clients by topic
	clients map[string]map[*Client]bool

	// Broadcast channel
	broadcast chan *BroadcastMessage

	// Register client
	register chan *Client

	// Unregister client
	unregister chan *Client

	// Shutdown signal
	done chan struct{}
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *BroadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			slog.Info("hub shutting down gracefully")
			return ctx.Err()

		case client := <-h.register:
			if h.clients[client.topic] == nil {
				h.clients[client.topic] = make(map[*Client]bool)
			}
			h.clients[client.topic][client] = true
			observability.WebSocketConnectionsActive.WithLabelValues(client.topic).Inc()
			slog.Info("view connected", slog.String("topic", client.topic))

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			if clients, ok := h.clients[message.Topic]; ok {
				for client := range clients {
					select {
					case client.send <- message.Payload:
						observability.WebSocketMessagesSent.WithLabelValues(message.Topic).Inc()
					default:
						// Client's send buffer is full, close connection
						h.closeClientSend(client)
						delete(clients, client)
					}
				}
			}
		}
	}
}

// unregisterClient safely removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.clients[client.topic]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			h.closeClientSend(client)
			observability.WebSocketConnectionsActive.WithLabelValues(client.topic).Dec()
			slog.Info("view disconnected", slog.String("topic", client.topic))

			// Clean up empty topic
			if len(clients) == 0 {
				delete(h.clients, client.topic)
			}
		}
	}
}

// closeClientSend safely closes a client's send channel
func (h *Hub) closeClientSend(client *Client) {
	select {
	case <-client.send:
		// Channel already closed
	default:
		close(client.send)
	}
}

// shutdown performs graceful cleanup of all connections
func (h *Hub) shutdown() {
	close(h.done)

	for topic, clients := range h.clients {
		for client := range clients {
			h.closeClientSend(client)
			slog.Info("closed view connection", slog.String("topic", topic))
		}
	}

	slog.Info("hub shutdown complete")
}

// Broadcast pushes a state payload to every client on a topic
func (h *Hub) Broadcast(topic string, payload []byte) {
	h.broadcast <- &BroadcastMessage{
		Topic:   topic,
		Payload: payload,
	}
}

// Register registers a client with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
