package handler

import (
	"log/slog"
	"net/http"

	"weather-dashboard/internal/session"
	ws "weather-dashboard/internal/websocket"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		// In production, check against allowed origins
		return true
	},
}

// WebSocketHandler handles WebSocket push connections
type WebSocketHandler struct {
	hub      *ws.Hub
	sessions *session.Manager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *ws.Hub, sessions *session.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		sessions: sessions,
	}
}

// Sponsors streams sponsor list updates. Public, every dashboard tab may
// subscribe.
func (h *WebSocketHandler) Sponsors(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, ws.TopicSponsors)
}

// Session streams session state changes, so an admin tab notices a logout
// made in another tab.
func (h *WebSocketHandler) Session(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.IsAuthenticated(r.Context()) {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}
	h.serve(w, r, ws.TopicSession)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, topic string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed",
			slog.String("topic", topic),
			slog.String("error", err.Error()))
		return
	}

	client := ws.NewClient(h.hub, conn, topic)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
