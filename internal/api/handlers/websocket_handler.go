package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/isdelr/teamup-web/internal/views"
	ws "github.com/isdelr/teamup-web/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades team members to a live feed of their team chat.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Upgrades are accepted
// from allowedOrigins only; "*" allows any origin.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Serve handles the WebSocket connection request for one project's team.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	env := envFrom(r)
	team := views.NewTeam(env, projectID(r))
	if err := team.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	if !team.IsMember() {
		writeError(w, r, views.ErrForbidden)
		return
	}
	viewer := env.Session.User()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, projectID(r).String(), viewer.ID.String())
	if !h.hub.Join(client) {
		log.Warn().Msg("Websocket hub is shut down; refusing connection")
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(h.handleIncomingWSMessage)
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Error().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		client.Reply(ws.NewErrorMessage("Malformed message"))
		return
	}

	switch msg.Action {
	case "ping":
		data, _ := json.Marshal(ws.Message{Action: "pong"})
		client.Reply(data)
	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		client.Reply(ws.NewErrorMessage("Unknown action: " + msg.Action))
	}
}
