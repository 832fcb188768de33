package websocket

import (
	"context"
	"encoding/json"

	"github.com/isdelr/teamup-web/internal/models"
	"github.com/rs/zerolog/log"
)

// publishBuffer bounds notifications waiting for the hub loop.
const publishBuffer = 64

// publication is addressed to a project's subscribers, or to one client
// when client is set.
type publication struct {
	projectID string
	client    *Client
	data      []byte
}

// Hub maintains the set of active clients and fans team-chat changes out to
// the clients subscribed to a project.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	// Outbound messages addressed to one project's subscribers.
	publish chan publication

	// A map of project IDs to the set of clients subscribed to it.
	subscriptions map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		done:          make(chan struct{}),
		publish:       make(chan publication, publishBuffer),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run processes registrations and publications until ctx is done. All hub
// state is owned by this loop.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.Send)
			}
			h.clients = make(map[*Client]bool)
			h.subscriptions = make(map[string]map[*Client]bool)
			return
		case client := <-h.register:
			h.clients[client] = true
			h.addSubscription(client, client.ProjectID)
			log.Info().Int("total_clients", len(h.clients)).Str("project_id", client.ProjectID).Msg("Client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscription(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case p := <-h.publish:
			if p.client != nil {
				h.sendTo(p.client, p.data)
				continue
			}
			h.broadcastTo(p.projectID, p.data)
		}
	}
}

// Join registers client with the running hub. It reports false once the hub
// has shut down, in which case the caller owns the connection.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters client. After shutdown it returns immediately.
func (h *Hub) Leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Notify queues a message for every client watching projectID. It never
// blocks; when the queue is full the message is dropped.
func (h *Hub) Notify(projectID models.ID, action string, payload any) {
	data, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode websocket message")
		return
	}
	h.enqueue(publication{projectID: projectID.String(), data: data})
}

func (h *Hub) enqueue(p publication) {
	select {
	case h.publish <- p:
	default:
		log.Warn().Str("project_id", p.projectID).Msg("Websocket publish queue full, dropping message")
	}
}

// broadcastTo sends a message to all clients subscribed to a project.
// Clients that cannot keep up are dropped.
func (h *Hub) broadcastTo(projectID string, message []byte) {
	subs, ok := h.subscriptions[projectID]
	if !ok {
		return
	}
	for client := range subs {
		h.sendTo(client, message)
	}
}

func (h *Hub) sendTo(client *Client, message []byte) {
	if !h.clients[client] {
		return
	}
	select {
	case client.Send <- message:
	default:
		close(client.Send)
		delete(h.clients, client)
		h.removeSubscription(client)
	}
}

func (h *Hub) addSubscription(client *Client, projectID string) {
	if projectID == "" {
		return
	}
	if h.subscriptions[projectID] == nil {
		h.subscriptions[projectID] = make(map[*Client]bool)
	}
	h.subscriptions[projectID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for projectID, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, projectID)
			}
		}
	}
}
