package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBuffer = 32
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// ProjectID is the team chat this client watches.
	ProjectID string

	// UserID identifies the signed-in viewer behind the connection.
	UserID string

	// Buffered channel of outbound messages.
	Send chan []byte
}

// NewClient creates a client for conn subscribed to projectID.
func NewClient(hub *Hub, conn *websocket.Conn, projectID, userID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		ProjectID: projectID,
		UserID:    userID,
		Send:      make(chan []byte, sendBuffer),
	}
}

// ReadPump pumps messages from the connection to handle until the peer goes
// away, then unregisters the client.
func (c *Client) ReadPump(handle func(*Client, []byte)) {
	defer func() {
		c.hub.Leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("project_id", c.ProjectID).Msg("Websocket closed unexpectedly")
			}
			return
		}
		handle(c, message)
	}
}

// WritePump pumps messages from the hub to the connection. It returns when
// Send is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Reply queues message for this client alone. Delivery goes through the hub
// loop, which owns Send.
func (c *Client) Reply(message []byte) {
	c.hub.enqueue(publication{projectID: c.ProjectID, client: c, data: message})
}
