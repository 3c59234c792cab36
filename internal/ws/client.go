package ws

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer. Must fit a max-length message in
	// 4-byte runes plus the JSON envelope and escaping overhead.
	maxMessageSize = 16384

	// Outbound buffer per connection.
	sendBufferSize = 64
)

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	ID     string
	UserID string

	hub     *Hub
	gateway *Gateway
	conn    *websocket.Conn
	send    chan Event

	// room subscriptions, guarded by hub.mu
	rooms map[string]struct{}
}

// NewClient wraps an authenticated connection.
func NewClient(hub *Hub, gateway *Gateway, conn *websocket.Conn, userID string) *Client {
	return &Client{
		ID:      uuid.NewString(),
		UserID:  userID,
		hub:     hub,
		gateway: gateway,
		conn:    conn,
		send:    make(chan Event, sendBufferSize),
		rooms:   make(map[string]struct{}),
	}
}

// ReadPump pumps frames from the websocket connection into the gateway.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Websocket read error for user %s: %v", c.UserID, err)
			}
			break
		}
		c.gateway.Dispatch(c, message)
	}
}

// WritePump pumps events from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
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
