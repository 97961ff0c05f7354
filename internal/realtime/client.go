package realtime

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

// Client is one live websocket connection. Its outbound queue is written and closed
// only by the Hub goroutine; WritePump drains it onto the socket.
type Client struct {
	ID string

	conn     *websocket.Conn
	send     chan []byte
	pongWait time.Duration

	// owned by the Hub goroutine
	closed bool
}

func NewClient(conn *websocket.Conn, buffer int, pongWait time.Duration) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	if pongWait <= 0 {
		pongWait = 60 * time.Second
	}
	return &Client{
		ID:       uuid.NewString(),
		conn:     conn,
		send:     make(chan []byte, buffer),
		pongWait: pongWait,
	}
}

// Outbound exposes the queue WritePump drains.
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

// PrepareRead arms the read deadline and keeps it alive on every pong.
func (c *Client) PrepareRead() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})
}

// ReadFrame blocks for the next text frame from the peer.
func (c *Client) ReadFrame() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// WritePump runs until the Hub closes the queue or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker((c.pongWait * 9) / 10)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[ws] conn=%s write error: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
