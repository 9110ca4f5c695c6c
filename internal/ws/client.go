package ws

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const sendBuffer = 256

// Client is one live connection. Its lifecycle is Connecting (constructed),
// Joined (registered in the hub), Closed (pumps returned); reconnection is a
// fresh Client, never a reused one.
type Client struct {
	ws     *websocket.Conn
	send   chan []byte
	userID string
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ws:   conn,
		send: make(chan []byte, sendBuffer),
	}
}

func (c *Client) readPump(hub *Hub, maxMsgSize int64) {
	defer func() {
		hub.Leave(c)
		close(c.send)
		_ = c.ws.Close()
	}()
	c.ws.SetReadLimit(maxMsgSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	// The live channel is server-to-client only; inbound frames are read
	// just to notice disconnects and keep the deadline fresh.
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump(pingInterval, writeDeadline time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
