package chathub

import (
	"chatapp/backend/internal/config"
	"chatapp/backend/internal/models"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketClient is the gorilla/websocket implementation of Client.
type WebSocketClient struct {
	UserID string
	Conn   *websocket.Conn
	Hub    *ManagerService

	send chan models.SocketEvent
	done chan struct{}
	once sync.Once
}

var _ Client = (*WebSocketClient)(nil)

func NewWebSocketClient(hub *ManagerService, userID string, conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{
		UserID: userID,
		Conn:   conn,
		Hub:    hub,
		send:   make(chan models.SocketEvent, config.SendBufferSize),
		done:   make(chan struct{}),
	}
}

func (c *WebSocketClient) GetUserID() string { return c.UserID }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Send queues ev for the write pump. A client whose buffer is full is too slow
// to keep up and gets disconnected.
func (c *WebSocketClient) Send(ev models.SocketEvent) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- ev:
		return true
	case <-c.done:
		return false
	default:
		log.Printf("WARNING: Send buffer full for %s, closing connection", c.UserID)
		c.Close(websocket.ClosePolicyViolation, "send buffer full")
		return false
	}
}

// Close stops the write pump and closes the socket. The read pump notices the
// closed socket and unregisters the client from the hub. Close does not wait
// on the peer; the close frame is written from its own goroutine.
func (c *WebSocketClient) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.done)
		go func() {
			deadline := time.Now().Add(config.WriteWait)
			_ = c.Conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
			_ = c.Conn.Close()
		}()
	})
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.RequestUnregister(c)
		c.Close(websocket.CloseNormalClosure, "")
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message from %s: %v", c.UserID, err)
			}
			return
		}

		var ev models.SocketEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("Error decoding JSON from client %s: %v", c.UserID, err)
			continue
		}

		switch ev.Event {
		case models.EventTyping:
			c.Hub.RequestTyping(c.UserID)
		default:
			log.Printf("WARNING: Unknown event %q from %s", ev.Event, c.UserID)
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return

		case ev := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteJSON(ev); err != nil {
				log.Printf("Error writing to client %s: %v", c.UserID, err)
				c.Close(websocket.CloseInternalServerErr, "write failed")
				return
			}

		case <-ticker.C:
			// Keep the connection alive.
			_ = c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseInternalServerErr, "ping failed")
				return
			}
		}
	}
}
