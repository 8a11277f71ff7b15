package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// REST routes are covered by CORS; the socket accepts any origin.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one websocket connection
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: logger.With("client_id", id),
	}
}

// ServeWs upgrades the request and attaches the connection to hub
func ServeWs(hub *Hub, logger *slog.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(hub, conn, logger)
	hub.Register(c)

	go c.writeLoop()
	go c.readLoop()

	c.logger.Debug("websocket connected", "remote_addr", r.RemoteAddr)
}

// readLoop answers client frames until the connection fails, then
// detaches the client from the hub
func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var req ClientMessage
		if err := json.Unmarshal(data, &req); err != nil {
			c.enqueue(errorMessage("invalid message format"))
			continue
		}
		c.enqueue(c.handle(req))
	}
}

// handle applies a client request and returns the reply to send back
func (c *Client) handle(req ClientMessage) Message {
	switch req.Type {
	case MessageTypePing:
		return Message{Type: MessageTypePong}

	case MessageTypeSubscribe:
		if req.Channel != ChannelLeaderboard {
			return errorMessage("unknown channel")
		}
		c.hub.Subscribe(c, req.Channel)
		return Message{Type: MessageTypeSubscribed, Channel: req.Channel}

	case MessageTypeUnsubscribe:
		if req.Channel == "" {
			return errorMessage("channel required")
		}
		c.hub.Unsubscribe(c, req.Channel)
		return Message{Type: MessageTypeUnsubscribed, Channel: req.Channel}

	default:
		c.logger.Debug("unknown message type", "type", req.Type)
		return errorMessage("unknown message type")
	}
}

// enqueue drops msg when the client is not keeping up
func (c *Client) enqueue(msg Message) {
	data, err := encode(msg)
	if err != nil {
		c.logger.Error("failed to marshal message", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("client buffer full, dropping reply", "type", msg.Type)
	}
}

// writeLoop drains send and keeps the connection alive with pings. It
// exits when the hub closes send or a write fails.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
