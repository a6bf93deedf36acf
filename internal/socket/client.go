package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/slotter-org/batai-backend/internal/logger"
)

type InboundMessage struct {
	Action string `json:"action,omitempty"` // "ping"
}

const (
	OutboundChanBuffer = 256

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type Client struct {
	ID       uuid.UUID
	Owner    string
	Conn     *websocket.Conn
	Hub      *Hub
	Log      *logger.Logger
	Outbound chan Message

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	cancelFn  context.CancelFunc
}

func NewClient(conn *websocket.Conn, hub *Hub, owner string, log *logger.Logger) *Client {
	id := uuid.New()
	return &Client{
		ID:       id,
		Owner:    owner,
		Conn:     conn,
		Hub:      hub,
		Log:      log.With("wsClientID", id),
		Outbound: make(chan Message, OutboundChanBuffer),
	}
}

// Run pumps both directions until either side fails or ctx ends. It blocks.
func (c *Client) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancelFn = cancel
	go c.writeLoop(ctx)
	c.readLoop(ctx)
}

func (c *Client) enqueue(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Outbound <- msg:
	default:
		c.Log.Warn("Dropping message to client; outbound buffer full", "channel", msg.Channel)
	}
}

//---------------------------------------------------------------------
// readLoop - inbound keepalive / ping handling
//---------------------------------------------------------------------
func (c *Client) readLoop(ctx context.Context) {
	defer c.close()

	c.Conn.SetReadLimit(1 << 16)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			c.Log.Debug("websocket read error, closing client", "error", err)
			return
		}
		var inbound InboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			c.Log.Debug("failed to unmarshal inbound message", "error", err)
			continue
		}
		switch inbound.Action {
		case "ping":
			c.enqueue(Message{Channel: UserChannel(c.Owner), Event: "pong"})
		default:
			c.Log.Debug("inbound WS message unhandled", "action", inbound.Action)
		}
	}
}

//---------------------------------------------------------------------
// writeLoop - hub to socket
//---------------------------------------------------------------------
func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-c.Outbound:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteJSON(msg); err != nil {
				c.Log.Warn("failed writing JSON", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Log.Debug("ping error, shutting down", "error", err)
				return
			}
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.Log.Debug("closing client connection")
		if c.cancelFn != nil {
			c.cancelFn()
		}
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.Hub.Unsubscribe(c)
		_ = c.Conn.Close()
	})
}
