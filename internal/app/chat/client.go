/*
Package chat contains the real-time core of the messaging server.

This file defines the Client struct, representing one live WebSocket
connection owned by an authenticated user. It manages the connection's
read/write loops, heartbeats, and inbound event handling.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dmline/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 4096

	// size of the per-connection outbound queue.
	sendQueueSize = 256
)

// Client represents one live WebSocket connection and the user it
// authenticated as. A user may own several Clients simultaneously.
type Client struct {
	// the hub this connection was admitted to.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// userID the connection authenticated as during the handshake.
	userID string

	// a buffered channel used to queue events waiting to be sent to the client.
	send chan []byte

	// closeSend guards the send channel so duplicate teardown paths close it once.
	closeSend sync.Once

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an already-authenticated connection.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	clientLogger := logx.Logger().With().
		Str("component", "ws").
		Str("user_id", userID).
		Logger()

	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendQueueSize),
		logger: clientLogger,
	}
}

// UserID returns the user identity this connection authenticated as.
func (c *Client) UserID() string {
	return c.userID
}

// ReadPump reads frames from the WebSocket connection until it closes.
// It handles heartbeats (Pong), decodes inbound events, and triggers
// disconnect cleanup exactly once on exit, whether the close was graceful
// or a network loss.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection closed unexpectedly")
			}
			break
		}

		c.processInboundEvent(frame)
	}
}

// cleanupOnDisconnect routes the connection through the hub's disconnect
// path and closes the underlying socket. The hub tolerates duplicate calls.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Connection cleanup starting.")

	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}
}

// processInboundEvent decodes one inbound frame and dispatches by event name.
func (c *Client) processInboundEvent(frame []byte) {
	var inbound struct {
		Name string          `json:"event"`
		Data json.RawMessage `json:"data,omitempty"`
	}

	if err := json.Unmarshal(frame, &inbound); err != nil {
		c.logger.Warn().Err(err).Bytes("frame", frame).Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Name {
	case EventTypingStart, EventTypingStop:
		var payload TypingPayload
		if err := json.Unmarshal(inbound.Data, &payload); err != nil || payload.ReceiverID == "" {
			c.logger.Warn().Err(err).Str("event", inbound.Name).Msg("Client sent invalid typing payload")
			return
		}
		c.hub.RelayTyping(c.userID, payload.ReceiverID, inbound.Name == EventTypingStart)

	default:
		c.logger.Warn().Str("event", inbound.Name).Msg("Client sent unsupported event")
	}
}

// WritePump writes queued frames from the send channel to the WebSocket
// connection and keeps the heartbeat alive with periodic Pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				// hub closed the queue; say goodbye properly
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Info().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// enqueue places a marshaled frame onto the connection's outbound queue.
// A full queue means the client has stopped draining; the frame is dropped
// and the caller decides whether to disconnect the client. Enqueueing onto a
// closed queue is also reported as a failure rather than a panic.
func (c *Client) enqueue(frame []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Send queue full, dropping frame")
		return false
	}
}

// closeSendQueue closes the outbound queue exactly once, which lets
// WritePump finish with a proper close frame.
func (c *Client) closeSendQueue() {
	c.closeSend.Do(func() {
		close(c.send)
	})
}
