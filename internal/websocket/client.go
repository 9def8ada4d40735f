package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"voice-coach-be/internal/pkg/logger"
	"voice-coach-be/pkg/conversation"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 256
)

// Client is one agent connection for one room. It is the room's
// conversation.Channel: every emit becomes an outbound frame.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Room string

	// Buffered channel of outbound messages. Never closed; done signals shutdown.
	Send chan []byte

	done      chan struct{}
	closeOnce sync.Once
	frames    logger.ILogger
}

var _ conversation.Channel = (*Client)(nil)

func NewClient(hub *Hub, conn *websocket.Conn, room string, frameLog logger.ILogger) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		Room:   room,
		Send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		frames: frameLog,
	}
}

// Close stops the write pump. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) send(ctx context.Context, frame OutboundFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return conversation.ErrChannelClosed
	default:
	}

	select {
	case c.Send <- data:
		c.frames.Info("Channel", "frame out", map[string]interface{}{"room": c.Room, "type": frame.Type})
		return nil
	case <-c.done:
		return conversation.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) emitItem(ctx context.Context, role conversation.Role, text string) error {
	return c.send(ctx, OutboundFrame{
		Type: FrameItemCreate,
		Item: &ItemPayload{Role: role, Content: text},
	})
}

func (c *Client) EmitSystemMessage(ctx context.Context, text string) error {
	return c.emitItem(ctx, conversation.RoleSystem, text)
}

func (c *Client) EmitAssistantMessage(ctx context.Context, text string) error {
	return c.emitItem(ctx, conversation.RoleAssistant, text)
}

func (c *Client) EmitUserMessage(ctx context.Context, text string) error {
	return c.emitItem(ctx, conversation.RoleUser, text)
}

func (c *Client) RequestResponse(ctx context.Context) error {
	return c.send(ctx, OutboundFrame{Type: FrameResponseCreate})
}

func (c *Client) SendFunctionOutput(ctx context.Context, callID, output string) error {
	return c.send(ctx, OutboundFrame{Type: FrameFunctionCallOutput, CallID: callID, Output: output})
}

func (c *Client) SendError(ctx context.Context, message string) error {
	return c.send(ctx, OutboundFrame{Type: FrameError, Message: message})
}

// readPump decodes inbound frames and hands them to dispatch in arrival
// order. It returns when the peer goes away or dispatch asks to stop.
func (c *Client) readPump(dispatch func(InboundFrame) bool) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.frames.Warn("Channel", "read failed", map[string]interface{}{"room": c.Room, "error": err.Error()})
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			c.frames.Warn("Channel", "malformed frame dropped", map[string]interface{}{"room": c.Room, "error": err.Error()})
			continue
		}
		c.frames.Info("Channel", "frame in", map[string]interface{}{"room": c.Room, "type": frame.Type})

		if !dispatch(frame) {
			return
		}
	}
}

// writePump pumps frames to the websocket connection and keeps it alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Close()
				return
			}

		case <-c.done:
			// Flush what is already queued, then say goodbye.
			for {
				select {
				case message := <-c.Send:
					c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
						return
					}
				default:
					c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
