package websocket

import (
	"context"
	"encoding/json"

	"voice-coach-be/internal/pkg/logger"
	"voice-coach-be/pkg/conversation"

	"github.com/gofiber/websocket/v2"
)

// Sessions is the orchestrator surface a connection drives.
type Sessions interface {
	conversation.SessionEventSink
	Open(sessionID string, channel conversation.Channel) error
}

// ToolInvoker executes agent function calls.
type ToolInvoker interface {
	Invoke(ctx context.Context, sessionID, name string, arguments json.RawMessage) (string, error)
}

type SessionHandler struct {
	hub      *Hub
	sessions Sessions
	tools    ToolInvoker
	logger   logger.ILogger
	frames   logger.ILogger
}

func NewSessionHandler(hub *Hub, sessions Sessions, tools ToolInvoker, log logger.ILogger, frameLog logger.ILogger) *SessionHandler {
	return &SessionHandler{
		hub:      hub,
		sessions: sessions,
		tools:    tools,
		logger:   log,
		frames:   frameLog,
	}
}

// ServeWs binds one agent connection to the room's session and blocks
// until the connection ends.
func (h *SessionHandler) ServeWs(conn *websocket.Conn, room string) {
	client := NewClient(h.hub, conn, room, h.frames)

	// 1. Claim the room
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	// 2. Bind the session to this channel
	if err := h.sessions.Open(room, client); err != nil {
		h.logger.Error("WS", "Failed to open session", map[string]interface{}{"room": room, "error": err.Error()})
		client.SendError(context.Background(), err.Error())
		h.hub.Unregister(client)
		// Flushes the error frame, then the close frame
		client.writePump()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-client.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	go client.writePump()
	client.readPump(func(frame InboundFrame) bool {
		return h.dispatch(ctx, client, frame)
	})
}

// dispatch runs one inbound frame to completion. Returning false ends the connection.
func (h *SessionHandler) dispatch(ctx context.Context, client *Client, frame InboundFrame) bool {
	room := client.Room

	switch frame.Type {
	case FrameSessionStarted:
		if err := h.sessions.OnSessionStarted(ctx, room); err != nil {
			h.logger.Error("WS", "Session start failed", map[string]interface{}{"room": room, "error": err.Error()})
		}

	case FrameUtteranceCommitted:
		if err := h.sessions.OnUserUtterance(ctx, room, frame.Content); err != nil {
			h.logger.Error("WS", "Utterance handling failed", map[string]interface{}{"room": room, "error": err.Error()})
		}

	case FrameFunctionCall:
		output, err := h.tools.Invoke(ctx, room, frame.Name, frame.Arguments)
		if err != nil {
			h.logger.Warn("WS", "Tool call failed", map[string]interface{}{"room": room, "tool": frame.Name, "error": err.Error()})
			output = "Error: " + err.Error()
		}
		if err := client.SendFunctionOutput(ctx, frame.CallID, output); err != nil {
			return false
		}
		if err := client.RequestResponse(ctx); err != nil {
			return false
		}

	case FrameSessionEnded:
		return false

	default:
		h.logger.Warn("WS", "Unknown frame type", map[string]interface{}{"room": room, "type": frame.Type})
	}

	return true
}
