package conversation

import (
	"context"
	"errors"
)

// ErrChannelClosed is returned when emitting into a channel whose transport is gone.
var ErrChannelClosed = errors.New("conversation channel closed")

type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is one conversation item to be created in the live session.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Channel is the command side of the real-time conversation transport.
// Emit calls must not block on the model's reply.
type Channel interface {
	EmitSystemMessage(ctx context.Context, text string) error
	EmitAssistantMessage(ctx context.Context, text string) error
	EmitUserMessage(ctx context.Context, text string) error
	RequestResponse(ctx context.Context) error
}

// SessionEventSink receives the channel's inbound lifecycle events.
type SessionEventSink interface {
	OnSessionStarted(ctx context.Context, sessionID string) error
	OnUserUtterance(ctx context.Context, sessionID string, content Content) error
	OnDocumentRefreshSignal(ctx context.Context, sessionID string) error
	OnSessionEnded(sessionID string)
}

// Emit dispatches msg to the channel primitive matching its role.
func Emit(ctx context.Context, ch Channel, msg Message) error {
	switch msg.Role {
	case RoleSystem:
		return ch.EmitSystemMessage(ctx, msg.Content)
	case RoleAssistant:
		return ch.EmitAssistantMessage(ctx, msg.Content)
	case RoleUser:
		return ch.EmitUserMessage(ctx, msg.Content)
	default:
		return errors.New("unknown message role: " + string(msg.Role))
	}
}
