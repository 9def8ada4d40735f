package websocket

import (
	"encoding/json"

	"voice-coach-be/pkg/conversation"
)

// Inbound frame types, sent by the voice agent.
const (
	FrameSessionStarted     = "session_started"
	FrameUtteranceCommitted = "utterance_committed"
	FrameFunctionCall       = "function_call"
	FrameSessionEnded       = "session_ended"
)

// Outbound frame types, sent to the voice agent.
const (
	FrameItemCreate         = "conversation.item.create"
	FrameResponseCreate     = "response.create"
	FrameFunctionCallOutput = "function_call_output"
	FrameError              = "error"
)

type InboundFrame struct {
	Type      string               `json:"type"`
	Content   conversation.Content `json:"content"`
	CallID    string               `json:"call_id,omitempty"`
	Name      string               `json:"name,omitempty"`
	Arguments json.RawMessage      `json:"arguments,omitempty"`
}

type ItemPayload struct {
	Role    conversation.Role `json:"role"`
	Content string            `json:"content"`
}

type OutboundFrame struct {
	Type    string       `json:"type"`
	Item    *ItemPayload `json:"item,omitempty"`
	CallID  string       `json:"call_id,omitempty"`
	Output  string       `json:"output,omitempty"`
	Message string       `json:"message,omitempty"`
}
