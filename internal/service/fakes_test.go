package service

import (
	"context"
	"errors"
	"sync"

	"voice-coach-be/pkg/conversation"
	"voice-coach-be/pkg/store"
)

const frameResponse = "response.create"

type frame struct {
	Role    conversation.Role
	Content string
	Kind    string
}

// recordingChannel captures emissions in order. failures makes the n-th call
// of a kind fail ("system", "assistant", "user", "response").
type recordingChannel struct {
	mu       sync.Mutex
	frames   []frame
	calls    map[string]int
	failures map[string]map[int]bool
}

func newRecordingChannel() *recordingChannel {
	return &recordingChannel{
		calls:    make(map[string]int),
		failures: make(map[string]map[int]bool),
	}
}

func (c *recordingChannel) failOn(kind string, call int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures[kind] == nil {
		c.failures[kind] = make(map[int]bool)
	}
	c.failures[kind][call] = true
}

func (c *recordingChannel) record(kind string, role conversation.Role, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[kind]++
	if c.failures[kind][c.calls[kind]] {
		return errors.New("transport hiccup")
	}
	c.frames = append(c.frames, frame{Role: role, Content: content, Kind: kind})
	return nil
}

func (c *recordingChannel) EmitSystemMessage(ctx context.Context, text string) error {
	return c.record("system", conversation.RoleSystem, text)
}

func (c *recordingChannel) EmitAssistantMessage(ctx context.Context, text string) error {
	return c.record("assistant", conversation.RoleAssistant, text)
}

func (c *recordingChannel) EmitUserMessage(ctx context.Context, text string) error {
	return c.record("user", conversation.RoleUser, text)
}

func (c *recordingChannel) RequestResponse(ctx context.Context) error {
	return c.record("response", "", frameResponse)
}

func (c *recordingChannel) Frames() []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]frame(nil), c.frames...)
}

func (c *recordingChannel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

func (c *recordingChannel) count(role conversation.Role) int {
	n := 0
	for _, f := range c.Frames() {
		if f.Role == role {
			n++
		}
	}
	return n
}

// stubFetcher serves whatever document is currently set.
type stubFetcher struct {
	mu    sync.Mutex
	doc   *store.DocumentContext
	calls int
}

func (f *stubFetcher) Set(doc *store.DocumentContext) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doc = doc
}

func (f *stubFetcher) Fetch(ctx context.Context, sessionID string) *store.DocumentContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.doc.Clone()
}

func (f *stubFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
