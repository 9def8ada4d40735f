// Package signal carries "this session's document changed" notices from the
// upload side to the session that owns the room.
package signal

import (
	"context"
	"sync"
)

const (
	BackendMemory    = "memory"
	BackendWatermill = "watermill"
	BackendFile      = "file"
	BackendRedis     = "redis"
	BackendNats      = "nats"
)

// Source reports whether a refresh signal is pending for a session.
// A true result consumes the signal.
type Source interface {
	Pending(ctx context.Context, sessionID string) (bool, error)
}

// Publisher raises a refresh signal for a session.
type Publisher interface {
	Publish(ctx context.Context, sessionID string) error
}

// Notifier lets a poller wake as soon as a signal lands instead of waiting
// for its next tick. The returned stop func releases the registration.
type Notifier interface {
	Watch(sessionID string) (<-chan struct{}, func())
}

// Bus is both ends plus lifecycle.
type Bus interface {
	Source
	Publisher
	Notifier
	Close() error
}

// wakers holds one buffered wake channel per watched key.
type wakers struct {
	mu    sync.Mutex
	chans map[string]chan struct{}
}

func newWakers() *wakers {
	return &wakers{chans: make(map[string]chan struct{})}
}

func (w *wakers) watch(key string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	w.mu.Lock()
	w.chans[key] = ch
	w.mu.Unlock()

	return ch, func() {
		w.mu.Lock()
		if w.chans[key] == ch {
			delete(w.chans, key)
		}
		w.mu.Unlock()
	}
}

func (w *wakers) wake(key string) {
	w.mu.Lock()
	ch, ok := w.chans[key]
	w.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// pendingSet coalesces repeated signals for one session into one.
type pendingSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
	*wakers
}

func newPendingSet() *pendingSet {
	return &pendingSet{ids: make(map[string]struct{}), wakers: newWakers()}
}

func (p *pendingSet) mark(sessionID string) {
	if sessionID == "" {
		return
	}
	p.mu.Lock()
	p.ids[sessionID] = struct{}{}
	p.mu.Unlock()
	p.wake(sessionID)
}

// watch also wakes immediately when a signal is already waiting.
func (p *pendingSet) watch(sessionID string) (<-chan struct{}, func()) {
	ch, stop := p.wakers.watch(sessionID)

	p.mu.Lock()
	_, waiting := p.ids[sessionID]
	p.mu.Unlock()

	if waiting {
		p.wake(sessionID)
	}
	return ch, stop
}

func (p *pendingSet) take(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.ids[sessionID]; !ok {
		return false
	}
	delete(p.ids, sessionID)
	return true
}

// MemorySignal keeps signals in process. Upload and agent must share it.
type MemorySignal struct {
	pending *pendingSet
}

func NewMemorySignal() *MemorySignal {
	return &MemorySignal{pending: newPendingSet()}
}

func (m *MemorySignal) Publish(ctx context.Context, sessionID string) error {
	m.pending.mark(sessionID)
	return nil
}

func (m *MemorySignal) Pending(ctx context.Context, sessionID string) (bool, error) {
	return m.pending.take(sessionID), nil
}

func (m *MemorySignal) Watch(sessionID string) (<-chan struct{}, func()) {
	return m.pending.watch(sessionID)
}

func (m *MemorySignal) Close() error { return nil }
