package websocket

import (
	"context"
	"sync"

	"voice-coach-be/internal/pkg/logger"
)

// Hub tracks the single live agent connection per room. A newer connection
// for a room replaces the older one; the room closes only when its current
// connection leaves.
type Hub struct {
	rooms map[string]*Client

	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	stopped chan struct{}

	onRoomClosed func(room string)
	logger       logger.ILogger
}

func NewHub(onRoomClosed func(room string), log logger.ILogger) *Hub {
	return &Hub{
		rooms:        make(map[string]*Client),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		stopped:      make(chan struct{}),
		onRoomClosed: onRoomClosed,
		logger:       log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			previous := h.rooms[client.Room]
			h.rooms[client.Room] = client
			h.mu.Unlock()

			if previous != nil && previous != client {
				previous.Close()
				h.logger.Info("Hub", "Agent connection replaced", map[string]interface{}{"room": client.Room})
			} else {
				h.logger.Info("Hub", "Agent connected", map[string]interface{}{"room": client.Room})
			}

		case client := <-h.unregister:
			client.Close()

			h.mu.Lock()
			current := h.rooms[client.Room] == client
			if current {
				delete(h.rooms, client.Room)
			}
			h.mu.Unlock()

			if current {
				h.logger.Info("Hub", "Room closed", map[string]interface{}{"room": client.Room})
				if h.onRoomClosed != nil {
					h.onRoomClosed(client.Room)
				}
			}
		}
	}
}

// Register hands a client to the run loop. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
		client.Close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*Client)
	h.mu.Unlock()

	for room, client := range rooms {
		client.Close()
		if h.onRoomClosed != nil {
			h.onRoomClosed(room)
		}
	}
}

func (h *Hub) Connected(room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room]
	return ok
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
