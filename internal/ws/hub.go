package ws

import (
	"sync"

	"github.com/rs/zerolog"
)

// Outbound event types pushed to connected clients.
const (
	EventNewMessage     = "new_message"
	EventNewChatMessage = "new_chat_message"
	EventNewActivity    = "new_activity"
	EventDeleteActivity = "delete_activity"
)

// Inbound frame types read from clients.
const (
	FrameJoin        = "join"
	FrameSendMessage = "send_message"
)

// Event is a typed payload pushed to subscribed clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Frame is a message received from a client connection.
type Frame struct {
	Type       string `json:"type"`
	Room       string `json:"room,omitempty"`
	ActivityID uint64 `json:"activity_id,omitempty"`
	ReceiverID uint64 `json:"receiver_id,omitempty"`
	Content    string `json:"content,omitempty"`
}

// Hub tracks live connections and their conversation-room memberships.
// All membership mutations happen under the mutex; broadcasts take the
// read lock and never block on a slow client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	logger  zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
		logger:  logger,
	}
}

// Register adds a connected client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	h.logger.Debug().Uint64("user_id", c.UserID).Msg("client connected")
}

// Unregister drops a client from the hub and from every room it joined,
// and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)

	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}

	close(c.send)
	h.logger.Debug().Uint64("user_id", c.UserID).Msg("client disconnected")
}

// JoinRoom subscribes a client to a conversation room.
func (h *Hub) JoinRoom(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
	c.rooms[room] = true

	h.logger.Debug().Uint64("user_id", c.UserID).Str("room", room).Msg("client joined room")
}

// BroadcastRoom pushes an event to every client subscribed to a room.
// Clients whose send buffer is full miss the event; they recover from
// persisted history.
func (h *Hub) BroadcastRoom(room string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- event:
		default:
			h.logger.Warn().Uint64("user_id", c.UserID).Str("room", room).Msg("send buffer full, dropping event")
		}
	}
}

// BroadcastAll pushes an event to every connected client.
func (h *Hub) BroadcastAll(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			h.logger.Warn().Uint64("user_id", c.UserID).Msg("send buffer full, dropping event")
		}
	}
}

// RoomSize reports how many clients a room currently holds.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
