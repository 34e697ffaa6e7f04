package hub

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-beacon/internal/log"
)

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Name for logging
	name string

	// Registered clients, owned by Run
	clients map[*Client]bool

	// Inbound messages to broadcast
	broadcast chan Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Last broadcast message, replayed to new clients when retain is set
	retain bool
	lastMu sync.RWMutex
	last   *Message

	count   atomic.Int32
	running atomic.Bool
	done    chan struct{}
}

// New creates a new Hub
func New(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// NewRetaining creates a Hub that sends its latest message to every client
// as soon as it connects. Used for status snapshots.
func NewRetaining(name string) *Hub {
	h := New(name)
	h.retain = true
	return h
}

// Run starts the hub's main loop and blocks until ctx is cancelled, then
// closes every client. A hub runs once.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int32(len(h.clients)))
			if m := h.lastMessage(); m != nil {
				select {
				case client.send <- *m:
				default:
				}
			}
			log.Debug("dashboard client connected", "hub", h.name, "clients", len(h.clients))

		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
			}
			log.Debug("dashboard client disconnected", "hub", h.name, "clients", len(h.clients))

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's buffer is full - they're too slow
					h.drop(client)
					log.Warn("dropped slow dashboard client", "hub", h.name)
				}
			}
		}
	}
}

// join and leave give up once the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int32(len(h.clients)))
}

func (h *Hub) lastMessage() *Message {
	h.lastMu.RLock()
	defer h.lastMu.RUnlock()
	return h.last
}

// Broadcast sends a message to all connected clients. It never blocks: when
// the queue is full the message is dropped.
func (h *Hub) Broadcast(msg Message) {
	if h.retain {
		h.lastMu.Lock()
		h.last = &msg
		h.lastMu.Unlock()
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Debug("broadcast queue full, dropping message", "hub", h.name)
	}
}

// BroadcastJSON encodes and broadcasts a JSON message
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(NewJSONMessage(data))
	return nil
}

// BroadcastBinary broadcasts binary data (e.g., camera frames)
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(NewBinaryMessage(data))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// IsRunning returns whether the hub is running
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}
