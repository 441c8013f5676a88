package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// UserRoom returns the room name that carries task updates for one user.
// Every session a user has open subscribes to it.
func UserRoom(userID uint) string {
	return fmt.Sprintf("user-%d", userID)
}

// ProjectRoom returns the room name for one project's chat channel.
func ProjectRoom(projectID string) string {
	return "project-" + projectID
}

// Client represents one connected WebSocket session. A client can be a
// member of several rooms at once: its own user room plus any project
// channels it opened.
type Client struct {
	ID     string
	UserID uint
	Conn   *websocket.Conn

	mu sync.Mutex // serializes writes to Conn
}

// send writes one frame to the client. Delivery is best-effort: an error
// means the frame is dropped, nothing is retried.
func (c *Client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// SendJSON writes one JSON value to the client. It shares the write lock
// with hub fan-out, so callers may use it from the connection's read loop.
func (c *Client) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.send(data)
}

// Frame is one event relayed to room members.
type Frame struct {
	Room    string
	Type    string
	Payload any
}

// Hub relays task mutations and chat traffic to the rooms that care about
// them. It persists nothing: messages to disconnected clients are dropped
// silently and there is no replay, so a reconnecting client must re-fetch
// current state from the task store to resynchronize.
type Hub struct {
	clients    map[string]*Client         // clientID -> Client
	rooms      map[string]map[string]bool // room -> set of clientIDs
	memberOf   map[string]map[string]bool // clientID -> set of rooms
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Frame
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		memberOf:   make(map[string]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Frame, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It accepts a context for graceful
// shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[broadcast] Hub shutting down...")
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case frame := <-h.broadcast:
			h.handleBroadcast(frame)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.rooms = make(map[string]map[string]bool)
	h.memberOf = make(map[string]map[string]bool)
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	h.memberOf[client.ID] = make(map[string]bool)
	h.joinLocked(client.ID, UserRoom(client.UserID))
	log.Printf("[broadcast] Client %s (user %d) registered", client.ID, client.UserID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	for room := range h.memberOf[client.ID] {
		if h.rooms[room] != nil {
			delete(h.rooms[room], client.ID)
			if len(h.rooms[room]) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	delete(h.memberOf, client.ID)
	delete(h.clients, client.ID)
	log.Printf("[broadcast] Client %s (user %d) unregistered", client.ID, client.UserID)
}

func (h *Hub) joinLocked(clientID, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]bool)
	}
	h.rooms[room][clientID] = true
	h.memberOf[clientID][room] = true
}

func (h *Hub) leaveLocked(clientID, room string) {
	if h.rooms[room] != nil {
		delete(h.rooms[room], clientID)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	if h.memberOf[clientID] != nil {
		delete(h.memberOf[clientID], room)
	}
}

func (h *Hub) handleBroadcast(frame *Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(frame.Payload)
	if err != nil {
		log.Printf("[broadcast] Failed to marshal frame: %v", err)
		return
	}

	for clientID := range h.rooms[frame.Room] {
		client, ok := h.clients[clientID]
		if !ok {
			continue
		}
		if err := client.send(data); err != nil {
			log.Printf("[broadcast] Failed to send to client %s: %v", clientID, err)
		}
	}
}

// Register adds a client to the hub and subscribes it to its user room.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and all its room memberships.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast relays an event to every current member of a room. Best-effort,
// at-most-once per connected subscriber.
func (h *Hub) Broadcast(room, frameType string, payload any) {
	h.broadcast <- &Frame{
		Room:    room,
		Type:    frameType,
		Payload: payload,
	}
}

// JoinRoom subscribes a client to an additional room.
func (h *Hub) JoinRoom(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[clientID]; !ok {
		return
	}
	h.joinLocked(clientID, room)
	log.Printf("[broadcast] Client %s joined room %s", clientID, room)
}

// LeaveRoom unsubscribes a client from a room.
func (h *Hub) LeaveRoom(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[clientID]; !ok {
		return
	}
	h.leaveLocked(clientID, room)
	log.Printf("[broadcast] Client %s left room %s", clientID, room)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomClientCount returns the number of clients subscribed to a room.
func (h *Hub) RoomClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
