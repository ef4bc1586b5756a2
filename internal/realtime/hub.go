// Package realtime implements the publish-subscribe layer bridging the chat
// store to connected websocket clients. Room membership is process-local and
// lost on disconnect; clients must rejoin after reconnecting.
package realtime

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Event is the wire shape of every gateway message
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client is one websocket connection bound to an authenticated user
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
	Send   chan Event

	ctx    context.Context
	cancel context.CancelFunc
}

// Hub tracks which clients are subscribed to which rooms
type Hub struct {
	mu        sync.RWMutex
	rooms     map[primitive.ObjectID]map[*Client]struct{}
	roomLocks map[primitive.ObjectID]*sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:     map[primitive.ObjectID]map[*Client]struct{}{},
		roomLocks: map[primitive.ObjectID]*sync.Mutex{},
	}
}

// Register creates a client for a connection. The caller starts the write
// loop; tests can read Send directly.
func (h *Hub) Register(userID primitive.ObjectID, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan Event, 64),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Join subscribes a client to a room. Duplicate joins are harmless.
func (h *Hub) Join(c *Client, roomID primitive.ObjectID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = map[*Client]struct{}{}
	}
	h.rooms[roomID][c] = struct{}{}
}

// Unregister removes the client from every room it joined and tears its
// connection down
func (h *Hub) Unregister(c *Client) {
	c.cancel()

	h.mu.Lock()
	for roomID, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()

	if c.Conn != nil {
		_ = c.Conn.Close(websocket.StatusNormalClosure, "bye")
	}
}

// Broadcast delivers an event to every client currently subscribed to the
// room, including the origin connection. A client with a full send buffer
// drops the event.
func (h *Hub) Broadcast(roomID primitive.ObjectID, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[roomID] {
		select {
		case c.Send <- ev:
		default:
			// slow consumer, drop
		}
	}
}

// Publish runs produce under the room's order mutex and broadcasts the
// resulting event on success. This keeps per-room delivery in the order the
// store appends complete.
func (h *Hub) Publish(roomID primitive.ObjectID, produce func() (Event, error)) error {
	lock := h.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	ev, err := produce()
	if err != nil {
		return err
	}
	h.Broadcast(roomID, ev)
	return nil
}

func (h *Hub) roomLock(roomID primitive.ObjectID) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()

	lock, ok := h.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		h.roomLocks[roomID] = lock
	}
	return lock
}

// InRoom reports whether the client is currently subscribed to the room
func (h *Hub) InRoom(c *Client, roomID primitive.ObjectID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.rooms[roomID][c]
	return ok
}

// WriteLoop forwards queued events onto the websocket connection until the
// client is unregistered
func (c *Client) WriteLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.Send:
			writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = wsjson.Write(writeCtx, c.Conn, ev)
			cancel()
		}
	}
}

// KeepAlive pings the connection periodically so intermediaries keep it open
func (c *Client) KeepAlive() {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = c.Conn.Ping(pingCtx)
			cancel()
		}
	}
}
