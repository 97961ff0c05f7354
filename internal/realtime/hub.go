package realtime

import (
	"context"
	"errors"
	"log"
	"strconv"
)

var (
	ErrNotBound     = errors.New("connection not bound to a user")
	ErrAlreadyBound = errors.New("connection already bound to another user")
	ErrHubClosed    = errors.New("hub stopped")
)

// RoomID names a broadcast group. User rooms and conversation rooms live in
// separate namespaces so a numeric uid can never collide with a conversation id.
type RoomID string

func UserRoom(uid string) RoomID {
	return RoomID("user:" + uid)
}

func ConversationRoom(id uint64) RoomID {
	return RoomID("conversation:" + strconv.FormatUint(id, 10))
}

type binding struct {
	uid   string
	rooms map[RoomID]struct{}
}

type Stats struct {
	Connections int `json:"connections"`
	Users       int `json:"users"`
	Rooms       int `json:"rooms"`
}

// Hub owns every connection binding and room membership. All state is mutated
// by the Run goroutine; the exported methods hand it a closure and wait.
type Hub struct {
	ops  chan func()
	done chan struct{}

	bindings map[*Client]*binding
	rooms    map[RoomID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		ops:      make(chan func()),
		done:     make(chan struct{}),
		bindings: make(map[*Client]*binding),
		rooms:    make(map[RoomID]map[*Client]struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case op := <-h.ops:
			op()
		case <-ctx.Done():
			for c := range h.bindings {
				h.unbind(c)
			}
			close(h.done)
			log.Printf("[hub] stopped")
			return
		}
	}
}

func (h *Hub) exec(fn func()) error {
	finished := make(chan struct{})
	select {
	case h.ops <- func() { fn(); close(finished) }:
	case <-h.done:
		return ErrHubClosed
	}
	<-finished
	return nil
}

// Bind associates the connection with uid and puts it in the user's room.
// Rebinding to the same uid is a no-op.
func (h *Hub) Bind(c *Client, uid string) error {
	var result error
	err := h.exec(func() {
		if c.closed {
			result = ErrNotBound
			return
		}
		if b, ok := h.bindings[c]; ok {
			if b.uid != uid {
				result = ErrAlreadyBound
			}
			return
		}
		h.bindings[c] = &binding{uid: uid, rooms: make(map[RoomID]struct{})}
		h.join(c, UserRoom(uid))
	})
	if err != nil {
		return err
	}
	return result
}

func (h *Hub) Join(c *Client, room RoomID) error {
	var result error
	err := h.exec(func() {
		if _, ok := h.bindings[c]; !ok {
			result = ErrNotBound
			return
		}
		h.join(c, room)
	})
	if err != nil {
		return err
	}
	return result
}

func (h *Hub) Leave(c *Client, room RoomID) {
	_ = h.exec(func() { h.leave(c, room) })
}

// Unbind removes the connection from every room and closes its outbound queue.
// Safe to call more than once and for connections that never bound.
func (h *Hub) Unbind(c *Client) {
	_ = h.exec(func() { h.unbind(c) })
}

// Publish delivers payload to every member of room except the given connection.
// include is delivered to as well even if it never joined the room. Returns the
// number of connections the payload was queued for.
func (h *Hub) Publish(room RoomID, payload []byte, except, include *Client) int {
	var n int
	_ = h.exec(func() {
		for c := range h.rooms[room] {
			if c == except || c == include {
				continue
			}
			if h.deliver(c, payload) {
				n++
			}
		}
		if include != nil && include != except && h.deliver(include, payload) {
			n++
		}
	})
	return n
}

// Send queues payload for a single connection.
func (h *Hub) Send(c *Client, payload []byte) bool {
	var ok bool
	_ = h.exec(func() { ok = h.deliver(c, payload) })
	return ok
}

func (h *Hub) Joined(c *Client, room RoomID) bool {
	var ok bool
	_ = h.exec(func() {
		if b, bound := h.bindings[c]; bound {
			_, ok = b.rooms[room]
		}
	})
	return ok
}

func (h *Hub) BoundUser(c *Client) (string, bool) {
	var (
		uid string
		ok  bool
	)
	_ = h.exec(func() {
		if b, bound := h.bindings[c]; bound {
			uid, ok = b.uid, true
		}
	})
	return uid, ok
}

func (h *Hub) Stats() Stats {
	var s Stats
	_ = h.exec(func() {
		users := make(map[string]struct{}, len(h.bindings))
		for _, b := range h.bindings {
			users[b.uid] = struct{}{}
		}
		s = Stats{Connections: len(h.bindings), Users: len(users), Rooms: len(h.rooms)}
	})
	return s
}

func (h *Hub) join(c *Client, room RoomID) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	h.bindings[c].rooms[room] = struct{}{}
}

func (h *Hub) leave(c *Client, room RoomID) {
	if b, ok := h.bindings[c]; ok {
		delete(b.rooms, room)
	}
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) unbind(c *Client) {
	if b, ok := h.bindings[c]; ok {
		for room := range b.rooms {
			h.leave(c, room)
		}
		delete(h.bindings, c)
	}
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// deliver never blocks the hub: a full queue means the peer is not keeping up
// and the connection is dropped.
func (h *Hub) deliver(c *Client, payload []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		log.Printf("[hub] conn=%s queue full, dropping", c.ID)
		h.unbind(c)
		return false
	}
}
