package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/realtime"
)

// Registry is the connection registry as seen by the presence router.
type Registry interface {
	Publisher
	Bind(c *realtime.Client, uid string) error
	Join(c *realtime.Client, room realtime.RoomID) error
	Joined(c *realtime.Client, room realtime.RoomID) bool
	BoundUser(c *realtime.Client) (string, bool)
	Send(c *realtime.Client, payload []byte) bool
	Unbind(c *realtime.Client)
}

type PresenceService interface {
	Setup(ctx context.Context, c *realtime.Client, authUID, requestedUID string) error
	Join(ctx context.Context, c *realtime.Client, convID uint64) error
	RelayTyping(ctx context.Context, c *realtime.Client, convID uint64, typing bool) error
	// RelayMessage persists and broadcasts a message. c may be nil for messages
	// that arrive over REST.
	RelayMessage(ctx context.Context, c *realtime.Client, uid string, convID uint64, in MessageInput) (*model.Message, error)
	Disconnect(c *realtime.Client)
}

type presenceService struct {
	reg   Registry
	convs ConversationService
	locks keyedMutex
}

func NewPresenceService(reg Registry, convs ConversationService) PresenceService {
	return &presenceService{reg: reg, convs: convs}
}

func (s *presenceService) Setup(ctx context.Context, c *realtime.Client, authUID, requestedUID string) error {
	if authUID == "" {
		return ErrForbidden
	}
	if requestedUID != "" && requestedUID != authUID {
		return ErrForbidden
	}
	if err := s.reg.Bind(c, authUID); err != nil {
		if errors.Is(err, realtime.ErrAlreadyBound) || errors.Is(err, realtime.ErrNotBound) {
			return ErrForbidden
		}
		return err
	}
	log.Printf("[ws] conn=%s uid=%s setup", c.ID, authUID)
	s.reply(c, realtime.EventConnected, map[string]string{"userId": authUID})
	return nil
}

func (s *presenceService) Join(ctx context.Context, c *realtime.Client, convID uint64) error {
	uid, ok := s.reg.BoundUser(c)
	if !ok {
		return ErrForbidden
	}
	if _, err := s.convs.Get(ctx, convID, uid); err != nil {
		return err
	}
	if err := s.reg.Join(c, realtime.ConversationRoom(convID)); err != nil {
		if errors.Is(err, realtime.ErrNotBound) {
			return ErrForbidden
		}
		return err
	}
	s.reply(c, realtime.EventJoined, map[string]uint64{"conversationId": convID})
	return nil
}

func (s *presenceService) RelayTyping(ctx context.Context, c *realtime.Client, convID uint64, typing bool) error {
	room := realtime.ConversationRoom(convID)
	uid, ok := s.reg.BoundUser(c)
	if !ok || !s.reg.Joined(c, room) {
		return ErrForbidden
	}
	event := realtime.EventStopTyping
	if typing {
		event = realtime.EventTyping
	}
	payload, err := realtime.Encode(event, TypingPayload{ConversationID: convID, UserID: uid})
	if err != nil {
		return err
	}
	s.reg.Publish(room, payload, c, nil)
	return nil
}

func (s *presenceService) RelayMessage(ctx context.Context, c *realtime.Client, uid string, convID uint64, in MessageInput) (*model.Message, error) {
	unlock := s.locks.Lock(convID)
	defer unlock()

	msg, err := s.convs.AppendMessage(ctx, convID, uid, in)
	if err != nil {
		return nil, err
	}
	payload, err := realtime.Encode(realtime.EventMessageReceived, ToMessagePayload(msg))
	if err != nil {
		return msg, err
	}
	n := s.reg.Publish(realtime.ConversationRoom(convID), payload, nil, c)
	log.Printf("[chat] conv=%d msg=%d sender=%s delivered=%d", convID, msg.ID, uid, n)
	return msg, nil
}

func (s *presenceService) Disconnect(c *realtime.Client) {
	s.reg.Unbind(c)
}

func (s *presenceService) reply(c *realtime.Client, event string, data any) {
	payload, err := realtime.Encode(event, data)
	if err != nil {
		return
	}
	s.reg.Send(c, payload)
}

// keyedMutex serializes work per conversation and forgets idle keys.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key uint64) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[uint64]*refMutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
