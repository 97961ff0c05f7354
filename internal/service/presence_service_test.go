package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/realtime"
	"github.com/shinyyama/localaid-backend/internal/service"
	"github.com/shinyyama/localaid-backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

type chatRoom struct {
	f     *fixture
	conv  *model.Conversation
	alice *realtime.Client
	bob   *realtime.Client
}

// newChatRoom sets up alice and bob, both bound and joined to their conversation.
func newChatRoom(t *testing.T) *chatRoom {
	t.Helper()
	r := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "alice", "Alice")
	testutil.CreateUser(t, f.db, "bob", "Bob")
	cv, err := f.convs.FindOrCreate(ctx, "alice", "bob")
	r.NoError(err)

	alice := realtime.NewClient(nil, 64, 0)
	bob := realtime.NewClient(nil, 64, 0)
	r.NoError(f.presence.Setup(ctx, alice, "alice", "alice"))
	r.NoError(f.presence.Setup(ctx, bob, "bob", ""))
	r.NoError(f.presence.Join(ctx, alice, cv.ID))
	r.NoError(f.presence.Join(ctx, bob, cv.ID))
	r.Equal([]string{realtime.EventConnected, realtime.EventJoined}, events(frames(t, alice)))
	r.Equal([]string{realtime.EventConnected, realtime.EventJoined}, events(frames(t, bob)))
	return &chatRoom{f: f, conv: cv, alice: alice, bob: bob}
}

func TestPresence_SetupRejectsForeignIdentity(t *testing.T) {
	r := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	c := realtime.NewClient(nil, 8, 0)

	// When a client asks to be bound to somebody else
	err := f.presence.Setup(ctx, c, "alice", "bob")

	// Then nothing is bound and bob's room stays empty
	r.ErrorIs(err, service.ErrForbidden)
	_, bound := f.hub.BoundUser(c)
	r.False(bound)
	r.Zero(f.hub.Publish(realtime.UserRoom("bob"), []byte("x"), nil, nil))
	r.Empty(frames(t, c))
}

func TestPresence_SetupAfterDropIsForbidden(t *testing.T) {
	r := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	// Given a connection the hub dropped for not draining its queue
	slow := realtime.NewClient(nil, 1, 0)
	r.NoError(f.presence.Setup(ctx, slow, "alice", ""))
	r.Zero(f.hub.Publish(realtime.UserRoom("alice"), []byte("x"), nil, nil))
	_, bound := f.hub.BoundUser(slow)
	r.False(bound)

	// When it sends setup again
	err := f.presence.Setup(ctx, slow, "alice", "alice")

	// Then it gets a client error, not an internal one
	r.ErrorIs(err, service.ErrForbidden)
}

func TestPresence_JoinRequiresMembership(t *testing.T) {
	r := require.New(t)
	room := newChatRoom(t)
	ctx := context.Background()
	testutil.CreateUser(t, room.f.db, "mallory", "Mallory")
	mallory := realtime.NewClient(nil, 8, 0)

	// Unbound connections cannot join anything.
	r.ErrorIs(room.f.presence.Join(ctx, mallory, room.conv.ID), service.ErrForbidden)

	r.NoError(room.f.presence.Setup(ctx, mallory, "mallory", "mallory"))
	r.ErrorIs(room.f.presence.Join(ctx, mallory, room.conv.ID), service.ErrForbidden)
	r.ErrorIs(room.f.presence.Join(ctx, mallory, room.conv.ID+99), service.ErrNotFound)
	r.False(room.f.hub.Joined(mallory, realtime.ConversationRoom(room.conv.ID)))

	// And therefore never sees the conversation's traffic.
	_, err := room.f.presence.RelayMessage(ctx, room.alice, "alice", room.conv.ID, service.MessageInput{Text: "private"})
	r.NoError(err)
	r.Equal([]string{realtime.EventConnected}, events(frames(t, mallory)))
}

func TestPresence_TypingNeverReachesSender(t *testing.T) {
	r := require.New(t)
	room := newChatRoom(t)
	ctx := context.Background()

	// Given a second tab of bob in the same room
	bobTab := realtime.NewClient(nil, 8, 0)
	r.NoError(room.f.presence.Setup(ctx, bobTab, "bob", "bob"))
	r.NoError(room.f.presence.Join(ctx, bobTab, room.conv.ID))
	frames(t, bobTab)

	// When
	r.NoError(room.f.presence.RelayTyping(ctx, room.alice, room.conv.ID, true))
	r.NoError(room.f.presence.RelayTyping(ctx, room.alice, room.conv.ID, false))

	// Then
	r.Empty(frames(t, room.alice))
	for _, c := range []*realtime.Client{room.bob, bobTab} {
		got := frames(t, c)
		r.Equal([]string{realtime.EventTyping, realtime.EventStopTyping}, events(got))
		var p service.TypingPayload
		r.NoError(json.Unmarshal(got[0].Data, &p))
		r.Equal(service.TypingPayload{ConversationID: room.conv.ID, UserID: "alice"}, p)
	}
}

func TestPresence_TypingRequiresJoin(t *testing.T) {
	r := require.New(t)
	room := newChatRoom(t)
	ctx := context.Background()
	lurker := realtime.NewClient(nil, 8, 0)
	r.NoError(room.f.presence.Setup(ctx, lurker, "alice", "alice"))

	r.ErrorIs(room.f.presence.RelayTyping(ctx, lurker, room.conv.ID, true), service.ErrForbidden)
	r.Empty(frames(t, room.bob))
}

func TestPresence_MessageReachesSenderOnce(t *testing.T) {
	r := require.New(t)
	room := newChatRoom(t)
	ctx := context.Background()

	// Given a sender connection that never joined the room
	sender := realtime.NewClient(nil, 8, 0)
	r.NoError(room.f.presence.Setup(ctx, sender, "alice", "alice"))
	frames(t, sender)

	// When
	msg, err := room.f.presence.RelayMessage(ctx, sender, "alice", room.conv.ID, service.MessageInput{Text: "on my way"})
	r.NoError(err)

	// Then
	for _, c := range []*realtime.Client{sender, room.alice, room.bob} {
		got := frames(t, c)
		r.Len(got, 1)
		r.Equal(realtime.EventMessageReceived, got[0].Event)
		var p service.MessagePayload
		r.NoError(json.Unmarshal(got[0].Data, &p))
		r.Equal(msg.ID, p.ID)
		r.Equal("alice", p.SenderID)
	}

	// And a joined sender also gets it exactly once.
	_, err = room.f.presence.RelayMessage(ctx, room.bob, "bob", room.conv.ID, service.MessageInput{Text: "see you"})
	r.NoError(err)
	r.Len(frames(t, room.bob), 1)
}

func TestPresence_MessagesObservedInPersistenceOrder(t *testing.T) {
	r := require.New(t)
	room := newChatRoom(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender, uid := room.alice, "alice"
			if i%2 == 1 {
				sender, uid = room.bob, "bob"
			}
			_, _ = room.f.presence.RelayMessage(ctx, sender, uid, room.conv.ID, service.MessageInput{Text: "ping"})
		}(i)
	}
	wg.Wait()

	stored, err := room.f.convs.ListMessages(ctx, room.conv.ID, "alice", 0, 50)
	r.NoError(err)
	r.Len(stored, 10)
	for _, c := range []*realtime.Client{room.alice, room.bob} {
		got := frames(t, c)
		r.Len(got, 10)
		for i, f := range got {
			var p service.MessagePayload
			r.NoError(json.Unmarshal(f.Data, &p))
			r.Equal(stored[i].ID, p.ID)
		}
	}
}

func TestPresence_DisconnectStopsDelivery(t *testing.T) {
	r := require.New(t)
	room := newChatRoom(t)
	ctx := context.Background()

	room.f.presence.Disconnect(room.bob)
	room.f.presence.Disconnect(room.bob)

	_, err := room.f.presence.RelayMessage(ctx, room.alice, "alice", room.conv.ID, service.MessageInput{Text: "still there?"})
	r.NoError(err)
	r.Empty(frames(t, room.bob))
	r.Len(frames(t, room.alice), 1)
	r.Equal(1, room.f.hub.Stats().Connections)
}
