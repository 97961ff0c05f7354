package service_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/shinyyama/localaid-backend/internal/realtime"
	"github.com/shinyyama/localaid-backend/internal/repository"
	"github.com/shinyyama/localaid-backend/internal/service"
	"github.com/shinyyama/localaid-backend/internal/testutil"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	hub      *realtime.Hub
	convRepo repository.ConversationRepository
	postRepo repository.PostRepository
	convs    service.ConversationService
	presence service.PresenceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := realtime.NewHub()
	go hub.Run(ctx)

	convRepo := repository.NewConversationRepository(gdb)
	convs := service.NewConversationService(convRepo, repository.NewUserRepository(gdb))
	return &fixture{
		db:       gdb,
		hub:      hub,
		convRepo: convRepo,
		postRepo: repository.NewPostRepository(gdb),
		convs:    convs,
		presence: service.NewPresenceService(hub, convs),
	}
}

func frames(t *testing.T, c *realtime.Client) []realtime.Frame {
	t.Helper()
	var out []realtime.Frame
	for {
		select {
		case raw, ok := <-c.Outbound():
			if !ok {
				return out
			}
			f, err := realtime.Decode(raw)
			if err != nil {
				t.Fatalf("decode frame: %v", err)
			}
			out = append(out, f)
		default:
			return out
		}
	}
}

func events(fs []realtime.Frame) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Event)
	}
	return out
}

func newBoundClient(t *testing.T, f *fixture, uid string) *realtime.Client {
	t.Helper()
	c := realtime.NewClient(nil, 16, 0)
	if err := f.presence.Setup(context.Background(), c, uid, uid); err != nil {
		t.Fatalf("setup %s: %v", uid, err)
	}
	frames(t, c)
	return c
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
