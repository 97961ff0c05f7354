package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/service"
	"github.com/shinyyama/localaid-backend/internal/service/mocks"
	"github.com/shinyyama/localaid-backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fulfillCase struct {
	f        *fixture
	notifier *mocks.MockKarmaNotifier
	svc      service.FulfillmentService
	post     *model.Post
}

// newFulfillCase gives alice an open request and a conversation with bob.
func newFulfillCase(t *testing.T) *fulfillCase {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := newFixture(t)
	testutil.CreateUser(t, f.db, "alice", "Alice")
	testutil.CreateUser(t, f.db, "bob", "Bob")
	testutil.CreateUser(t, f.db, "carol", "Carol")
	_, err := f.convs.FindOrCreate(context.Background(), "bob", "alice")
	require.NoError(t, err)

	notifier := mocks.NewMockKarmaNotifier(ctrl)
	return &fulfillCase{
		f:        f,
		notifier: notifier,
		svc:      service.NewFulfillmentService(f.postRepo, f.convs, notifier),
		post:     testutil.CreatePost(t, f.db, "alice", "Need a ladder"),
	}
}

func TestFulfillment_AwardsHelperAndNotifies(t *testing.T) {
	r := require.New(t)
	fc := newFulfillCase(t)
	ctx := context.Background()

	// Given
	fc.notifier.EXPECT().
		NotifyKarma(gomock.Any(), "bob", gomock.Any()).
		Do(func(_ context.Context, _ string, n service.KarmaNotification) {
			r.Equal(int64(10), n.NewKarma)
			r.Equal(fc.post.ID, n.PostID)
			r.Contains(n.Message, "Need a ladder")
		}).
		Times(1)

	// When
	res, err := fc.svc.Fulfill(ctx, "alice", fc.post.ID, "bob")

	// Then
	r.NoError(err)
	r.Equal(model.PostStatusFulfilled, res.Post.Status)
	r.Equal("bob", *res.Post.FulfilledBy)
	r.NotNil(res.Post.FulfilledAt)
	r.Equal(service.KarmaAward, res.NewKarma)
	r.Equal(int64(10), testutil.Karma(t, fc.f.db, "bob"))
	r.Zero(testutil.Karma(t, fc.f.db, "alice"))
}

func TestFulfillment_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		actor   string
		postID  func(p *model.Post) uint64
		helper  string
		wantErr error
	}{
		{"unknown post", "alice", func(p *model.Post) uint64 { return p.ID + 1000 }, "bob", service.ErrNotFound},
		{"not the owner", "bob", func(p *model.Post) uint64 { return p.ID }, "bob", service.ErrNotOwner},
		{"helper without conversation", "alice", func(p *model.Post) uint64 { return p.ID }, "carol", service.ErrInvalidHelper},
		{"owner as helper", "alice", func(p *model.Post) uint64 { return p.ID }, "alice", service.ErrInvalidHelper},
		{"blank helper", "alice", func(p *model.Post) uint64 { return p.ID }, "  ", service.ErrInvalidHelper},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)
			fc := newFulfillCase(t)
			fc.notifier.EXPECT().NotifyKarma(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			_, err := fc.svc.Fulfill(context.Background(), tt.actor, tt.postID(fc.post), tt.helper)

			r.ErrorIs(err, tt.wantErr)
			var post model.Post
			r.NoError(fc.f.db.First(&post, fc.post.ID).Error)
			r.Equal(model.PostStatusOpen, post.Status)
			r.Nil(post.FulfilledBy)
			r.Zero(testutil.Karma(t, fc.f.db, "bob"))
			r.Zero(testutil.Karma(t, fc.f.db, "carol"))
		})
	}
}

func TestFulfillment_SecondCallIsAlreadyFulfilled(t *testing.T) {
	r := require.New(t)
	fc := newFulfillCase(t)
	ctx := context.Background()
	fc.notifier.EXPECT().NotifyKarma(gomock.Any(), "bob", gomock.Any()).Times(1)

	_, err := fc.svc.Fulfill(ctx, "alice", fc.post.ID, "bob")
	r.NoError(err)
	_, err = fc.svc.Fulfill(ctx, "alice", fc.post.ID, "bob")
	r.ErrorIs(err, service.ErrAlreadyFulfilled)
	r.Equal(int64(10), testutil.Karma(t, fc.f.db, "bob"))
}

func TestFulfillment_ConcurrentCallsAwardOnce(t *testing.T) {
	r := require.New(t)
	fc := newFulfillCase(t)
	ctx := context.Background()
	fc.notifier.EXPECT().NotifyKarma(gomock.Any(), "bob", gomock.Any()).Times(1)

	const callers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		errs []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fc.svc.Fulfill(ctx, "alice", fc.post.ID, "bob")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	r.Equal(1, wins)
	r.Len(errs, callers-1)
	for _, err := range errs {
		r.True(errors.Is(err, service.ErrAlreadyFulfilled), "unexpected error: %v", err)
	}
	r.Equal(int64(10), testutil.Karma(t, fc.f.db, "bob"))

	var awards int64
	r.NoError(fc.f.db.Model(&model.KarmaAward{}).Where("post_id = ?", fc.post.ID).Count(&awards).Error)
	r.Equal(int64(1), awards)
}

func TestFulfillment_NotifiesLiveHelperConnection(t *testing.T) {
	r := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "alice", "Alice")
	testutil.CreateUser(t, f.db, "bob", "Bob")
	_, err := f.convs.FindOrCreate(ctx, "alice", "bob")
	r.NoError(err)
	post := testutil.CreatePost(t, f.db, "alice", "Walk the dog")

	bob := newBoundClient(t, f, "bob")
	svc := service.NewFulfillmentService(f.postRepo, f.convs, service.NewNotificationService(f.hub))

	_, err = svc.Fulfill(ctx, "alice", post.ID, "bob")
	r.NoError(err)

	got := frames(t, bob)
	r.Len(got, 1)
	r.Equal("notification", got[0].Event)
	r.JSONEq(`{"newKarma":10,"message":"You earned 10 karma for helping with \"Walk the dog\"!","postId":`+itoa(post.ID)+`}`, string(got[0].Data))
}
