package service_test

import (
	"context"
	"testing"

	"github.com/shinyyama/localaid-backend/internal/realtime"
	"github.com/shinyyama/localaid-backend/internal/service"
	"github.com/shinyyama/localaid-backend/internal/service/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNotificationService_PublishesToUserRoom(t *testing.T) {
	r := require.New(t)
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	svc := service.NewNotificationService(pub)

	pub.EXPECT().
		Publish(realtime.UserRoom("bob"), gomock.Any(), gomock.Nil(), gomock.Nil()).
		DoAndReturn(func(_ realtime.RoomID, payload []byte, _, _ *realtime.Client) int {
			r.JSONEq(`{"event":"notification","data":{"newKarma":20,"message":"thanks","postId":3}}`, string(payload))
			return 2
		})

	svc.NotifyKarma(context.Background(), "bob", service.KarmaNotification{NewKarma: 20, Message: "thanks", PostID: 3})
}

func TestNotificationService_NoConnectionsIsNoop(t *testing.T) {
	r := require.New(t)
	f := newFixture(t)
	svc := service.NewNotificationService(f.hub)

	n := svc.NotifyUser(context.Background(), "offline", realtime.EventNotification, service.KarmaNotification{NewKarma: 10})

	r.Zero(n)
	r.Equal(realtime.Stats{}, f.hub.Stats())
}

func TestNotificationService_IgnoresBlankTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	svc := service.NewNotificationService(pub)
	require.Zero(t, svc.NotifyUser(context.Background(), "", realtime.EventNotification, nil))
}

func TestNotificationService_ReachesEveryTab(t *testing.T) {
	r := require.New(t)
	f := newFixture(t)
	tab1 := newBoundClient(t, f, "bob")
	tab2 := newBoundClient(t, f, "bob")
	other := newBoundClient(t, f, "alice")
	svc := service.NewNotificationService(f.hub)

	r.Equal(2, svc.NotifyUser(context.Background(), "bob", realtime.EventNotification, map[string]int{"newKarma": 10}))
	r.Len(frames(t, tab1), 1)
	r.Len(frames(t, tab2), 1)
	r.Empty(frames(t, other))
}
