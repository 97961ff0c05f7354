package service

//go:generate mockgen -source=notification_service.go -destination=mocks/mock_notification_service.go -package=mocks

import (
	"context"
	"log"

	"github.com/shinyyama/localaid-backend/internal/realtime"
)

// Publisher is the part of the connection registry used for fan-out.
type Publisher interface {
	Publish(room realtime.RoomID, payload []byte, except, include *realtime.Client) int
}

// KarmaNotifier is what the fulfillment workflow needs from the dispatcher.
type KarmaNotifier interface {
	NotifyKarma(ctx context.Context, uid string, n KarmaNotification)
}

type NotificationService interface {
	KarmaNotifier
	NotifyUser(ctx context.Context, uid, event string, data any) int
}

type notificationService struct {
	pub Publisher
}

func NewNotificationService(pub Publisher) NotificationService {
	return &notificationService{pub: pub}
}

// NotifyUser is best-effort: it reaches the user's live connections and nothing
// is stored, so a user with no connection simply misses the event.
func (s *notificationService) NotifyUser(ctx context.Context, uid, event string, data any) int {
	if uid == "" || event == "" {
		return 0
	}
	payload, err := realtime.Encode(event, data)
	if err != nil {
		log.Printf("[notify] uid=%s event=%s encode err=%v", uid, event, err)
		return 0
	}
	n := s.pub.Publish(realtime.UserRoom(uid), payload, nil, nil)
	if n == 0 {
		log.Printf("[notify] uid=%s event=%s no live connection", uid, event)
	}
	return n
}

func (s *notificationService) NotifyKarma(ctx context.Context, uid string, n KarmaNotification) {
	s.NotifyUser(ctx, uid, realtime.EventNotification, n)
}
