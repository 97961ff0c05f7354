package service

import (
	"time"

	"github.com/shinyyama/localaid-backend/internal/model"
)

// MessagePayload is the wire shape of a message on both the socket and REST.
type MessagePayload struct {
	ID             uint64    `json:"id"`
	ConversationID uint64    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Text           string    `json:"text"`
	ImageURL       *string   `json:"imageUrl"`
	CreatedAt      time.Time `json:"createdAt"`
}

func ToMessagePayload(m *model.Message) MessagePayload {
	return MessagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderUID,
		Text:           m.Text,
		ImageURL:       m.ImageURL,
		CreatedAt:      m.CreatedAt,
	}
}

type TypingPayload struct {
	ConversationID uint64 `json:"conversationId"`
	UserID         string `json:"userId"`
}

type KarmaNotification struct {
	NewKarma int64  `json:"newKarma"`
	Message  string `json:"message"`
	PostID   uint64 `json:"postId"`
}
