package model

import "time"

type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	ConversationID uint64    `gorm:"column:conversation_id;not null;index:idx_messages_conversation"`
	SenderUID      string    `gorm:"column:sender_uid;size:128;not null;index"`
	Text           string    `gorm:"column:text;type:text"`
	ImageURL       *string   `gorm:"column:image_url;size:512"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
