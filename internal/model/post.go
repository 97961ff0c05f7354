package model

import "time"

type PostType string

const (
	PostTypeRequest PostType = "request"
	PostTypeOffer   PostType = "offer"
)

type PostStatus string

const (
	PostStatusOpen      PostStatus = "open"
	PostStatusFulfilled PostStatus = "fulfilled"
)

type Post struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	OwnerUID    string     `gorm:"column:owner_uid;size:128;not null;index"`
	Type        PostType   `gorm:"column:type;size:16;not null;index"`
	Title       string     `gorm:"size:120;not null"`
	Description string     `gorm:"type:text;not null"`
	Category    string     `gorm:"size:64"`
	Latitude    *float64   `gorm:"column:latitude"`
	Longitude   *float64   `gorm:"column:longitude"`
	ImageURL    *string    `gorm:"column:image_url;size:512"`
	Status      PostStatus `gorm:"column:status;size:16;not null;default:'open';index"`
	FulfilledBy *string    `gorm:"column:fulfilled_by;size:128;index"`
	FulfilledAt *time.Time `gorm:"column:fulfilled_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (Post) TableName() string {
	return "posts"
}
