package model

import "time"

type User struct {
	UID         string    `gorm:"column:uid;primaryKey;size:128"`
	DisplayName string    `gorm:"column:display_name;size:120;not null;default:''"`
	AvatarURL   *string   `gorm:"column:avatar_url;size:512"`
	KarmaPoints int64     `gorm:"column:karma_points;not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
