package model

import "time"

// KarmaAward records the single award granted when a post is fulfilled.
// The unique post_id makes a second award for the same post impossible.
type KarmaAward struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	PostID    uint64    `gorm:"column:post_id;not null;uniqueIndex:uk_karma_awards_post"`
	OwnerUID  string    `gorm:"column:owner_uid;size:128;not null"`
	HelperUID string    `gorm:"column:helper_uid;size:128;not null;index"`
	Points    int64     `gorm:"column:points;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (KarmaAward) TableName() string {
	return "karma_awards"
}
