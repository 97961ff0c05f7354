package model

import "time"

// Conversation is the single channel between two users. MemberA < MemberB always,
// so the pair index doubles as the uniqueness guarantee for an unordered pair.
type Conversation struct {
	ID              uint64     `gorm:"primaryKey;autoIncrement"`
	MemberA         string     `gorm:"column:member_a;size:128;not null;uniqueIndex:uk_conversations_pair,priority:1"`
	MemberB         string     `gorm:"column:member_b;size:128;not null;uniqueIndex:uk_conversations_pair,priority:2;index:idx_conversations_member_b"`
	LatestMessageID *uint64    `gorm:"column:latest_message_id"`
	LatestMessageAt *time.Time `gorm:"column:latest_message_at;index:idx_conversations_latest"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// HasMember reports whether uid is one of the two members.
func (c *Conversation) HasMember(uid string) bool {
	return uid != "" && (c.MemberA == uid || c.MemberB == uid)
}

// Counterpart returns the member that is not uid.
func (c *Conversation) Counterpart(uid string) string {
	if c.MemberA == uid {
		return c.MemberB
	}
	return c.MemberA
}

// SortedPair normalizes an unordered pair into the stored (member_a, member_b) order.
func SortedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
