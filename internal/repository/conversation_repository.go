package repository

import (
	"context"

	"github.com/shinyyama/localaid-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepository interface {
	FindOrCreate(ctx context.Context, uidA, uidB string) (*model.Conversation, error)
	FindByID(ctx context.Context, id uint64) (*model.Conversation, error)
	FindByPair(ctx context.Context, uidA, uidB string) (*model.Conversation, error)
	FindByUser(ctx context.Context, uid string) ([]model.Conversation, error)
	CreateMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, convID, beforeID uint64, limit int) ([]model.Message, error)
	FindMessagesByIDs(ctx context.Context, ids []uint64) ([]model.Message, error)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindOrCreate relies on the unique (member_a, member_b) index: the insert is a no-op
// when the pair already exists and the row is always read back, so concurrent callers
// observe the same conversation.
func (r *conversationRepository) FindOrCreate(ctx context.Context, uidA, uidB string) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	a, b := model.SortedPair(uidA, uidB)
	cv := model.Conversation{MemberA: a, MemberB: b}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_a"}, {Name: "member_b"}},
			DoNothing: true,
		}).
		Create(&cv).Error; err != nil {
		return nil, err
	}
	return r.FindByPair(ctx, a, b)
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).First(&cv, id).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByPair(ctx context.Context, uidA, uidB string) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	a, b := model.SortedPair(uidA, uidB)
	var cv model.Conversation
	if err := r.db.WithContext(ctx).
		Where("member_a = ? AND member_b = ?", a, b).
		First(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByUser(ctx context.Context, uid string) ([]model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Conversation
	if err := r.db.WithContext(ctx).
		Where("member_a = ? OR member_b = ?", uid, uid).
		Order("COALESCE(latest_message_at, created_at) DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// CreateMessage inserts msg and moves the conversation's latest pointer forward in one transaction.
func (r *conversationRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ? AND (latest_message_id IS NULL OR latest_message_id < ?)", msg.ConversationID, msg.ID).
			Updates(map[string]interface{}{
				"latest_message_id": msg.ID,
				"latest_message_at": msg.CreatedAt,
			}).Error
	})
}

// ListMessages returns up to limit messages older than beforeID (0 = newest), oldest first.
func (r *conversationRepository) ListMessages(ctx context.Context, convID, beforeID uint64, limit int) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Where("conversation_id = ?", convID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var msgs []model.Message
	if err := q.Order("id DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *conversationRepository) FindMessagesByIDs(ctx context.Context, ids []uint64) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
