package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/repository"
	"gorm.io/gorm"
)

const (
	defaultMessagePage = 50
	maxMessagePage     = 200
)

// ConversationSummary is one row of a user's inbox.
type ConversationSummary struct {
	Conversation  model.Conversation
	Counterpart   *model.User
	LatestMessage *model.Message
}

type MessageInput struct {
	Text     string
	ImageURL *string
}

type ConversationService interface {
	FindOrCreate(ctx context.Context, uid, otherUID string) (*model.Conversation, error)
	ListForUser(ctx context.Context, uid string) ([]ConversationSummary, error)
	Get(ctx context.Context, convID uint64, uid string) (*model.Conversation, error)
	ListMessages(ctx context.Context, convID uint64, uid string, beforeID uint64, limit int) ([]model.Message, error)
	AppendMessage(ctx context.Context, convID uint64, senderUID string, in MessageInput) (*model.Message, error)
	Partners(ctx context.Context, uid string) ([]model.User, error)
	HasConversation(ctx context.Context, uidA, uidB string) (bool, error)
}

type conversationService struct {
	convRepo repository.ConversationRepository
	userRepo repository.UserRepository
}

func NewConversationService(convRepo repository.ConversationRepository, userRepo repository.UserRepository) ConversationService {
	return &conversationService{convRepo: convRepo, userRepo: userRepo}
}

func (s *conversationService) FindOrCreate(ctx context.Context, uid, otherUID string) (*model.Conversation, error) {
	otherUID = strings.TrimSpace(otherUID)
	if uid == "" || otherUID == "" {
		return nil, fmt.Errorf("%w: both members are required", ErrInvalidInput)
	}
	if uid == otherUID {
		return nil, fmt.Errorf("%w: cannot chat with yourself", ErrInvalidInput)
	}
	if _, err := s.userRepo.FindByUID(ctx, otherUID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.convRepo.FindOrCreate(ctx, uid, otherUID)
}

// ListForUser returns the inbox newest first with one entry per counterpart.
func (s *conversationService) ListForUser(ctx context.Context, uid string) ([]ConversationSummary, error) {
	list, err := s.convRepo.FindByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	list = lo.UniqBy(list, func(cv model.Conversation) string { return cv.Counterpart(uid) })

	users, err := s.userRepo.FindByUIDs(ctx, lo.Map(list, func(cv model.Conversation, _ int) string {
		return cv.Counterpart(uid)
	}))
	if err != nil {
		return nil, err
	}
	userByUID := lo.KeyBy(users, func(u model.User) string { return u.UID })

	latestIDs := lo.FilterMap(list, func(cv model.Conversation, _ int) (uint64, bool) {
		if cv.LatestMessageID == nil {
			return 0, false
		}
		return *cv.LatestMessageID, true
	})
	msgs, err := s.convRepo.FindMessagesByIDs(ctx, latestIDs)
	if err != nil {
		return nil, err
	}
	msgByID := lo.KeyBy(msgs, func(m model.Message) uint64 { return m.ID })

	out := make([]ConversationSummary, 0, len(list))
	for _, cv := range list {
		sum := ConversationSummary{Conversation: cv}
		if u, ok := userByUID[cv.Counterpart(uid)]; ok {
			sum.Counterpart = &u
		}
		if cv.LatestMessageID != nil {
			if m, ok := msgByID[*cv.LatestMessageID]; ok {
				sum.LatestMessage = &m
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *conversationService) Get(ctx context.Context, convID uint64, uid string) (*model.Conversation, error) {
	cv, err := s.find(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !cv.HasMember(uid) {
		return nil, ErrForbidden
	}
	return cv, nil
}

func (s *conversationService) ListMessages(ctx context.Context, convID uint64, uid string, beforeID uint64, limit int) ([]model.Message, error) {
	if _, err := s.Get(ctx, convID, uid); err != nil {
		return nil, err
	}
	return s.convRepo.ListMessages(ctx, convID, beforeID, MessagePageSize(limit))
}

// MessagePageSize is the number of messages ListMessages returns for a requested limit.
func MessagePageSize(limit int) int {
	if limit <= 0 {
		return defaultMessagePage
	}
	if limit > maxMessagePage {
		return maxMessagePage
	}
	return limit
}

func (s *conversationService) AppendMessage(ctx context.Context, convID uint64, senderUID string, in MessageInput) (*model.Message, error) {
	text := strings.TrimSpace(in.Text)
	var image *string
	if in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) != "" {
		v := strings.TrimSpace(*in.ImageURL)
		image = &v
	}
	if text == "" && image == nil {
		return nil, fmt.Errorf("%w: text or imageUrl is required", ErrInvalidInput)
	}
	cv, err := s.find(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !cv.HasMember(senderUID) {
		return nil, ErrNotAMember
	}
	msg := &model.Message{
		ConversationID: convID,
		SenderUID:      senderUID,
		Text:           text,
		ImageURL:       image,
	}
	if err := s.convRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Partners lists everyone uid has a conversation with, most recent first.
func (s *conversationService) Partners(ctx context.Context, uid string) ([]model.User, error) {
	list, err := s.convRepo.FindByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	uids := lo.Uniq(lo.Map(list, func(cv model.Conversation, _ int) string { return cv.Counterpart(uid) }))
	users, err := s.userRepo.FindByUIDs(ctx, uids)
	if err != nil {
		return nil, err
	}
	userByUID := lo.KeyBy(users, func(u model.User) string { return u.UID })
	return lo.FilterMap(uids, func(id string, _ int) (model.User, bool) {
		u, ok := userByUID[id]
		return u, ok
	}), nil
}

func (s *conversationService) HasConversation(ctx context.Context, uidA, uidB string) (bool, error) {
	if uidA == "" || uidB == "" || uidA == uidB {
		return false, nil
	}
	_, err := s.convRepo.FindByPair(ctx, uidA, uidB)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *conversationService) find(ctx context.Context, convID uint64) (*model.Conversation, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cv, nil
}
