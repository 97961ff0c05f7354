package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/reqctx"
	"github.com/shinyyama/localaid-backend/internal/repository"
	"gorm.io/gorm"
)

// KarmaAward is credited to the helper once per fulfilled post.
const KarmaAward int64 = 10

type FulfillResult struct {
	Post     *model.Post
	NewKarma int64
}

type FulfillmentService interface {
	Fulfill(ctx context.Context, actorUID string, postID uint64, helperUID string) (*FulfillResult, error)
}

type fulfillmentService struct {
	posts    repository.PostRepository
	convs    ConversationService
	notifier KarmaNotifier
}

func NewFulfillmentService(posts repository.PostRepository, convs ConversationService, notifier KarmaNotifier) FulfillmentService {
	return &fulfillmentService{posts: posts, convs: convs, notifier: notifier}
}

// Fulfill moves an open post to fulfilled and credits the helper. The checks up
// front give precise errors; the conditional update inside the repository
// transaction is what makes concurrent calls award at most once.
func (s *fulfillmentService) Fulfill(ctx context.Context, actorUID string, postID uint64, helperUID string) (*FulfillResult, error) {
	rid := reqctx.RID(ctx)
	helperUID = strings.TrimSpace(helperUID)

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.OwnerUID != actorUID {
		return nil, ErrNotOwner
	}
	if post.Status != model.PostStatusOpen {
		return nil, ErrAlreadyFulfilled
	}
	if helperUID == "" || helperUID == post.OwnerUID {
		return nil, ErrInvalidHelper
	}
	ok, err := s.convs.HasConversation(ctx, post.OwnerUID, helperUID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidHelper
	}

	updated, karma, err := s.posts.Fulfill(ctx, postID, post.OwnerUID, helperUID, KarmaAward)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConditionFailed):
			log.Printf("[fulfill] rid=%s post=%d helper=%s stage=lost_race", rid, postID, helperUID)
			return nil, ErrAlreadyFulfilled
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrInvalidHelper
		}
		log.Printf("[fulfill] rid=%s post=%d helper=%s stage=tx_fail err=%v", rid, postID, helperUID, err)
		return nil, fmt.Errorf("fulfill post %d: %w", postID, err)
	}
	log.Printf("[fulfill] rid=%s post=%d helper=%s stage=done karma=%d", rid, postID, helperUID, karma)

	if s.notifier != nil {
		s.notifier.NotifyKarma(ctx, helperUID, KarmaNotification{
			NewKarma: karma,
			Message:  fmt.Sprintf("You earned %d karma for helping with %q!", KarmaAward, updated.Title),
			PostID:   postID,
		})
	}
	return &FulfillResult{Post: updated, NewKarma: karma}, nil
}
