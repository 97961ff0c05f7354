package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/repository"
	"gorm.io/gorm"
)

type PostInput struct {
	Type        model.PostType
	Title       string
	Description string
	Category    string
	Latitude    *float64
	Longitude   *float64
	ImageURL    *string
}

type PostService interface {
	Create(ctx context.Context, ownerUID string, in PostInput) (*model.Post, error)
	Get(ctx context.Context, id uint64) (*model.Post, error)
	List(ctx context.Context, filter repository.PostFilter, limit, offset int) ([]model.Post, int64, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]model.Post, error)
	Delete(ctx context.Context, id uint64, ownerUID string) error
}

type postService struct {
	repo repository.PostRepository
}

func NewPostService(repo repository.PostRepository) PostService {
	return &postService{repo: repo}
}

func (s *postService) Create(ctx context.Context, ownerUID string, in PostInput) (*model.Post, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if ownerUID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if in.Type != model.PostTypeRequest && in.Type != model.PostTypeOffer {
		return nil, fmt.Errorf("%w: type must be request or offer", ErrInvalidInput)
	}
	if title == "" || len(title) > 120 {
		return nil, fmt.Errorf("%w: invalid title", ErrInvalidInput)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: invalid description", ErrInvalidInput)
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude go together", ErrInvalidInput)
	}
	if in.ImageURL != nil && strings.HasPrefix(strings.TrimSpace(*in.ImageURL), "data:") {
		return nil, fmt.Errorf("%w: imageUrl must be a URL, not data URI", ErrInvalidInput)
	}

	post := &model.Post{
		OwnerUID:    ownerUID,
		Type:        in.Type,
		Title:       title,
		Description: description,
		Category:    strings.TrimSpace(in.Category),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		ImageURL:    in.ImageURL,
		Status:      model.PostStatusOpen,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, id uint64) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, filter repository.PostFilter, limit, offset int) ([]model.Post, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, filter, limit, offset)
}

func (s *postService) ListByOwner(ctx context.Context, ownerUID string) ([]model.Post, error) {
	return s.repo.ListByOwner(ctx, ownerUID)
}

// Delete removes an open post. Fulfilled posts are kept as the record of an award.
func (s *postService) Delete(ctx context.Context, id uint64, ownerUID string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.OwnerUID != ownerUID {
		return ErrNotOwner
	}
	if post.Status != model.PostStatusOpen {
		return ErrAlreadyFulfilled
	}
	if err := s.repo.DeleteOpen(ctx, id, ownerUID); err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return ErrAlreadyFulfilled
		}
		return err
	}
	return nil
}
