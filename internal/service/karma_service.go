package service

import (
	"context"
	"errors"

	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/repository"
	"gorm.io/gorm"
)

const (
	defaultAwardLimit = 20
	maxAwardLimit     = 100
)

// KarmaSummary is a user's balance with the most recent awards that built it.
type KarmaSummary struct {
	Balance int64
	Awarded int64
	Awards  []model.KarmaAward
}

type KarmaService interface {
	Summary(ctx context.Context, uid string, limit int) (*KarmaSummary, error)
}

type karmaService struct {
	repo repository.KarmaRepository
}

func NewKarmaService(repo repository.KarmaRepository) KarmaService {
	return &karmaService{repo: repo}
}

func (s *karmaService) Summary(ctx context.Context, uid string, limit int) (*KarmaSummary, error) {
	if limit <= 0 {
		limit = defaultAwardLimit
	}
	if limit > maxAwardLimit {
		limit = maxAwardLimit
	}
	balance, err := s.repo.Balance(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	awarded, err := s.repo.SumAwards(ctx, uid)
	if err != nil {
		return nil, err
	}
	awards, err := s.repo.ListAwards(ctx, uid, limit)
	if err != nil {
		return nil, err
	}
	return &KarmaSummary{Balance: balance, Awarded: awarded, Awards: awards}, nil
}
