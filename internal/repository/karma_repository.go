package repository

import (
	"context"

	"github.com/shinyyama/localaid-backend/internal/model"
	"gorm.io/gorm"
)

// KarmaRepository reads the award ledger written by PostRepository.Fulfill.
type KarmaRepository interface {
	Balance(ctx context.Context, uid string) (int64, error)
	ListAwards(ctx context.Context, helperUID string, limit int) ([]model.KarmaAward, error)
	SumAwards(ctx context.Context, helperUID string) (int64, error)
}

type karmaRepository struct {
	db *gorm.DB
}

func NewKarmaRepository(db *gorm.DB) KarmaRepository {
	return &karmaRepository{db: db}
}

func (r *karmaRepository) Balance(ctx context.Context, uid string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var u model.User
	if err := r.db.WithContext(ctx).
		Select("karma_points").
		Where("uid = ?", uid).
		First(&u).Error; err != nil {
		return 0, err
	}
	return u.KarmaPoints, nil
}

func (r *karmaRepository) ListAwards(ctx context.Context, helperUID string, limit int) ([]model.KarmaAward, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var awards []model.KarmaAward
	if err := r.db.WithContext(ctx).
		Where("helper_uid = ?", helperUID).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&awards).Error; err != nil {
		return nil, err
	}
	return awards, nil
}

func (r *karmaRepository) SumAwards(ctx context.Context, helperUID string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.KarmaAward{}).
		Where("helper_uid = ?", helperUID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
