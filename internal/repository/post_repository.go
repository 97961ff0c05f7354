package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shinyyama/localaid-backend/internal/model"
	"gorm.io/gorm"
)

type PostFilter struct {
	Type   model.PostType
	Status model.PostStatus
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uint64) (*model.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]model.Post, int64, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]model.Post, error)
	DeleteOpen(ctx context.Context, id uint64, ownerUID string) error
	Fulfill(ctx context.Context, postID uint64, ownerUID, helperUID string, points int64) (*model.Post, int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var post model.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]model.Post, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		posts []model.Post
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Post{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) ListByOwner(ctx context.Context, ownerUID string) ([]model.Post, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Post
	if err := r.db.WithContext(ctx).
		Where("owner_uid = ?", ownerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteOpen removes an open post owned by ownerUID. Fulfilled posts carry a karma award and stay.
func (r *postRepository) DeleteOpen(ctx context.Context, id uint64, ownerUID string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_uid = ? AND status = ?", id, ownerUID, model.PostStatusOpen).
		Delete(&model.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}

// Fulfill closes an open post and credits the helper in a single transaction.
// The status guard on the UPDATE makes exactly one of several concurrent calls win;
// the others get ErrConditionFailed and nothing is written.
func (r *postRepository) Fulfill(ctx context.Context, postID uint64, ownerUID, helperUID string, points int64) (*model.Post, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		post   model.Post
		helper model.User
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&model.Post{}).
			Where("id = ? AND owner_uid = ? AND status = ?", postID, ownerUID, model.PostStatusOpen).
			Updates(map[string]interface{}{
				"status":       model.PostStatusFulfilled,
				"fulfilled_by": helperUID,
				"fulfilled_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConditionFailed
		}
		award := model.KarmaAward{PostID: postID, OwnerUID: ownerUID, HelperUID: helperUID, Points: points}
		if err := tx.Create(&award).Error; err != nil {
			return err
		}
		res = tx.Model(&model.User{}).
			Where("uid = ?", helperUID).
			Update("karma_points", gorm.Expr("karma_points + ?", points))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("uid = ?", helperUID).First(&helper).Error; err != nil {
			return err
		}
		return tx.First(&post, postID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, 0, ErrConditionFailed
		}
		return nil, 0, err
	}
	return &post, helper.KarmaPoints, nil
}
