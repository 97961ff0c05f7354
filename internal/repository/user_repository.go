package repository

import (
	"context"
	"errors"

	"github.com/shinyyama/localaid-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Ensure(ctx context.Context, uid, displayName string) (*model.User, error)
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	FindByUIDs(ctx context.Context, uids []string) ([]model.User, error)
	UpdateProfile(ctx context.Context, uid string, displayName, avatarURL *string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Ensure returns the user row for uid, creating it from the auth claims on first sight.
// Concurrent first requests for the same uid all read back the single inserted row.
func (r *userRepository) Ensure(ctx context.Context, uid, displayName string) (*model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	u, err := r.FindByUID(ctx, uid)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoNothing: true,
		}).
		Create(&model.User{UID: uid, DisplayName: displayName}).Error; err != nil {
		return nil, err
	}
	return r.FindByUID(ctx, uid)
}

func (r *userRepository) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var u model.User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByUIDs(ctx context.Context, uids []string) ([]model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if len(uids) == 0 {
		return nil, nil
	}
	var list []model.User
	if err := r.db.WithContext(ctx).Where("uid IN ?", uids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, uid string, displayName, avatarURL *string) (*model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	updates := map[string]interface{}{}
	if displayName != nil {
		updates["display_name"] = *displayName
	}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&model.User{}).Where("uid = ?", uid).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByUID(ctx, uid)
}
