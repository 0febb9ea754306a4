package directory

import (
	"context"

	"gorm.io/gorm"

	"github.com/ledgerly/ledgerly-backend/internal/auth"
)

type Repository interface {
	FindAll(ctx context.Context) ([]auth.User, error)
	FindByOrg(ctx context.Context, orgID uint) ([]auth.User, error)
	FindByID(ctx context.Context, id uint) (*auth.User, error)
	Update(ctx context.Context, user *auth.User) error
	Delete(ctx context.Context, id uint) error
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) FindAll(ctx context.Context) ([]auth.User, error) {
	var users []auth.User
	err := r.db.WithContext(ctx).
		Preload("Role").Preload("Org").
		Order("full_name ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) FindByOrg(ctx context.Context, orgID uint) ([]auth.User, error) {
	var users []auth.User
	err := r.db.WithContext(ctx).
		Preload("Role").Preload("Org").
		Where("org_id = ?", orgID).
		Order("full_name ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*auth.User, error) {
	var user auth.User
	err := r.db.WithContext(ctx).
		Preload("Role").Preload("Org").
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *auth.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&auth.User{}, id).Error
}
