package organization

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, org *Organization) error
	FindAll(ctx context.Context) ([]Organization, error)
	FindByID(ctx context.Context, id uint) (*Organization, error)
	FindByName(ctx context.Context, name string) (*Organization, error)
	Update(ctx context.Context, org *Organization) error
	// Delete removes the organization and clears org_id on its users in a
	// single transaction. Import records keep their denormalized org name.
	Delete(ctx context.Context, id uint) error
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(ctx context.Context, org *Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Organization, error) {
	var orgs []Organization
	err := r.db.WithContext(ctx).Order("name ASC").Find(&orgs).Error
	return orgs, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Organization, error) {
	var org Organization
	err := r.db.WithContext(ctx).First(&org, id).Error
	return &org, err
}

func (r *repository) FindByName(ctx context.Context, name string) (*Organization, error) {
	var org Organization
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&org).Error
	return &org, err
}

func (r *repository) Update(ctx context.Context, org *Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("users").Where("org_id = ?", id).
			Update("org_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&Organization{}, id).Error
	})
}
