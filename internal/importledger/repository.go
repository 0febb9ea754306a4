package importledger

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, imp *Import) error
	FindByOrg(ctx context.Context, orgID uint) ([]Import, error)
	FindByID(ctx context.Context, id uint) (*Import, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, imp *Import) error {
	return r.db.WithContext(ctx).Create(imp).Error
}

// FindByOrg returns the org's import history, newest first.
func (r *gormRepository) FindByOrg(ctx context.Context, orgID uint) ([]Import, error) {
	var imports []Import
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("imported_on DESC, id DESC").
		Find(&imports).Error
	return imports, err
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Import, error) {
	var imp Import
	if err := r.db.WithContext(ctx).First(&imp, id).Error; err != nil {
		return nil, err
	}
	return &imp, nil
}
