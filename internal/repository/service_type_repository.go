package repository

import (
	"context"

	"gorm.io/gorm"

	"autoshop-server/internal/models"
)

type ServiceTypeRepository interface {
	// Active service types among ids, in catalogue order.
	FindActiveByIDs(ctx context.Context, ids []string) ([]models.ServiceType, error)
}

type GormServiceTypeRepository struct {
	db *gorm.DB
}

func NewGormServiceTypeRepository(db *gorm.DB) *GormServiceTypeRepository {
	return &GormServiceTypeRepository{db: db}
}

func (r *GormServiceTypeRepository) FindActiveByIDs(ctx context.Context, ids []string) ([]models.ServiceType, error) {
	var out []models.ServiceType
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Order("name ASC").
		Find(&out).Error
	return out, err
}
