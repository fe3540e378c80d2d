package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"autoshop-server/internal/models"
)

type ModificationRepository interface {
	Create(ctx context.Context, modification *models.ServiceModification) error
	GetByID(ctx context.Context, id string) (*models.ServiceModification, error)
	Save(ctx context.Context, modification *models.ServiceModification) error
	ListByAppointment(ctx context.Context, appointmentID string) ([]models.ServiceModification, error)
	ListApprovedByAppointment(ctx context.Context, appointmentID string) ([]models.ServiceModification, error)

	CreateApproval(ctx context.Context, approval *models.CustomerApproval) error
	SaveApproval(ctx context.Context, approval *models.CustomerApproval) error
	// LatestPendingApproval returns nil when the appointment has none.
	LatestPendingApproval(ctx context.Context, appointmentID string) (*models.CustomerApproval, error)
	CountPendingApprovals(ctx context.Context, appointmentID string) (int64, error)
	ListApprovals(ctx context.Context, appointmentID string) ([]models.CustomerApproval, error)
}

type GormModificationRepository struct {
	db *gorm.DB
}

func NewGormModificationRepository(db *gorm.DB) *GormModificationRepository {
	return &GormModificationRepository{db: db}
}

func (r *GormModificationRepository) Create(ctx context.Context, modification *models.ServiceModification) error {
	return r.db.WithContext(ctx).Create(modification).Error
}

func (r *GormModificationRepository) GetByID(ctx context.Context, id string) (*models.ServiceModification, error) {
	var m models.ServiceModification
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormModificationRepository) Save(ctx context.Context, modification *models.ServiceModification) error {
	return r.db.WithContext(ctx).Save(modification).Error
}

func (r *GormModificationRepository) ListByAppointment(ctx context.Context, appointmentID string) ([]models.ServiceModification, error) {
	var out []models.ServiceModification
	err := r.db.WithContext(ctx).Where("appointment_id = ?", appointmentID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *GormModificationRepository) ListApprovedByAppointment(ctx context.Context, appointmentID string) ([]models.ServiceModification, error) {
	var out []models.ServiceModification
	err := r.db.WithContext(ctx).
		Where("appointment_id = ? AND status = ?", appointmentID, models.ModificationApproved).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *GormModificationRepository) CreateApproval(ctx context.Context, approval *models.CustomerApproval) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

func (r *GormModificationRepository) SaveApproval(ctx context.Context, approval *models.CustomerApproval) error {
	return r.db.WithContext(ctx).Save(approval).Error
}

func (r *GormModificationRepository) LatestPendingApproval(ctx context.Context, appointmentID string) (*models.CustomerApproval, error) {
	var a models.CustomerApproval
	err := r.db.WithContext(ctx).
		Where("appointment_id = ? AND status = ?", appointmentID, models.ApprovalPending).
		Order("requested_at DESC").
		Order("created_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormModificationRepository) CountPendingApprovals(ctx context.Context, appointmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CustomerApproval{}).
		Where("appointment_id = ? AND status = ?", appointmentID, models.ApprovalPending).
		Count(&count).Error
	return count, err
}

func (r *GormModificationRepository) ListApprovals(ctx context.Context, appointmentID string) ([]models.CustomerApproval, error) {
	var out []models.CustomerApproval
	err := r.db.WithContext(ctx).Where("appointment_id = ?", appointmentID).Order("requested_at ASC").Find(&out).Error
	return out, err
}
