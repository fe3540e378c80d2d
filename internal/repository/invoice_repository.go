package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"autoshop-server/internal/models"
)

type InvoiceRepository interface {
	// Create the invoice together with its items.
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	GetWithItems(ctx context.Context, id string) (*models.Invoice, error)
	ExistsForAppointment(ctx context.Context, appointmentID string) (bool, error)
	// Save writes the invoice columns; items are left untouched.
	Save(ctx context.Context, invoice *models.Invoice) error
}

type GormInvoiceRepository struct {
	db *gorm.DB
}

func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *GormInvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *GormInvoiceRepository) GetWithItems(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&inv, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *GormInvoiceRepository) ExistsForAppointment(ctx context.Context, appointmentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("appointment_id = ?", appointmentID).Count(&count).Error
	return count > 0, err
}

func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(invoice).Error
}
