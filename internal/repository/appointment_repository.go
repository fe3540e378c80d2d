package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"autoshop-server/internal/models"
)

type AppointmentRepository interface {
	// Create the appointment together with its booked services.
	Create(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// GetWithServices loads the booked services and their catalogue entries.
	GetWithServices(ctx context.Context, id string) (*models.Appointment, error)
	// Save writes the appointment columns; booked services are left untouched.
	Save(ctx context.Context, appointment *models.Appointment) error
	// ReplaceServices swaps the booked service set for a new one.
	ReplaceServices(ctx context.Context, appointmentID string, services []models.BookedService) error
}

type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

func (r *GormAppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *GormAppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormAppointmentRepository) GetWithServices(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Services", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Services.ServiceType").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormAppointmentRepository) Save(ctx context.Context, appointment *models.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(appointment).Error
}

func (r *GormAppointmentRepository) ReplaceServices(ctx context.Context, appointmentID string, services []models.BookedService) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("appointment_id = ?", appointmentID).Delete(&models.BookedService{}).Error; err != nil {
		return err
	}
	if len(services) == 0 {
		return nil
	}
	for i := range services {
		services[i].AppointmentID = appointmentID
	}
	return db.Omit("ServiceType").Create(&services).Error
}
