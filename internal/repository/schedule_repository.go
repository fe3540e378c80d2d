package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"autoshop-server/internal/models"
)

type ScheduleRepository interface {
	// UpsertStaffSchedule creates or replaces the window for (staff, day).
	UpsertStaffSchedule(ctx context.Context, schedule *models.StaffSchedule) error
	ListStaffSchedules(ctx context.Context, staffID string) ([]models.StaffSchedule, error)
	CreateBlackout(ctx context.Context, blackout *models.ShopBlackoutDate) error
	// DeleteBlackout returns gorm.ErrRecordNotFound when nothing was removed.
	DeleteBlackout(ctx context.Context, id string) error
}

type GormScheduleRepository struct {
	db *gorm.DB
}

func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func (r *GormScheduleRepository) UpsertStaffSchedule(ctx context.Context, schedule *models.StaffSchedule) error {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "staff_id"}, {Name: "day_of_week"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "is_available", "updated_at"}),
	}).Create(schedule).Error
	if err != nil {
		return err
	}
	// The conflicting row keeps its own id; reload so the caller sees it.
	var stored models.StaffSchedule
	if err := db.Where("staff_id = ? AND day_of_week = ?", schedule.StaffID, schedule.DayOfWeek).First(&stored).Error; err != nil {
		return err
	}
	*schedule = stored
	return nil
}

func (r *GormScheduleRepository) ListStaffSchedules(ctx context.Context, staffID string) ([]models.StaffSchedule, error) {
	var out []models.StaffSchedule
	err := r.db.WithContext(ctx).Where("staff_id = ?", staffID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *GormScheduleRepository) CreateBlackout(ctx context.Context, blackout *models.ShopBlackoutDate) error {
	return r.db.WithContext(ctx).Create(blackout).Error
}

func (r *GormScheduleRepository) DeleteBlackout(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.ShopBlackoutDate{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
