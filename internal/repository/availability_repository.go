package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"autoshop-server/internal/models"
)

// GormAvailabilityRepository answers the read-only questions the availability
// calculator asks about schedules, blackouts and bookings.
type GormAvailabilityRepository struct {
	db *gorm.DB
}

func NewGormAvailabilityRepository(db *gorm.DB) *GormAvailabilityRepository {
	return &GormAvailabilityRepository{db: db}
}

// BlackoutsAround returns recurring blackouts plus one-off blackouts within a
// day of the given date. Exact matching is left to the caller.
func (r *GormAvailabilityRepository) BlackoutsAround(ctx context.Context, day time.Time) ([]models.ShopBlackoutDate, error) {
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var out []models.ShopBlackoutDate
	err := r.db.WithContext(ctx).
		Where("is_recurring = ? OR (date >= ? AND date <= ?)", true, midnight.AddDate(0, 0, -1), midnight.AddDate(0, 0, 1)).
		Find(&out).Error
	return out, err
}

// StaffSchedule returns the available schedule of a staff member for a day,
// or nil when there is none.
func (r *GormAvailabilityRepository) StaffSchedule(ctx context.Context, staffID string, day models.Weekday) (*models.StaffSchedule, error) {
	var s models.StaffSchedule
	err := r.db.WithContext(ctx).
		Where("staff_id = ? AND day_of_week = ? AND is_available = ?", staffID, day, true).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// AvailableSchedules lists the schedules of users with the staff role for a day.
func (r *GormAvailabilityRepository) AvailableSchedules(ctx context.Context, day models.Weekday) ([]models.StaffSchedule, error) {
	var out []models.StaffSchedule
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = staff_schedules.staff_id").
		Where("users.role = ? AND staff_schedules.day_of_week = ? AND staff_schedules.is_available = ?", models.RoleStaff, day, true).
		Order("staff_schedules.created_at ASC").
		Find(&out).Error
	return out, err
}

// HasOverlap reports whether a non-cancelled appointment intersects
// [start, end). staffID and excludeID are ignored when empty.
func (r *GormAvailabilityRepository) HasOverlap(ctx context.Context, start, end time.Time, staffID, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("status <> ?", models.StatusCancelled).
		Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC())
	if staffID != "" {
		q = q.Where("staff_id = ?", staffID)
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
