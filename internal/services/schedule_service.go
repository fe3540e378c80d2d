package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"autoshop-server/internal/models"
	"autoshop-server/internal/repository"
)

// StaffScheduleInput sets one weekday window; times are minutes since midnight.
type StaffScheduleInput struct {
	StaffID     string
	Day         models.Weekday
	StartMinute int
	EndMinute   int
	IsAvailable bool
}

type BlackoutInput struct {
	Date        time.Time
	Reason      string
	Description string
	IsRecurring bool
}

// ScheduleService is the admin side of shop availability: staff working
// windows and closing days.
type ScheduleService struct {
	store    *repository.Store
	settings Settings
	logger   *logrus.Logger
}

func NewScheduleService(store *repository.Store, settings Settings, logger *logrus.Logger) *ScheduleService {
	return &ScheduleService{store: store, settings: settings, logger: logger}
}

func (s *ScheduleService) UpsertStaffSchedule(ctx context.Context, in StaffScheduleInput) (*models.StaffSchedule, error) {
	if in.StartMinute < 0 || in.EndMinute > 24*60 || in.EndMinute <= in.StartMinute {
		return nil, ruleError("End time must be after start time")
	}

	staff, err := s.store.Users.GetByID(ctx, in.StaffID)
	if err != nil {
		return nil, orNotFound(err, "Staff member not found")
	}
	if staff.Role != models.RoleStaff {
		return nil, ruleError("Selected user is not a staff member")
	}

	schedule := &models.StaffSchedule{
		StaffID:     in.StaffID,
		DayOfWeek:   in.Day,
		StartTime:   models.ClockTime(in.StartMinute),
		EndTime:     models.ClockTime(in.EndMinute),
		IsAvailable: in.IsAvailable,
	}
	if err := s.store.Schedules.UpsertStaffSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("save staff schedule: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"staff_id": in.StaffID,
		"day":      in.Day,
		"start":    schedule.StartTime.String(),
		"end":      schedule.EndTime.String(),
	}).Info("staff schedule saved")
	return schedule, nil
}

func (s *ScheduleService) StaffSchedules(ctx context.Context, staffID string) ([]models.StaffSchedule, error) {
	schedules, err := s.store.Schedules.ListStaffSchedules(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("list staff schedules: %w", err)
	}
	return schedules, nil
}

// AddBlackout closes the shop on a date that is today or later.
func (s *ScheduleService) AddBlackout(ctx context.Context, in BlackoutInput) (*models.ShopBlackoutDate, error) {
	y, m, d := in.Date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	ty, tm, td := s.settings.Hours.Local(s.settings.now()).Date()
	if day.Before(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)) {
		return nil, ruleError("Blackout date cannot be in the past")
	}

	blackout := &models.ShopBlackoutDate{
		Date:        datatypes.Date(day),
		Reason:      in.Reason,
		Description: in.Description,
		IsRecurring: in.IsRecurring,
	}
	if err := s.store.Schedules.CreateBlackout(ctx, blackout); err != nil {
		return nil, fmt.Errorf("save blackout date: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"date":      day.Format("2006-01-02"),
		"recurring": in.IsRecurring,
	}).Info("blackout date added")
	return blackout, nil
}

func (s *ScheduleService) RemoveBlackout(ctx context.Context, id string) error {
	if err := s.store.Schedules.DeleteBlackout(ctx, id); err != nil {
		return orNotFound(err, "Blackout date not found")
	}
	return nil
}
