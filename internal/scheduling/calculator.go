package scheduling

import (
	"context"
	"fmt"
	"time"

	"autoshop-server/internal/models"
)

// Reasons reported when a slot cannot be booked.
const (
	ReasonInPast           = "Cannot book appointments in the past"
	ReasonBlackout         = "Shop is closed on this date"
	ReasonOutsideShopHours = "Appointment time is outside shop hours"
	ReasonPastClosing      = "Appointment would extend beyond shop closing time"
	ReasonStaffNotOnDay    = "Staff member is not scheduled for this day"
	ReasonOutsideStaffDay  = "Appointment time is outside staff working hours"
	ReasonNoStaff          = "No staff available for this time slot"
	ReasonConflict         = "Time slot conflicts with existing appointment"
)

// Store is the read-only view of shared state the calculator depends on.
type Store interface {
	BlackoutsAround(ctx context.Context, day time.Time) ([]models.ShopBlackoutDate, error)
	// StaffSchedule returns nil when the staff member has no available row for day.
	StaffSchedule(ctx context.Context, staffID string, day models.Weekday) (*models.StaffSchedule, error)
	AvailableSchedules(ctx context.Context, day models.Weekday) ([]models.StaffSchedule, error)
	HasOverlap(ctx context.Context, start, end time.Time, staffID, excludeID string) (bool, error)
}

// Request is a candidate booking.
type Request struct {
	Start    time.Time
	Services []models.ServiceType
	// StaffID restricts the check to one staff member when set.
	StaffID string
	// ExcludeAppointmentID ignores an appointment's own booking on reschedule.
	ExcludeAppointmentID string
}

// Availability is the outcome of a check. Reason is empty when Available.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func unavailable(reason string) Availability {
	return Availability{Reason: reason}
}

// Calculator decides whether a booking request satisfies the shop rules.
// It never writes; errors are store faults, rule failures come back as an
// unavailable result.
type Calculator struct {
	store    Store
	hours    ShopHours
	now      func() time.Time
	assigner *Assigner
}

func NewCalculator(store Store, hours ShopHours, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{
		store:    store,
		hours:    hours,
		now:      now,
		assigner: NewAssigner(store, hours),
	}
}

// Hours returns the shop hours the calculator enforces.
func (c *Calculator) Hours() ShopHours {
	return c.hours
}

// Assigner returns the staff assigner sharing the calculator's store.
func (c *Calculator) Assigner() *Assigner {
	return c.assigner
}

// BufferedEnd is the end of the interval a request occupies for availability
// purposes: service time plus the turnover buffer.
func (c *Calculator) BufferedEnd(start time.Time, services []models.ServiceType) time.Time {
	return start.Add(models.TotalDuration(services) + c.hours.Buffer)
}

// Check runs the booking rules in order and reports the first failure.
func (c *Calculator) Check(ctx context.Context, req Request) (Availability, error) {
	start := req.Start
	if start.Before(c.now()) {
		return unavailable(ReasonInPast), nil
	}

	local := c.hours.Local(start)
	closed, err := c.isBlackedOut(ctx, local)
	if err != nil {
		return Availability{}, err
	}
	if closed {
		return unavailable(ReasonBlackout), nil
	}

	end := c.BufferedEnd(start, req.Services)
	startMinute, endMinute := c.hours.span(start, end)
	if startMinute < c.hours.Open || startMinute >= c.hours.Close {
		return unavailable(ReasonOutsideShopHours), nil
	}
	if endMinute > c.hours.Close {
		return unavailable(ReasonPastClosing), nil
	}

	day := models.WeekdayOf(local)
	if req.StaffID != "" {
		schedule, err := c.store.StaffSchedule(ctx, req.StaffID, day)
		if err != nil {
			return Availability{}, fmt.Errorf("load staff schedule: %w", err)
		}
		if schedule == nil {
			return unavailable(ReasonStaffNotOnDay), nil
		}
		if !schedule.Covers(startMinute, endMinute) {
			return unavailable(ReasonOutsideStaffDay), nil
		}
	} else {
		staffID, err := c.assigner.firstFree(ctx, start, end, req.ExcludeAppointmentID)
		if err != nil {
			return Availability{}, err
		}
		if staffID == "" {
			return unavailable(ReasonNoStaff), nil
		}
	}

	conflict, err := c.store.HasOverlap(ctx, start, end, req.StaffID, req.ExcludeAppointmentID)
	if err != nil {
		return Availability{}, fmt.Errorf("check overlap: %w", err)
	}
	if conflict {
		return unavailable(ReasonConflict), nil
	}
	return Availability{Available: true}, nil
}

func (c *Calculator) isBlackedOut(ctx context.Context, local time.Time) (bool, error) {
	blackouts, err := c.store.BlackoutsAround(ctx, local)
	if err != nil {
		return false, fmt.Errorf("load blackout dates: %w", err)
	}
	for i := range blackouts {
		if blackouts[i].Matches(local) {
			return true, nil
		}
	}
	return false, nil
}
