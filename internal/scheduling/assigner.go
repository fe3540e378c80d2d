package scheduling

import (
	"context"
	"fmt"
	"time"

	"autoshop-server/internal/models"
)

// Assigner picks a staff member for an interval.
type Assigner struct {
	store Store
	hours ShopHours
}

func NewAssigner(store Store, hours ShopHours) *Assigner {
	return &Assigner{store: store, hours: hours}
}

// AutoAssign returns the first staff member, in store order, whose schedule
// covers [start, end] and who has no conflicting booking. An empty id means
// nobody qualifies and the appointment stays unassigned.
func (a *Assigner) AutoAssign(ctx context.Context, start, end time.Time) (string, error) {
	return a.firstFree(ctx, start, end, "")
}

// AutoAssignExcluding is AutoAssign ignoring one existing appointment, for
// re-assigning an appointment that is already booked.
func (a *Assigner) AutoAssignExcluding(ctx context.Context, start, end time.Time, excludeID string) (string, error) {
	return a.firstFree(ctx, start, end, excludeID)
}

func (a *Assigner) firstFree(ctx context.Context, start, end time.Time, excludeID string) (string, error) {
	day := models.WeekdayOf(a.hours.Local(start))
	schedules, err := a.store.AvailableSchedules(ctx, day)
	if err != nil {
		return "", fmt.Errorf("load staff schedules: %w", err)
	}

	startMinute, endMinute := a.hours.span(start, end)
	for i := range schedules {
		if !schedules[i].Covers(startMinute, endMinute) {
			continue
		}
		busy, err := a.store.HasOverlap(ctx, start, end, schedules[i].StaffID, excludeID)
		if err != nil {
			return "", fmt.Errorf("check staff overlap: %w", err)
		}
		if !busy {
			return schedules[i].StaffID, nil
		}
	}
	return "", nil
}
