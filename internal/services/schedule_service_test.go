package services

import (
	"testing"
	"time"

	"autoshop-server/internal/models"
	"autoshop-server/internal/scheduling"
)

func TestScheduleService_UpsertStaffSchedule(t *testing.T) {
	f := newFixture(t)

	_, err := f.schedules.UpsertStaffSchedule(f.ctx, StaffScheduleInput{
		StaffID: f.staff.ID, Day: models.Monday, StartMinute: 10 * 60, EndMinute: 9 * 60,
	})
	expectRule(t, err, KindRule, "End time must be after start time")

	_, err = f.schedules.UpsertStaffSchedule(f.ctx, StaffScheduleInput{
		StaffID: f.customer.ID, Day: models.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60, IsAvailable: true,
	})
	expectRule(t, err, KindRule, "Selected user is not a staff member")

	updated, err := f.schedules.UpsertStaffSchedule(f.ctx, StaffScheduleInput{
		StaffID: f.staff.ID, Day: models.Monday, StartMinute: 12 * 60, EndMinute: 16 * 60, IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if updated.StartMinute() != 12*60 || updated.EndMinute() != 16*60 {
		t.Fatalf("unexpected window %d-%d", updated.StartMinute(), updated.EndMinute())
	}

	schedules, err := f.schedules.StaffSchedules(f.ctx, f.staff.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(schedules) != 1 {
		t.Fatalf("expected the monday row to be replaced, got %d rows", len(schedules))
	}

	got, err := f.appointments.CheckAvailability(f.ctx, monday(9, 0), []string{f.oil.ID}, f.staff.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if got.Available || got.Reason != scheduling.ReasonOutsideStaffDay {
		t.Fatalf("expected the new window to apply, got %+v", got)
	}
}

func TestScheduleService_Blackouts(t *testing.T) {
	f := newFixture(t)

	_, err := f.schedules.AddBlackout(f.ctx, BlackoutInput{Date: fixtureNow.AddDate(0, 0, -1), Reason: "holiday"})
	expectRule(t, err, KindRule, "Blackout date cannot be in the past")

	blackout, err := f.schedules.AddBlackout(f.ctx, BlackoutInput{Date: monday(0, 0), Reason: "stocktake"})
	if err != nil {
		t.Fatalf("add blackout: %v", err)
	}

	got, err := f.appointments.CheckAvailability(f.ctx, monday(9, 0), []string{f.oil.ID}, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if got.Reason != scheduling.ReasonBlackout {
		t.Fatalf("expected blackout, got %+v", got)
	}

	if err := f.schedules.RemoveBlackout(f.ctx, blackout.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	err = f.schedules.RemoveBlackout(f.ctx, blackout.ID)
	expectRule(t, err, KindNotFound, "Blackout date not found")

	got, err = f.appointments.CheckAvailability(f.ctx, monday(9, 0).Add(time.Hour), []string{f.oil.ID}, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !got.Available {
		t.Fatalf("expected the day to reopen, got %+v", got)
	}
}
