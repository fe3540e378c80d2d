package scheduling

import (
	"context"
	"testing"
	"time"

	"autoshop-server/internal/models"
)

func TestAvailableSlots_StepsThroughTheDay(t *testing.T) {
	store := &fakeStore{schedules: []models.StaffSchedule{schedule("s1", models.Monday, 8, 18)}}
	calc := newTestCalculator(store)

	slots, err := calc.AvailableSlots(context.Background(), at(0, 0), []models.ServiceType{service(60)}, "")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}

	// 60 minutes + 15 buffer: last start that fits is 16:30.
	if len(slots) != 18 {
		t.Fatalf("expected 18 slots, got %d", len(slots))
	}
	if slots[0].Time != "08:00" || slots[0].DateTime != "2026-03-02 08:00:00" {
		t.Fatalf("unexpected first slot %+v", slots[0])
	}
	if last := slots[len(slots)-1]; last.Time != "16:30" {
		t.Fatalf("unexpected last slot %+v", last)
	}
}

func TestAvailableSlots_SkipsBookedStarts(t *testing.T) {
	store := &fakeStore{
		schedules: []models.StaffSchedule{schedule("s1", models.Monday, 9, 12)},
		bookings:  []booking{{id: "a1", staffID: "s1", start: at(10, 0), end: at(10, 30)}},
	}
	calc := newTestCalculator(store)

	slots, err := calc.AvailableSlots(context.Background(), at(0, 0), []models.ServiceType{service(30)}, "s1")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}

	var got []string
	for _, s := range slots {
		got = append(got, s.Time)
	}
	want := []string{"09:00", "10:30", "11:00"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	again, err := calc.AvailableSlots(context.Background(), at(0, 0), []models.ServiceType{service(30)}, "s1")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(again) != len(slots) {
		t.Fatalf("slot generation must be repeatable")
	}
}

func TestAvailableSlots_PastDayIsEmpty(t *testing.T) {
	store := &fakeStore{schedules: []models.StaffSchedule{schedule("s1", models.Friday, 8, 18)}}
	slots, err := newTestCalculator(store).AvailableSlots(context.Background(), time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), []models.ServiceType{service(30)}, "")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots in the past, got %d", len(slots))
	}
}

func TestAssigner_PicksFirstFreeStaff(t *testing.T) {
	store := &fakeStore{
		schedules: []models.StaffSchedule{
			schedule("s1", models.Monday, 8, 18),
			schedule("s2", models.Monday, 12, 18),
			schedule("s3", models.Monday, 8, 18),
		},
		bookings: []booking{{id: "a1", staffID: "s1", start: at(9, 0), end: at(10, 0)}},
	}
	assigner := NewAssigner(store, DefaultShopHours())

	got, err := assigner.AutoAssign(context.Background(), at(9, 30), at(10, 30))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got != "s3" {
		t.Fatalf("expected s3 (s1 busy, s2 off shift), got %q", got)
	}

	got, err = assigner.AutoAssignExcluding(context.Background(), at(9, 30), at(10, 30), "a1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got != "s1" {
		t.Fatalf("expected s1 once its booking is excluded, got %q", got)
	}

	got, err = assigner.AutoAssign(context.Background(), at(17, 30), at(18, 30))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got != "" {
		t.Fatalf("expected nobody after hours, got %q", got)
	}
}
