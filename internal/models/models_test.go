package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func TestAppointmentStatus_Transitions(t *testing.T) {
	allowed := []struct{ from, to AppointmentStatus }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusInProgress},
		{StatusConfirmed, StatusWaitingForApproval},
		{StatusConfirmed, StatusCancelled},
		{StatusInProgress, StatusWaitingForApproval},
		{StatusInProgress, StatusCompleted},
		{StatusWaitingForApproval, StatusInProgress},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to AppointmentStatus }{
		{StatusPending, StatusCompleted},
		{StatusInProgress, StatusCancelled},
		{StatusWaitingForApproval, StatusCompleted},
		{StatusCompleted, StatusInProgress},
		{StatusCancelled, StatusPending},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestAppointment_CanBeCancelled(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	a := &Appointment{Status: StatusConfirmed, StartTime: now.Add(time.Hour)}
	if !a.CanBeCancelled(now) || !a.CanBeRescheduled(now) {
		t.Fatalf("future confirmed appointment should be cancellable")
	}

	a.StartTime = now.Add(-time.Minute)
	if a.CanBeCancelled(now) {
		t.Fatalf("past appointment must not be cancellable")
	}

	a.StartTime = now.Add(time.Hour)
	a.Status = StatusInProgress
	if a.CanBeRescheduled(now) {
		t.Fatalf("in-progress appointment must not be reschedulable")
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole(" Staff "); err != nil || r != RoleStaff {
		t.Fatalf("expected staff, got %q (err=%v)", r, err)
	}
	if _, err := ParseRole("doctor"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestStaffSchedule_Covers(t *testing.T) {
	s := &StaffSchedule{StartTime: datatypes.NewTime(9, 0, 0, 0), EndTime: datatypes.NewTime(17, 0, 0, 0)}
	if s.StartMinute() != 540 || s.EndMinute() != 1020 {
		t.Fatalf("unexpected minutes %d-%d", s.StartMinute(), s.EndMinute())
	}
	if !s.Covers(540, 1020) {
		t.Fatalf("window must include its bounds")
	}
	if s.Covers(990, 1065) {
		t.Fatalf("16:30-17:45 must not fit a 09:00-17:00 window")
	}
}

func TestShopBlackoutDate_Matches(t *testing.T) {
	christmas := &ShopBlackoutDate{
		Date:        datatypes.Date(time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)),
		IsRecurring: true,
	}
	if !christmas.Matches(time.Date(2026, 12, 25, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("recurring blackout must match any year")
	}

	christmas.IsRecurring = false
	if christmas.Matches(time.Date(2026, 12, 25, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("one-off blackout must not match another year")
	}
	if !christmas.Matches(time.Date(2025, 12, 25, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("one-off blackout must match its own date")
	}
}

func TestInvoice_CalculateTotals(t *testing.T) {
	inv := &Invoice{
		Status:         InvoiceDraft,
		DiscountAmount: decimal.NewFromInt(5),
		AmountPaid:     decimal.NewFromInt(20),
		Items: []InvoiceItem{
			NewInvoiceItem("service", "Oil change", "", 1, decimal.NewFromInt(100), nil),
			NewInvoiceItem("part", "Filter", "", 2, decimal.NewFromInt(25), nil),
		},
	}
	inv.CalculateTotals(decimal.NewFromFloat(0.10))

	if !inv.Subtotal.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("subtotal: got %s", inv.Subtotal)
	}
	if !inv.TaxAmount.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("tax: got %s", inv.TaxAmount)
	}
	if !inv.TotalAmount.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("total: got %s", inv.TotalAmount)
	}
	if !inv.Balance.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("balance: got %s", inv.Balance)
	}
}

func TestInvoice_CanBeModified(t *testing.T) {
	for _, status := range []InvoiceStatus{InvoiceDraft, InvoicePendingApproval, InvoiceApproved} {
		inv := &Invoice{Status: status}
		if !inv.CanBeModified() {
			t.Fatalf("%s invoice should be modifiable", status)
		}
	}
	for _, status := range []InvoiceStatus{InvoiceLocked, InvoicePaid, InvoiceCancelled} {
		inv := &Invoice{Status: status}
		if inv.CanBeModified() {
			t.Fatalf("%s invoice must not be modifiable", status)
		}
	}

	lockedAt := time.Now()
	inv := &Invoice{Status: InvoiceApproved, LockedAt: &lockedAt}
	if inv.CanBeModified() {
		t.Fatalf("invoice with locked_at must not be modifiable")
	}
}
