package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"autoshop-server/internal/models"
)

// completedWithPart books oil and brakes, adds an approved 50.00 part and
// completes the job, which creates the invoice.
func completedWithPart(t *testing.T, f *fixture) (*models.Appointment, *models.Invoice) {
	t.Helper()
	a := f.book(monday(9, 0), f.oil, f.brakes)
	f.startWork(a.ID)

	m, err := f.modifications.Propose(f.ctx, actorOf(f.staff), a.ID, partInput())
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := f.modifications.Approve(f.ctx, actorOf(f.customer), m.ID); err != nil {
		t.Fatalf("approve modification: %v", err)
	}
	if _, err := f.appointments.UpdateStatus(f.ctx, actorOf(f.staff), a.ID, models.StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var invoice models.Invoice
	if err := f.db.First(&invoice, "appointment_id = ?", a.ID).Error; err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	return a, &invoice
}

func TestInvoiceService_CreateFromAppointment(t *testing.T) {
	f := newFixture(t)
	a, created := completedWithPart(t, f)

	invoice, err := f.invoices.Get(f.ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !invoice.Subtotal.Equal(decimal.NewFromInt(200)) || !invoice.TotalAmount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected draft totals of 200, got subtotal=%s total=%s", invoice.Subtotal, invoice.TotalAmount)
	}
	if !invoice.TaxAmount.IsZero() || !invoice.AmountPaid.IsZero() || !invoice.Balance.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected draft bookkeeping %+v", invoice)
	}
	if len(invoice.Items) != 3 {
		t.Fatalf("expected two service lines and one part line, got %d", len(invoice.Items))
	}

	sum := decimal.Zero
	parts := 0
	for _, item := range invoice.Items {
		sum = sum.Add(item.TotalPrice)
		if item.ItemType == "part" {
			parts++
			if item.Quantity != 2 || !item.UnitPrice.Equal(decimal.NewFromInt(25)) {
				t.Fatalf("unexpected part line %+v", item)
			}
		}
	}
	if parts != 1 || !sum.Equal(invoice.Subtotal) {
		t.Fatalf("expected item lines to add up to the subtotal, got %s over %d part lines", sum, parts)
	}

	_, err = f.invoices.CreateFromAppointment(f.ctx, a.ID)
	expectRule(t, err, KindRule, "Invoice already exists for this appointment")

	_, err = f.invoices.Get(f.ctx, "00000000-0000-0000-0000-000000000000")
	expectRule(t, err, KindNotFound, "Invoice not found")
}

func TestInvoiceService_CreateRequiresCompletedAppointment(t *testing.T) {
	f := newFixture(t)
	a := f.book(monday(9, 0), f.oil)

	_, err := f.invoices.CreateFromAppointment(f.ctx, a.ID)
	expectRule(t, err, KindRule, "Invoices can only be created for completed appointments")

	if _, err := f.appointments.Cancel(f.ctx, actorOf(f.customer), a.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err = f.invoices.CreateFromAppointment(f.ctx, a.ID)
	expectRule(t, err, KindRule, "Invoices can only be created for completed appointments")

	var count int64
	if err := f.db.Model(&models.Invoice{}).Where("appointment_id = ?", a.ID).Count(&count).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no invoice, got %d", count)
	}
}

func TestInvoiceService_ApproveLockAndGuards(t *testing.T) {
	f := newFixture(t)
	_, invoice := completedWithPart(t, f)
	admin := actorOf(f.admin)

	_, err := f.invoices.Lock(f.ctx, admin, invoice.ID)
	expectRule(t, err, KindRule, "Invoice must be approved before locking.")

	recalculated, err := f.invoices.Recalculate(f.ctx, invoice.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if !recalculated.TaxAmount.Equal(decimal.NewFromInt(20)) || !recalculated.TotalAmount.Equal(decimal.NewFromInt(220)) {
		t.Fatalf("expected tax 20 and total 220, got %s and %s", recalculated.TaxAmount, recalculated.TotalAmount)
	}

	discounted, err := f.invoices.SetDiscount(f.ctx, invoice.ID, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("discount: %v", err)
	}
	if !discounted.TotalAmount.Equal(decimal.NewFromInt(210)) || !discounted.Balance.Equal(decimal.NewFromInt(210)) {
		t.Fatalf("expected total 210 after discount, got %s", discounted.TotalAmount)
	}

	_, err = f.invoices.SetDiscount(f.ctx, invoice.ID, decimal.NewFromInt(1000))
	expectRule(t, err, KindRule, "Discount exceeds the invoice total.")

	approved, err := f.invoices.Approve(f.ctx, admin, invoice.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.InvoiceApproved || approved.ApprovedAt == nil {
		t.Fatalf("unexpected approved invoice %+v", approved)
	}

	locked, err := f.invoices.Lock(f.ctx, admin, invoice.ID)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if locked.Status != models.InvoiceLocked || locked.LockedAt == nil {
		t.Fatalf("unexpected locked invoice %+v", locked)
	}

	_, err = f.invoices.Lock(f.ctx, admin, invoice.ID)
	expectRule(t, err, KindRule, "Invoice is already locked.")
	_, err = f.invoices.Recalculate(f.ctx, invoice.ID)
	expectRule(t, err, KindRule, "Invoice can no longer be modified.")
	_, err = f.invoices.Approve(f.ctx, admin, invoice.ID)
	expectRule(t, err, KindRule, "Invoice is already locked.")

	stored, err := f.invoices.Get(f.ctx, invoice.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.TotalAmount.Equal(decimal.NewFromInt(210)) {
		t.Fatalf("locked invoice totals changed: %s", stored.TotalAmount)
	}
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	f := newFixture(t)
	a, invoice := completedWithPart(t, f)
	admin := actorOf(f.admin)

	_, err := f.invoices.RecordPayment(f.ctx, invoice.ID, decimal.NewFromInt(50), "")
	expectRule(t, err, KindRule, "Payments can only be recorded on approved or locked invoices.")

	if _, err := f.invoices.Approve(f.ctx, admin, invoice.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.invoices.Lock(f.ctx, admin, invoice.ID); err != nil {
		t.Fatalf("lock: %v", err)
	}

	_, err = f.invoices.RecordPayment(f.ctx, invoice.ID, decimal.Zero, "")
	expectRule(t, err, KindRule, "Payment amount must be positive.")

	partial, err := f.invoices.RecordPayment(f.ctx, invoice.ID, decimal.NewFromInt(80), "")
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if !partial.Balance.Equal(decimal.NewFromInt(120)) || partial.Status != models.InvoiceLocked {
		t.Fatalf("unexpected invoice after partial payment %+v", partial)
	}
	appointment := f.reload(a.ID)
	if appointment.PaymentStatus != models.PaymentPartial || !appointment.AmountPaid.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("unexpected appointment payment state %s %s", appointment.PaymentStatus, appointment.AmountPaid)
	}

	paid, err := f.invoices.RecordPayment(f.ctx, invoice.ID, decimal.NewFromInt(120), "cash")
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if paid.Status != models.InvoicePaid || !paid.Balance.IsZero() || paid.PaidAt == nil {
		t.Fatalf("unexpected paid invoice %+v", paid)
	}
	appointment = f.reload(a.ID)
	if !appointment.IsPaid() || appointment.PaymentMethod != "cash" || appointment.PaidAt == nil {
		t.Fatalf("unexpected appointment after payment %+v", appointment)
	}

	_, err = f.invoices.RecordPayment(f.ctx, invoice.ID, decimal.NewFromInt(1), "")
	expectRule(t, err, KindRule, "")
}
