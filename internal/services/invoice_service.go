package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"autoshop-server/internal/models"
	"autoshop-server/internal/repository"
)

// InvoiceService builds invoices from completed jobs and moves them through
// approval, locking and payment.
type InvoiceService struct {
	store    *repository.Store
	settings Settings
	logger   *logrus.Logger
}

func NewInvoiceService(store *repository.Store, settings Settings, logger *logrus.Logger) *InvoiceService {
	return &InvoiceService{store: store, settings: settings, logger: logger}
}

// CreateFromAppointment bills a completed appointment's current total as a draft
// invoice with one line per booked service and per approved modification.
func (s *InvoiceService) CreateFromAppointment(ctx context.Context, appointmentID string) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		appointment, err := tx.Appointments.GetWithServices(ctx, appointmentID)
		if err != nil {
			return orNotFound(err, "Appointment not found")
		}
		if appointment.Status != models.StatusCompleted {
			return ruleError("Invoices can only be created for completed appointments")
		}

		exists, err := tx.Invoices.ExistsForAppointment(ctx, appointment.ID)
		if err != nil {
			return fmt.Errorf("check existing invoice: %w", err)
		}
		if exists {
			return ruleError("Invoice already exists for this appointment")
		}

		approved, err := tx.Modifications.ListApprovedByAppointment(ctx, appointment.ID)
		if err != nil {
			return fmt.Errorf("load approved modifications: %w", err)
		}

		number, err := nextNumber(ctx, tx, s.logger, invoicePrefix, s.settings.Hours.Local(s.settings.now()))
		if err != nil {
			return err
		}

		invoice = &models.Invoice{
			AppointmentID:  appointment.ID,
			InvoiceNumber:  number,
			Status:         models.InvoiceDraft,
			Subtotal:       appointment.TotalPrice,
			TaxAmount:      decimal.Zero,
			DiscountAmount: decimal.Zero,
			TotalAmount:    appointment.TotalPrice,
			AmountPaid:     decimal.Zero,
			Balance:        appointment.TotalPrice,
			Items:          invoiceItems(appointment, approved),
		}
		if err := tx.Invoices.Create(ctx, invoice); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"appointment_id": appointmentID,
		"total":          invoice.TotalAmount.StringFixed(2),
	}).Info("invoice created")
	return invoice, nil
}

func invoiceItems(appointment *models.Appointment, approved []models.ServiceModification) []models.InvoiceItem {
	items := make([]models.InvoiceItem, 0, len(appointment.Services)+len(approved))
	for _, booked := range appointment.Services {
		serviceTypeID := booked.ServiceTypeID
		items = append(items, models.NewInvoiceItem(
			"service",
			booked.ServiceType.Name,
			booked.ServiceType.Description,
			1,
			booked.Price,
			&serviceTypeID,
		))
	}
	for _, m := range approved {
		items = append(items, models.NewInvoiceItem(m.InvoiceItemType(), m.ItemName, m.Description, m.Quantity, m.UnitPrice, m.ServiceTypeID))
	}
	return items
}

func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	invoice, err := s.store.Invoices.GetWithItems(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Invoice not found")
	}
	return invoice, nil
}

// Approve accepts a draft or pending invoice for locking.
func (s *InvoiceService) Approve(ctx context.Context, actor models.Actor, id string) (*models.Invoice, error) {
	return s.mutate(ctx, id, func(invoice *models.Invoice, now time.Time) error {
		if invoice.IsLocked() {
			return ruleError("Invoice is already locked.")
		}
		if invoice.Status != models.InvoiceDraft && invoice.Status != models.InvoicePendingApproval {
			return ruleError("Only draft or pending invoices can be approved.")
		}
		invoice.Status = models.InvoiceApproved
		invoice.ApprovedAt = &now
		invoice.ApprovedBy = &actor.ID
		return nil
	})
}

// Lock freezes an approved invoice. Only payment fields change afterwards.
func (s *InvoiceService) Lock(ctx context.Context, actor models.Actor, id string) (*models.Invoice, error) {
	return s.mutate(ctx, id, func(invoice *models.Invoice, now time.Time) error {
		if invoice.IsLocked() {
			return ruleError("Invoice is already locked.")
		}
		if invoice.Status != models.InvoiceApproved {
			return ruleError("Invoice must be approved before locking.")
		}
		invoice.Status = models.InvoiceLocked
		invoice.LockedAt = &now
		invoice.ApprovedBy = &actor.ID
		return nil
	})
}

// Recalculate derives subtotal, tax, total and balance from the items.
func (s *InvoiceService) Recalculate(ctx context.Context, id string) (*models.Invoice, error) {
	return s.mutate(ctx, id, func(invoice *models.Invoice, _ time.Time) error {
		if !invoice.CanBeModified() {
			return ruleError("Invoice can no longer be modified.")
		}
		invoice.CalculateTotals(s.settings.TaxRate)
		return nil
	})
}

func (s *InvoiceService) SetDiscount(ctx context.Context, id string, amount decimal.Decimal) (*models.Invoice, error) {
	if amount.IsNegative() {
		return nil, ruleError("Discount cannot be negative.")
	}
	return s.mutate(ctx, id, func(invoice *models.Invoice, _ time.Time) error {
		if !invoice.CanBeModified() {
			return ruleError("Invoice can no longer be modified.")
		}
		invoice.DiscountAmount = amount
		invoice.CalculateTotals(s.settings.TaxRate)
		if invoice.TotalAmount.IsNegative() {
			return ruleError("Discount exceeds the invoice total.")
		}
		return nil
	})
}

// RecordPayment books a payment against an approved or locked invoice and
// mirrors the payment state onto the appointment.
func (s *InvoiceService) RecordPayment(ctx context.Context, id string, amount decimal.Decimal, method string) (*models.Invoice, error) {
	if !amount.IsPositive() {
		return nil, ruleError("Payment amount must be positive.")
	}

	var invoice *models.Invoice
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		invoice, err = tx.Invoices.GetWithItems(ctx, id)
		if err != nil {
			return orNotFound(err, "Invoice not found")
		}
		if invoice.Status != models.InvoiceApproved && invoice.Status != models.InvoiceLocked {
			return ruleError("Payments can only be recorded on approved or locked invoices.")
		}

		now := s.settings.now()
		invoice.AmountPaid = invoice.AmountPaid.Add(amount)
		invoice.UpdateBalance()
		if !invoice.Balance.IsPositive() {
			invoice.Status = models.InvoicePaid
			invoice.PaidAt = &now
		}
		if err := tx.Invoices.Save(ctx, invoice); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}

		appointment, err := tx.Appointments.GetByID(ctx, invoice.AppointmentID)
		if err != nil {
			return orNotFound(err, "Appointment not found")
		}
		appointment.AmountPaid = invoice.AmountPaid
		if method != "" {
			appointment.PaymentMethod = method
		}
		if invoice.IsPaid() {
			appointment.PaymentStatus = models.PaymentPaid
			appointment.PaidAt = &now
		} else {
			appointment.PaymentStatus = models.PaymentPartial
		}
		if err := tx.Appointments.Save(ctx, appointment); err != nil {
			return fmt.Errorf("save appointment payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"invoice_id": invoice.ID,
		"amount":     amount.StringFixed(2),
		"balance":    invoice.Balance.StringFixed(2),
		"status":     invoice.Status,
	}).Info("payment recorded")
	return invoice, nil
}

func (s *InvoiceService) mutate(ctx context.Context, id string, apply func(*models.Invoice, time.Time) error) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		invoice, err = tx.Invoices.GetWithItems(ctx, id)
		if err != nil {
			return orNotFound(err, "Invoice not found")
		}
		if err := apply(invoice, s.settings.now()); err != nil {
			return err
		}
		if err := tx.Invoices.Save(ctx, invoice); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}
