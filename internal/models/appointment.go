package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending            AppointmentStatus = "pending"
	StatusConfirmed          AppointmentStatus = "confirmed"
	StatusInProgress         AppointmentStatus = "in_progress"
	StatusWaitingForApproval AppointmentStatus = "waiting_for_approval"
	StatusCompleted          AppointmentStatus = "completed"
	StatusCancelled          AppointmentStatus = "cancelled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:            {StatusConfirmed, StatusCancelled},
	StatusConfirmed:          {StatusInProgress, StatusWaitingForApproval, StatusCancelled},
	StatusInProgress:         {StatusWaitingForApproval, StatusCompleted},
	StatusWaitingForApproval: {StatusInProgress},
}

// CanTransitionTo reports whether the workflow allows moving from s to next.
// Leaving waiting_for_approval is additionally guarded by the number of
// outstanding customer approvals, which the caller must check.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

const DefaultPaymentMethod = "POS"

// Appointment is a booked repair job. It owns its booked services,
// modifications, approvals and invoice.
type Appointment struct {
	BaseModel
	CustomerID     string            `gorm:"size:36;index;not null" json:"customerId"`
	VehicleID      string            `gorm:"size:36;index;not null" json:"vehicleId"`
	StaffID        *string           `gorm:"size:36;index" json:"staffId"`
	StartTime      time.Time         `gorm:"index;not null" json:"startTime"`
	EndTime        time.Time         `gorm:"index;not null" json:"endTime"`
	Status         AppointmentStatus `gorm:"size:30;default:'pending';index" json:"status"`
	Notes          string            `gorm:"type:text" json:"notes"`
	StaffNotes     string            `gorm:"type:text" json:"staffNotes"`
	TotalPrice     decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	JobOrderNumber string            `gorm:"size:32;uniqueIndex" json:"jobOrderNumber"`
	PaymentStatus  PaymentStatus     `gorm:"size:20;default:'unpaid'" json:"paymentStatus"`
	PaymentMethod  string            `gorm:"size:30;default:'POS'" json:"paymentMethod"`
	AmountPaid     decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0" json:"amountPaid"`
	PaidAt         *time.Time        `json:"paidAt,omitempty"`

	// Relations
	Services []BookedService `gorm:"foreignKey:AppointmentID" json:"services,omitempty"`
}

// HasStaff reports whether staffID is the staff member assigned to the appointment.
func (a *Appointment) HasStaff(staffID string) bool {
	return a.StaffID != nil && *a.StaffID == staffID
}

// CanBeCancelled is true while the job has not started and lies in the future.
func (a *Appointment) CanBeCancelled(now time.Time) bool {
	return (a.Status == StatusPending || a.Status == StatusConfirmed) && a.StartTime.After(now)
}

func (a *Appointment) CanBeRescheduled(now time.Time) bool {
	return a.CanBeCancelled(now)
}

func (a *Appointment) IsPaid() bool {
	return a.PaymentStatus == PaymentPaid
}

func (a *Appointment) HasPendingPayment() bool {
	return a.PaymentStatus != PaymentPaid && a.TotalPrice.GreaterThan(a.AmountPaid)
}

// BookedService attaches a service type to an appointment with the price at booking time.
type BookedService struct {
	BaseModel
	AppointmentID string          `gorm:"size:36;index;not null" json:"appointmentId"`
	ServiceTypeID string          `gorm:"size:36;index;not null" json:"serviceTypeId"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`

	ServiceType ServiceType `gorm:"foreignKey:ServiceTypeID" json:"serviceType"`
}

func (BookedService) TableName() string {
	return "appointment_services"
}
