package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceDraft           InvoiceStatus = "draft"
	InvoicePendingApproval InvoiceStatus = "pending_approval"
	InvoiceApproved        InvoiceStatus = "approved"
	InvoiceLocked          InvoiceStatus = "locked"
	InvoicePaid            InvoiceStatus = "paid"
	InvoiceCancelled       InvoiceStatus = "cancelled"
)

// Invoice is the bill for one appointment. Once locked only the payment
// fields may change.
type Invoice struct {
	BaseModel
	AppointmentID  string          `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	InvoiceNumber  string          `gorm:"size:32;uniqueIndex;not null" json:"invoiceNumber"`
	Status         InvoiceStatus   `gorm:"size:20;default:'draft'" json:"status"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"taxAmount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discountAmount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amountPaid"`
	Balance        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"balance"`
	Notes          string          `gorm:"type:text" json:"notes"`
	ApprovedAt     *time.Time      `json:"approvedAt,omitempty"`
	LockedAt       *time.Time      `json:"lockedAt,omitempty"`
	PaidAt         *time.Time      `json:"paidAt,omitempty"`
	ApprovedBy     *string         `gorm:"size:36" json:"approvedBy,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

func (i *Invoice) IsLocked() bool {
	return i.Status == InvoiceLocked || i.LockedAt != nil
}

func (i *Invoice) IsPaid() bool {
	return i.Status == InvoicePaid
}

// CanBeModified guards every change to items, discount and totals.
func (i *Invoice) CanBeModified() bool {
	if i.IsLocked() || i.IsPaid() {
		return false
	}
	switch i.Status {
	case InvoiceDraft, InvoicePendingApproval, InvoiceApproved:
		return true
	}
	return false
}

// CalculateTotals recomputes the money columns from the loaded items.
func (i *Invoice) CalculateTotals(taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	for _, item := range i.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	i.Subtotal = subtotal
	i.TaxAmount = subtotal.Mul(taxRate).Round(2)
	i.TotalAmount = subtotal.Add(i.TaxAmount).Sub(i.DiscountAmount)
	i.UpdateBalance()
}

func (i *Invoice) UpdateBalance() {
	i.Balance = i.TotalAmount.Sub(i.AmountPaid)
}

// InvoiceItem is one billed line.
type InvoiceItem struct {
	BaseModel
	InvoiceID     string          `gorm:"size:36;index;not null" json:"invoiceId"`
	ItemType      string          `gorm:"size:30;not null" json:"itemType"`
	ItemName      string          `gorm:"size:255;not null" json:"itemName"`
	Description   string          `gorm:"type:text" json:"description"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	ServiceTypeID *string         `gorm:"size:36" json:"serviceTypeId,omitempty"`
}

// NewInvoiceItem prices a line as quantity × unit price.
func NewInvoiceItem(itemType, name, description string, quantity int, unitPrice decimal.Decimal, serviceTypeID *string) InvoiceItem {
	return InvoiceItem{
		ItemType:      itemType,
		ItemName:      name,
		Description:   description,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalPrice:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		ServiceTypeID: serviceTypeID,
	}
}

// SequenceCounter backs the per-day job order and invoice numbers.
type SequenceCounter struct {
	Scope     string `gorm:"primaryKey;size:32"`
	Value     int64  `gorm:"not null"`
	UpdatedAt time.Time
}
