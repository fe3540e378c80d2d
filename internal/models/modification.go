package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ModificationType string

const (
	ModificationAddService    ModificationType = "add_service"
	ModificationRemoveService ModificationType = "remove_service"
	ModificationAddLabor      ModificationType = "add_labor"
	ModificationAddPart       ModificationType = "add_part"
	ModificationAdjustPrice   ModificationType = "adjust_price"
	ModificationDiscount      ModificationType = "discount"
)

type ModificationStatus string

const (
	ModificationPendingApproval ModificationStatus = "pending_approval"
	ModificationApproved        ModificationStatus = "approved"
	ModificationRejected        ModificationStatus = "rejected"
)

// ServiceModification is extra work proposed by staff during a job.
type ServiceModification struct {
	BaseModel
	AppointmentID    string             `gorm:"size:36;index;not null" json:"appointmentId"`
	ModifiedBy       string             `gorm:"size:36;not null" json:"modifiedBy"`
	ModificationType ModificationType   `gorm:"size:30;not null" json:"modificationType"`
	ItemName         string             `gorm:"size:255;not null" json:"itemName"`
	Description      string             `gorm:"type:text" json:"description"`
	Quantity         int                `gorm:"not null;default:1" json:"quantity"`
	UnitPrice        decimal.Decimal    `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	TotalPrice       decimal.Decimal    `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	ServiceTypeID    *string            `gorm:"size:36" json:"serviceTypeId,omitempty"`
	Status           ModificationStatus `gorm:"size:30;default:'pending_approval';index" json:"status"`
	Reason           string             `gorm:"type:text" json:"reason"`
}

// InvoiceItemType maps the modification onto the invoice line category.
func (m *ServiceModification) InvoiceItemType() string {
	switch m.ModificationType {
	case ModificationAddService:
		return "service"
	case ModificationAddLabor:
		return "labor"
	case ModificationAddPart:
		return "part"
	}
	return "adjustment"
}

type ApprovalType string

const (
	ApprovalServiceModification ApprovalType = "service_modification"
	ApprovalFinalInvoice        ApprovalType = "final_invoice"
	ApprovalPriceIncrease       ApprovalType = "price_increase"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// CustomerApproval records a decision the customer has to make about a price change.
type CustomerApproval struct {
	BaseModel
	AppointmentID  string          `gorm:"size:36;index;not null" json:"appointmentId"`
	InvoiceID      *string         `gorm:"size:36" json:"invoiceId,omitempty"`
	ApprovalType   ApprovalType    `gorm:"size:30;not null" json:"approvalType"`
	Status         ApprovalStatus  `gorm:"size:20;default:'pending';index" json:"status"`
	RequestDetails string          `gorm:"type:text" json:"requestDetails"`
	OriginalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"originalAmount"`
	NewAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"newAmount"`
	CustomerNotes  string          `gorm:"type:text" json:"customerNotes"`
	RequestedAt    time.Time       `json:"requestedAt"`
	RespondedAt    *time.Time      `json:"respondedAt,omitempty"`
}
