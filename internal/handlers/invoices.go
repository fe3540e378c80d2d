package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"autoshop-server/internal/services"
	"autoshop-server/internal/utils"
)

// InvoiceHandler exposes the admin side of invoicing.
type InvoiceHandler struct {
	invoices *services.InvoiceService
	logger   *logrus.Logger
}

func NewInvoiceHandler(invoices *services.InvoiceService, logger *logrus.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, logger: logger}
}

// CreateInvoice bills a completed appointment by hand.
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	appointmentID, ok := pathID(c, "id", "Appointment")
	if !ok {
		return
	}

	invoice, err := h.invoices.CreateFromAppointment(c.Request.Context(), appointmentID)
	if err != nil {
		respondError(c, h.logger, err, "create invoice")
		return
	}

	utils.Created(c, "Invoice created successfully", invoice)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := pathID(c, "id", "Invoice")
	if !ok {
		return
	}

	invoice, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "fetch invoice")
		return
	}

	utils.Success(c, "Invoice fetched successfully", invoice)
}

func (h *InvoiceHandler) ApproveInvoice(c *gin.Context) {
	id, ok := pathID(c, "id", "Invoice")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	invoice, err := h.invoices.Approve(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "approve invoice")
		return
	}

	utils.Success(c, "Invoice approved successfully", invoice)
}

func (h *InvoiceHandler) LockInvoice(c *gin.Context) {
	id, ok := pathID(c, "id", "Invoice")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	invoice, err := h.invoices.Lock(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "lock invoice")
		return
	}

	utils.Success(c, "Invoice locked successfully", invoice)
}

func (h *InvoiceHandler) RecalculateInvoice(c *gin.Context) {
	id, ok := pathID(c, "id", "Invoice")
	if !ok {
		return
	}

	invoice, err := h.invoices.Recalculate(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "recalculate invoice")
		return
	}

	utils.Success(c, "Invoice totals recalculated", invoice)
}

type DiscountRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

func (h *InvoiceHandler) SetDiscount(c *gin.Context) {
	id, ok := pathID(c, "id", "Invoice")
	if !ok {
		return
	}
	var req DiscountRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	invoice, err := h.invoices.SetDiscount(c.Request.Context(), id, *req.Amount)
	if err != nil {
		respondError(c, h.logger, err, "apply discount")
		return
	}

	utils.Success(c, "Discount applied successfully", invoice)
}

type PaymentRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Method string           `json:"method" binding:"max=50"`
}

func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := pathID(c, "id", "Invoice")
	if !ok {
		return
	}
	var req PaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	invoice, err := h.invoices.RecordPayment(c.Request.Context(), id, *req.Amount, req.Method)
	if err != nil {
		respondError(c, h.logger, err, "record payment")
		return
	}

	utils.Success(c, "Payment recorded successfully", invoice)
}
