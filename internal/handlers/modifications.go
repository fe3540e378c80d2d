package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"autoshop-server/internal/models"
	"autoshop-server/internal/services"
	"autoshop-server/internal/utils"
)

// ModificationHandler serves the propose / approve / reject workflow.
type ModificationHandler struct {
	modifications *services.ModificationService
	logger        *logrus.Logger
}

func NewModificationHandler(modifications *services.ModificationService, logger *logrus.Logger) *ModificationHandler {
	return &ModificationHandler{modifications: modifications, logger: logger}
}

// ProposeModificationRequest is the staff member's change to a running job.
type ProposeModificationRequest struct {
	ModificationType models.ModificationType `json:"modificationType" binding:"required,oneof=add_service remove_service add_labor add_part adjust_price discount"`
	ItemName         string                  `json:"itemName" binding:"required,max=255"`
	Description      string                  `json:"description"`
	Quantity         int                     `json:"quantity" binding:"required,min=1"`
	UnitPrice        *decimal.Decimal        `json:"unitPrice" binding:"required"`
	ServiceTypeID    string                  `json:"serviceTypeId" binding:"omitempty,uuid"`
	Reason           string                  `json:"reason"`
}

func (h *ModificationHandler) ProposeModification(c *gin.Context) {
	appointmentID, ok := pathID(c, "id", "Appointment")
	if !ok {
		return
	}
	var req ProposeModificationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	modification, err := h.modifications.Propose(c.Request.Context(), actor, appointmentID, services.ModificationInput{
		Type:          req.ModificationType,
		ItemName:      req.ItemName,
		Description:   req.Description,
		Quantity:      req.Quantity,
		UnitPrice:     *req.UnitPrice,
		ServiceTypeID: req.ServiceTypeID,
		Reason:        req.Reason,
	})
	if err != nil {
		respondError(c, h.logger, err, "propose modification")
		return
	}

	utils.Created(c, "Modification submitted for customer approval", modification)
}

func (h *ModificationHandler) ListModifications(c *gin.Context) {
	appointmentID, ok := pathID(c, "id", "Appointment")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	history, err := h.modifications.List(c.Request.Context(), actor, appointmentID)
	if err != nil {
		respondError(c, h.logger, err, "list modifications")
		return
	}

	utils.Success(c, "Modifications fetched successfully", history)
}

func (h *ModificationHandler) ApproveModification(c *gin.Context) {
	id, ok := pathID(c, "id", "Modification")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	modification, err := h.modifications.Approve(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "approve modification")
		return
	}

	utils.Success(c, "Modification approved successfully", modification)
}

type RejectModificationRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

func (h *ModificationHandler) RejectModification(c *gin.Context) {
	id, ok := pathID(c, "id", "Modification")
	if !ok {
		return
	}
	var req RejectModificationRequest
	if c.Request.ContentLength != 0 && !utils.BindAndValidate(c, &req) {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	modification, err := h.modifications.Reject(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		respondError(c, h.logger, err, "reject modification")
		return
	}

	utils.Success(c, "Modification rejected", modification)
}
