package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"autoshop-server/internal/models"
	"autoshop-server/internal/services"
	"autoshop-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	appointments *services.AppointmentService
	logger       *logrus.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService, logger *logrus.Logger) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, logger: logger}
}

// CreateAppointmentRequest represents the request body for booking an appointment.
type CreateAppointmentRequest struct {
	VehicleID      string    `json:"vehicleId" binding:"required,uuid"`
	ServiceTypeIDs []string  `json:"serviceTypeIds" binding:"required,min=1,dive,uuid"`
	StartTime      time.Time `json:"startTime" binding:"required"`
	StaffID        string    `json:"staffId" binding:"omitempty,uuid"`
	AutoAssign     bool      `json:"autoAssign"`
	Notes          string    `json:"notes" binding:"max=2000"`
}

// CreateAppointment books an appointment for the calling customer.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	appointment, err := h.appointments.Create(c.Request.Context(), actor, services.BookingInput{
		VehicleID:      req.VehicleID,
		ServiceTypeIDs: req.ServiceTypeIDs,
		StartTime:      req.StartTime,
		StaffID:        req.StaffID,
		AutoAssign:     req.AutoAssign,
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err, "create appointment")
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetAppointmentByID returns one appointment with its booked services.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	id, ok := pathID(c, "id", "Appointment")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	appointment, err := h.appointments.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "fetch appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// RescheduleAppointmentRequest replaces the time, vehicle and services of a booking.
type RescheduleAppointmentRequest struct {
	VehicleID      string    `json:"vehicleId" binding:"required,uuid"`
	ServiceTypeIDs []string  `json:"serviceTypeIds" binding:"required,min=1,dive,uuid"`
	StartTime      time.Time `json:"startTime" binding:"required"`
	Notes          string    `json:"notes" binding:"max=2000"`
}

func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	id, ok := pathID(c, "id", "Appointment")
	if !ok {
		return
	}
	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	appointment, err := h.appointments.Reschedule(c.Request.Context(), actor, id, services.RescheduleInput{
		VehicleID:      req.VehicleID,
		ServiceTypeIDs: req.ServiceTypeIDs,
		StartTime:      req.StartTime,
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err, "reschedule appointment")
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appointment)
}

func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	id, ok := pathID(c, "id", "Appointment")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	appointment, err := h.appointments.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "cancel appointment")
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appointment)
}

// AvailabilityQuery is shared by the slot listing and the single-slot check.
type AvailabilityQuery struct {
	Date       string `form:"date"`
	StartTime  string `form:"start_time"`
	ServiceIDs string `form:"service_ids" binding:"required"`
	StaffID    string `form:"staff_id" binding:"omitempty,uuid"`
}

func (q AvailabilityQuery) serviceIDs() []string {
	var ids []string
	for _, id := range strings.Split(q.ServiceIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// GetAvailableSlots lists the bookable start times of one day.
func (h *AppointmentHandler) GetAvailableSlots(c *gin.Context) {
	var q AvailabilityQuery
	if !utils.BindQuery(c, &q) {
		return
	}
	if q.Date == "" {
		utils.ValidationFailed(c, map[string]string{"date": "is required"})
		return
	}
	day, err := h.appointments.ParseDay(q.Date)
	if err != nil {
		utils.ValidationFailed(c, map[string]string{"date": "must use the YYYY-MM-DD format"})
		return
	}

	slots, err := h.appointments.AvailableSlots(c.Request.Context(), day, q.serviceIDs(), q.StaffID)
	if err != nil {
		respondError(c, h.logger, err, "list available slots")
		return
	}

	utils.Success(c, "Available slots fetched successfully", gin.H{
		"date":  q.Date,
		"slots": slots,
	})
}

// CheckAvailability evaluates a single candidate start time.
func (h *AppointmentHandler) CheckAvailability(c *gin.Context) {
	var q AvailabilityQuery
	if !utils.BindQuery(c, &q) {
		return
	}
	start, err := time.Parse(time.RFC3339, q.StartTime)
	if err != nil {
		utils.ValidationFailed(c, map[string]string{"start_time": "must be an RFC 3339 timestamp"})
		return
	}

	result, err := h.appointments.CheckAvailability(c.Request.Context(), start, q.serviceIDs(), q.StaffID)
	if err != nil {
		respondError(c, h.logger, err, "check availability")
		return
	}

	utils.Success(c, "Availability checked", result)
}

// UpdateAppointmentStatusRequest represents the request body for a staff status change.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=confirmed in_progress completed cancelled"`
}

func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "Appointment")
	if !ok {
		return
	}
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	appointment, err := h.appointments.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		respondError(c, h.logger, err, "update appointment status")
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

type UpdateNotesRequest struct {
	StaffNotes string `json:"staffNotes" binding:"max=5000"`
}

func (h *AppointmentHandler) UpdateStaffNotes(c *gin.Context) {
	id, ok := pathID(c, "id", "Appointment")
	if !ok {
		return
	}
	var req UpdateNotesRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	appointment, err := h.appointments.UpdateNotes(c.Request.Context(), actor, id, req.StaffNotes)
	if err != nil {
		respondError(c, h.logger, err, "update staff notes")
		return
	}

	utils.Success(c, "Notes updated successfully", appointment)
}

// AssignStaffRequest names the staff member; leave it empty to auto-assign.
type AssignStaffRequest struct {
	StaffID string `json:"staffId" binding:"omitempty,uuid"`
}

func (h *AppointmentHandler) AssignStaff(c *gin.Context) {
	id, ok := pathID(c, "id", "Appointment")
	if !ok {
		return
	}
	var req AssignStaffRequest
	if c.Request.ContentLength != 0 && !utils.BindAndValidate(c, &req) {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	appointment, err := h.appointments.AssignStaff(c.Request.Context(), actor, id, req.StaffID)
	if err != nil {
		respondError(c, h.logger, err, "assign staff")
		return
	}

	utils.Success(c, "Staff assigned successfully", appointment)
}
