package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"autoshop-server/internal/config"
	"autoshop-server/internal/models"
	"autoshop-server/internal/services"
	"autoshop-server/internal/utils"
)

// ScheduleHandler manages staff working hours and shop closing days.
type ScheduleHandler struct {
	schedules *services.ScheduleService
	logger    *logrus.Logger
}

func NewScheduleHandler(schedules *services.ScheduleService, logger *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, logger: logger}
}

// StaffScheduleRequest sets one weekday; times are "HH:MM".
type StaffScheduleRequest struct {
	StaffID     string `json:"staffId" binding:"required,uuid"`
	DayOfWeek   string `json:"dayOfWeek" binding:"required"`
	StartTime   string `json:"startTime" binding:"required"`
	EndTime     string `json:"endTime" binding:"required"`
	IsAvailable *bool  `json:"isAvailable"`
}

func (h *ScheduleHandler) UpsertStaffSchedule(c *gin.Context) {
	var req StaffScheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	fields := map[string]string{}
	day, err := models.ParseWeekday(req.DayOfWeek)
	if err != nil {
		fields["dayOfWeek"] = "must be a day name such as monday"
	}
	start, err := config.ParseClock(req.StartTime)
	if err != nil {
		fields["startTime"] = "must use the HH:MM format"
	}
	end, err := config.ParseClock(req.EndTime)
	if err != nil {
		fields["endTime"] = "must use the HH:MM format"
	}
	if len(fields) > 0 {
		utils.ValidationFailed(c, fields)
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	schedule, err := h.schedules.UpsertStaffSchedule(c.Request.Context(), services.StaffScheduleInput{
		StaffID:     req.StaffID,
		Day:         day,
		StartMinute: start,
		EndMinute:   end,
		IsAvailable: available,
	})
	if err != nil {
		respondError(c, h.logger, err, "save staff schedule")
		return
	}

	utils.Success(c, "Staff schedule saved successfully", schedule)
}

func (h *ScheduleHandler) GetStaffSchedules(c *gin.Context) {
	staffID, ok := pathID(c, "id", "Staff")
	if !ok {
		return
	}

	schedules, err := h.schedules.StaffSchedules(c.Request.Context(), staffID)
	if err != nil {
		respondError(c, h.logger, err, "fetch staff schedules")
		return
	}

	utils.Success(c, "Staff schedules fetched successfully", schedules)
}

type BlackoutRequest struct {
	Date        string `json:"date" binding:"required"`
	Reason      string `json:"reason" binding:"required,max=255"`
	Description string `json:"description"`
	IsRecurring bool   `json:"isRecurring"`
}

func (h *ScheduleHandler) AddBlackoutDate(c *gin.Context) {
	var req BlackoutRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.ValidationFailed(c, map[string]string{"date": "must use the YYYY-MM-DD format"})
		return
	}

	blackout, err := h.schedules.AddBlackout(c.Request.Context(), services.BlackoutInput{
		Date:        date,
		Reason:      req.Reason,
		Description: req.Description,
		IsRecurring: req.IsRecurring,
	})
	if err != nil {
		respondError(c, h.logger, err, "add blackout date")
		return
	}

	utils.Created(c, "Blackout date added successfully", blackout)
}

func (h *ScheduleHandler) RemoveBlackoutDate(c *gin.Context) {
	id, ok := pathID(c, "id", "Blackout date")
	if !ok {
		return
	}

	if err := h.schedules.RemoveBlackout(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "remove blackout date")
		return
	}

	utils.Success(c, "Blackout date removed successfully", nil)
}
