package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"autoshop-server/internal/models"
	"autoshop-server/internal/notify"
	"autoshop-server/internal/repository"
	"autoshop-server/internal/scheduling"
)

// BookingInput is a customer's booking request.
type BookingInput struct {
	VehicleID      string
	ServiceTypeIDs []string
	StartTime      time.Time
	StaffID        string
	// AutoAssign picks a free staff member when StaffID is empty.
	AutoAssign bool
	Notes      string
}

// RescheduleInput replaces the time, services and notes of a booking.
type RescheduleInput struct {
	VehicleID      string
	ServiceTypeIDs []string
	StartTime      time.Time
	Notes          string
}

// AppointmentService runs the appointment lifecycle: booking, rescheduling,
// cancelling and the staff-driven status changes.
type AppointmentService struct {
	store    *repository.Store
	settings Settings
	invoices *InvoiceService
	notifier notify.Notifier
	logger   *logrus.Logger
}

func NewAppointmentService(store *repository.Store, settings Settings, invoices *InvoiceService, notifier notify.Notifier, logger *logrus.Logger) *AppointmentService {
	return &AppointmentService{
		store:    store,
		settings: settings,
		invoices: invoices,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *AppointmentService) calculator(tx *repository.Store) *scheduling.Calculator {
	return scheduling.NewCalculator(tx.Availability, s.settings.Hours, s.settings.now)
}

// CheckAvailability runs the booking rules without writing anything.
func (s *AppointmentService) CheckAvailability(ctx context.Context, start time.Time, serviceTypeIDs []string, staffID string) (scheduling.Availability, error) {
	services, err := loadServices(ctx, s.store, serviceTypeIDs)
	if err != nil {
		return scheduling.Availability{}, err
	}
	return s.calculator(s.store).Check(ctx, scheduling.Request{
		Start:    normalize(start),
		Services: services,
		StaffID:  staffID,
	})
}

// AvailableSlots lists bookable start times on date for the given services.
func (s *AppointmentService) AvailableSlots(ctx context.Context, date time.Time, serviceTypeIDs []string, staffID string) ([]scheduling.Slot, error) {
	services, err := loadServices(ctx, s.store, serviceTypeIDs)
	if err != nil {
		return nil, err
	}
	return s.calculator(s.store).AvailableSlots(ctx, date, services, staffID)
}

// ParseDay reads a "2006-01-02" calendar day in the shop's time zone.
func (s *AppointmentService) ParseDay(value string) (time.Time, error) {
	loc := s.settings.Hours.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation("2006-01-02", value, loc)
}

// Create books an appointment. The availability check, the job order number
// and the inserts share one transaction.
func (s *AppointmentService) Create(ctx context.Context, actor models.Actor, in BookingInput) (*models.Appointment, error) {
	start := normalize(in.StartTime)

	var appointment *models.Appointment
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		services, err := loadServices(ctx, tx, in.ServiceTypeIDs)
		if err != nil {
			return err
		}
		if err := checkVehicle(ctx, tx, actor, in.VehicleID); err != nil {
			return err
		}
		if in.StaffID != "" {
			if err := checkStaff(ctx, tx, in.StaffID); err != nil {
				return err
			}
		}

		calc := s.calculator(tx)
		result, err := calc.Check(ctx, scheduling.Request{Start: start, Services: services, StaffID: in.StaffID})
		if err != nil {
			return fmt.Errorf("check availability: %w", err)
		}
		if !result.Available {
			return ruleError("%s", result.Reason)
		}

		end := start.Add(models.TotalDuration(services))
		staffID := in.StaffID
		if staffID == "" && in.AutoAssign {
			if staffID, err = calc.Assigner().AutoAssign(ctx, start, calc.BufferedEnd(start, services)); err != nil {
				return err
			}
		}

		number, err := nextNumber(ctx, tx, s.logger, jobOrderPrefix, s.settings.Hours.Local(s.settings.now()))
		if err != nil {
			return err
		}

		appointment = &models.Appointment{
			CustomerID:     actor.ID,
			VehicleID:      in.VehicleID,
			StartTime:      start,
			EndTime:        end,
			Status:         models.StatusPending,
			Notes:          in.Notes,
			TotalPrice:     models.TotalPrice(services),
			JobOrderNumber: number,
			PaymentStatus:  models.PaymentUnpaid,
			PaymentMethod:  models.DefaultPaymentMethod,
			AmountPaid:     decimal.Zero,
			Services:       bookedServices(services),
		}
		if staffID != "" {
			appointment.StaffID = &staffID
		}
		if err := tx.Appointments.Create(ctx, appointment); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		appointment.Services = withCatalogue(appointment.Services, services)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"appointment_id":   appointment.ID,
		"job_order_number": appointment.JobOrderNumber,
		"customer_id":      actor.ID,
		"start_time":       appointment.StartTime,
		"total":            appointment.TotalPrice.StringFixed(2),
	}).Info("appointment booked")

	s.notifyCustomer(ctx, appointment, notify.TemplateBookingConfirmation)
	return appointment, nil
}

func (s *AppointmentService) Get(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	appointment, err := s.store.Appointments.GetWithServices(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Appointment not found")
	}
	if !canView(actor, appointment) {
		return nil, forbidden("You are not authorized to view this appointment")
	}
	return appointment, nil
}

// Reschedule moves a pending or confirmed future appointment, replacing its
// services. The appointment keeps its staff member and job order number.
func (s *AppointmentService) Reschedule(ctx context.Context, actor models.Actor, id string, in RescheduleInput) (*models.Appointment, error) {
	start := normalize(in.StartTime)

	var appointment *models.Appointment
	var previous models.AppointmentStatus
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		appointment, err = tx.Appointments.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Appointment not found")
		}
		if !isOwnerOrAdmin(actor, appointment) {
			return forbidden("You can only modify your own appointments")
		}
		if !appointment.CanBeRescheduled(s.settings.now()) {
			return ruleError("This appointment can no longer be modified")
		}
		previous = appointment.Status

		services, err := loadServices(ctx, tx, in.ServiceTypeIDs)
		if err != nil {
			return err
		}
		owner := models.Actor{ID: appointment.CustomerID, Role: models.RoleCustomer}
		if err := checkVehicle(ctx, tx, owner, in.VehicleID); err != nil {
			return err
		}

		staffID := ""
		if appointment.StaffID != nil {
			staffID = *appointment.StaffID
		}
		result, err := s.calculator(tx).Check(ctx, scheduling.Request{
			Start:                start,
			Services:             services,
			StaffID:              staffID,
			ExcludeAppointmentID: appointment.ID,
		})
		if err != nil {
			return fmt.Errorf("check availability: %w", err)
		}
		if !result.Available {
			return ruleError("%s", result.Reason)
		}

		appointment.VehicleID = in.VehicleID
		appointment.StartTime = start
		appointment.EndTime = start.Add(models.TotalDuration(services))
		appointment.TotalPrice = models.TotalPrice(services)
		appointment.Notes = in.Notes
		if err := tx.Appointments.Save(ctx, appointment); err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}

		booked := bookedServices(services)
		if err := tx.Appointments.ReplaceServices(ctx, appointment.ID, booked); err != nil {
			return fmt.Errorf("replace services: %w", err)
		}
		appointment.Services = withCatalogue(booked, services)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if appointment.Status != previous {
		s.notifyCustomer(ctx, appointment, notify.TemplateStatusChanged)
	}
	return appointment, nil
}

// Cancel cancels a pending or confirmed future appointment. Prices and
// financial records are left as they are.
func (s *AppointmentService) Cancel(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	var appointment *models.Appointment
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		appointment, err = tx.Appointments.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Appointment not found")
		}
		if !isOwnerOrAdmin(actor, appointment) {
			return forbidden("You can only cancel your own appointments")
		}
		if !appointment.CanBeCancelled(s.settings.now()) {
			return ruleError("This appointment can no longer be cancelled")
		}
		if err := transition(ctx, tx, appointment, models.StatusCancelled); err != nil {
			return err
		}
		return tx.Appointments.Save(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	s.notifyCustomer(ctx, appointment, notify.TemplateStatusChanged)
	return appointment, nil
}

// UpdateStatus is the staff-driven status change. Completing a job creates
// its invoice; a failure there is logged and does not undo the status.
func (s *AppointmentService) UpdateStatus(ctx context.Context, actor models.Actor, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	switch status {
	case models.StatusConfirmed, models.StatusInProgress, models.StatusCompleted, models.StatusCancelled:
	default:
		return nil, ruleError("Status %q cannot be set directly", status)
	}

	var appointment *models.Appointment
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		appointment, err = tx.Appointments.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Appointment not found")
		}
		if !isAssignedOrAdmin(actor, appointment) {
			return forbidden("You can only update appointments assigned to you")
		}
		if err := transition(ctx, tx, appointment, status); err != nil {
			return err
		}
		return tx.Appointments.Save(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"status":         appointment.Status,
		"actor_id":       actor.ID,
	}).Info("appointment status updated")

	if appointment.Status == models.StatusCompleted {
		s.ensureInvoice(ctx, appointment.ID)
	}
	s.notifyCustomer(ctx, appointment, notify.TemplateStatusChanged)
	return appointment, nil
}

func (s *AppointmentService) ensureInvoice(ctx context.Context, appointmentID string) {
	entry := s.logger.WithField("appointment_id", appointmentID)
	exists, err := s.store.Invoices.ExistsForAppointment(ctx, appointmentID)
	if err != nil {
		entry.WithError(err).Error("checking for existing invoice failed")
		return
	}
	if exists {
		return
	}
	if _, err := s.invoices.CreateFromAppointment(ctx, appointmentID); err != nil {
		entry.WithError(err).Error("automatic invoice creation failed")
	}
}

// UpdateNotes replaces the workshop notes of an assigned appointment.
func (s *AppointmentService) UpdateNotes(ctx context.Context, actor models.Actor, id, notes string) (*models.Appointment, error) {
	var appointment *models.Appointment
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		appointment, err = tx.Appointments.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Appointment not found")
		}
		if !isAssignedOrAdmin(actor, appointment) {
			return forbidden("You can only update appointments assigned to you")
		}
		appointment.StaffNotes = notes
		return tx.Appointments.Save(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// AssignStaff sets the staff member of an open appointment. An empty staffID
// lets the assigner pick the first free staff member.
func (s *AppointmentService) AssignStaff(ctx context.Context, actor models.Actor, id, staffID string) (*models.Appointment, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("Only administrators can assign staff")
	}

	var appointment *models.Appointment
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		appointment, err = tx.Appointments.GetWithServices(ctx, id)
		if err != nil {
			return orNotFound(err, "Appointment not found")
		}
		if appointment.Status.IsTerminal() {
			return ruleError("Cannot assign staff to a %s appointment", appointment.Status)
		}

		services := make([]models.ServiceType, 0, len(appointment.Services))
		for _, booked := range appointment.Services {
			services = append(services, booked.ServiceType)
		}

		calc := s.calculator(tx)
		if staffID == "" {
			end := calc.BufferedEnd(appointment.StartTime, services)
			staffID, err = calc.Assigner().AutoAssignExcluding(ctx, appointment.StartTime, end, appointment.ID)
			if err != nil {
				return err
			}
			if staffID == "" {
				return ruleError("%s", scheduling.ReasonNoStaff)
			}
		} else {
			if err := checkStaff(ctx, tx, staffID); err != nil {
				return err
			}
			result, err := calc.Check(ctx, scheduling.Request{
				Start:                appointment.StartTime,
				Services:             services,
				StaffID:              staffID,
				ExcludeAppointmentID: appointment.ID,
			})
			if err != nil {
				return fmt.Errorf("check availability: %w", err)
			}
			if !result.Available {
				return ruleError("%s", result.Reason)
			}
		}

		appointment.StaffID = &staffID
		return tx.Appointments.Save(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *AppointmentService) notifyCustomer(ctx context.Context, appointment *models.Appointment, template string) {
	if s.notifier == nil {
		return
	}
	entry := s.logger.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"template":       template,
	})

	customer, err := s.store.Users.GetByID(ctx, appointment.CustomerID)
	if err != nil {
		entry.WithError(err).Warn("notification skipped: customer lookup failed")
		return
	}

	msg := notify.Message{
		To:       customer.Email,
		Template: template,
		Data: map[string]interface{}{
			"customer_name":    customer.FullName(),
			"job_order_number": appointment.JobOrderNumber,
			"status":           string(appointment.Status),
			"start_time":       s.settings.Hours.Local(appointment.StartTime).Format("2006-01-02 15:04"),
			"total_price":      appointment.TotalPrice.StringFixed(2),
		},
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		entry.WithError(err).Warn("notification failed")
	}
}

// loadServices resolves every requested id to an active service type.
func loadServices(ctx context.Context, store *repository.Store, ids []string) ([]models.ServiceType, error) {
	if len(ids) == 0 {
		return nil, ruleError("At least one service must be selected")
	}
	services, err := store.ServiceTypes.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load service types: %w", err)
	}
	if len(services) != len(ids) {
		return nil, ruleError("One or more service types not found")
	}
	return services, nil
}

func checkVehicle(ctx context.Context, tx *repository.Store, owner models.Actor, vehicleID string) error {
	vehicle, err := tx.Users.GetVehicle(ctx, vehicleID)
	if err != nil {
		return orNotFound(err, "Vehicle not found")
	}
	if !owner.IsAdmin() && vehicle.CustomerID != owner.ID {
		return forbidden("Vehicle does not belong to you")
	}
	return nil
}

func checkStaff(ctx context.Context, tx *repository.Store, staffID string) error {
	staff, err := tx.Users.GetByID(ctx, staffID)
	if err != nil {
		return orNotFound(err, "Staff member not found")
	}
	if staff.Role != models.RoleStaff {
		return ruleError("Selected user is not a staff member")
	}
	return nil
}

func bookedServices(services []models.ServiceType) []models.BookedService {
	out := make([]models.BookedService, 0, len(services))
	for _, st := range services {
		out = append(out, models.BookedService{
			ServiceTypeID: st.ID,
			Price:         st.Price,
		})
	}
	return out
}

// withCatalogue fills the catalogue entries of freshly stored booked services.
func withCatalogue(booked []models.BookedService, services []models.ServiceType) []models.BookedService {
	for i := range booked {
		booked[i].ServiceType = services[i]
	}
	return booked
}

// normalize drops sub-minute precision and stores times in UTC.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}
