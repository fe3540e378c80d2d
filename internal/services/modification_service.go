package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"autoshop-server/internal/models"
	"autoshop-server/internal/repository"
)

// ModificationInput is extra work proposed by staff during a job.
type ModificationInput struct {
	Type          models.ModificationType
	ItemName      string
	Description   string
	Quantity      int
	UnitPrice     decimal.Decimal
	ServiceTypeID string
	Reason        string
}

// ModificationService runs the propose / approve / reject workflow for
// changes to a job that need the customer's consent.
type ModificationService struct {
	store    *repository.Store
	settings Settings
	logger   *logrus.Logger
}

func NewModificationService(store *repository.Store, settings Settings, logger *logrus.Logger) *ModificationService {
	return &ModificationService{store: store, settings: settings, logger: logger}
}

// Propose records a modification awaiting approval, asks the customer for
// approval and parks the appointment in waiting_for_approval.
func (s *ModificationService) Propose(ctx context.Context, actor models.Actor, appointmentID string, in ModificationInput) (*models.ServiceModification, error) {
	if in.Quantity < 1 {
		return nil, ruleError("Quantity must be at least 1")
	}
	if in.UnitPrice.IsNegative() {
		return nil, ruleError("Unit price cannot be negative")
	}

	var modification *models.ServiceModification
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		appointment, err := tx.Appointments.GetByID(ctx, appointmentID)
		if err != nil {
			return orNotFound(err, "Appointment not found")
		}
		if !isAssignedOrAdmin(actor, appointment) {
			return forbidden("You can only modify appointments assigned to you")
		}
		if appointment.Status != models.StatusInProgress && appointment.Status != models.StatusConfirmed {
			return ruleError("Modifications can only be made to confirmed or in-progress appointments")
		}

		modification = &models.ServiceModification{
			AppointmentID:    appointment.ID,
			ModifiedBy:       actor.ID,
			ModificationType: in.Type,
			ItemName:         in.ItemName,
			Description:      in.Description,
			Quantity:         in.Quantity,
			UnitPrice:        in.UnitPrice,
			TotalPrice:       in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
			Status:           models.ModificationPendingApproval,
			Reason:           in.Reason,
		}
		if in.ServiceTypeID != "" {
			modification.ServiceTypeID = &in.ServiceTypeID
		}
		if err := tx.Modifications.Create(ctx, modification); err != nil {
			return fmt.Errorf("create modification: %w", err)
		}

		approval := &models.CustomerApproval{
			AppointmentID:  appointment.ID,
			ApprovalType:   models.ApprovalServiceModification,
			Status:         models.ApprovalPending,
			RequestDetails: fmt.Sprintf("%s: %s x%d", modification.ModificationType, modification.ItemName, modification.Quantity),
			OriginalAmount: appointment.TotalPrice,
			NewAmount:      appointment.TotalPrice.Add(modification.TotalPrice),
			RequestedAt:    s.settings.now(),
		}
		if err := tx.Modifications.CreateApproval(ctx, approval); err != nil {
			return fmt.Errorf("create customer approval: %w", err)
		}

		if appointment.Status != models.StatusWaitingForApproval {
			if err := transition(ctx, tx, appointment, models.StatusWaitingForApproval); err != nil {
				return err
			}
			if err := tx.Appointments.Save(ctx, appointment); err != nil {
				return fmt.Errorf("save appointment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"modification_id": modification.ID,
		"appointment_id":  appointmentID,
		"total":           modification.TotalPrice.StringFixed(2),
	}).Info("modification proposed")
	return modification, nil
}

// Approve accepts a pending modification and adds its total to the
// appointment. Work resumes once no approvals are outstanding.
func (s *ModificationService) Approve(ctx context.Context, actor models.Actor, modificationID string) (*models.ServiceModification, error) {
	var modification *models.ServiceModification
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var appointment *models.Appointment
		var err error
		modification, appointment, err = s.loadPending(ctx, tx, actor, modificationID)
		if err != nil {
			return err
		}

		modification.Status = models.ModificationApproved
		if err := tx.Modifications.Save(ctx, modification); err != nil {
			return fmt.Errorf("save modification: %w", err)
		}

		appointment.TotalPrice = appointment.TotalPrice.Add(modification.TotalPrice)
		if err := s.answerLatest(ctx, tx, appointment.ID, models.ApprovalApproved); err != nil {
			return err
		}

		pending, err := tx.Modifications.CountPendingApprovals(ctx, appointment.ID)
		if err != nil {
			return fmt.Errorf("count pending approvals: %w", err)
		}
		if pending == 0 && appointment.Status == models.StatusWaitingForApproval {
			if err := transition(ctx, tx, appointment, models.StatusInProgress); err != nil {
				return err
			}
		}
		if err := tx.Appointments.Save(ctx, appointment); err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"modification_id": modification.ID,
		"appointment_id":  modification.AppointmentID,
		"actor_id":        actor.ID,
	}).Info("modification approved")
	return modification, nil
}

// Reject declines a pending modification. The price stays as it was and
// the appointment status is not touched; staff resume the job explicitly.
func (s *ModificationService) Reject(ctx context.Context, actor models.Actor, modificationID, explanation string) (*models.ServiceModification, error) {
	explanation = strings.TrimSpace(explanation)
	if explanation == "" {
		explanation = "No reason provided"
	}

	var modification *models.ServiceModification
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var appointment *models.Appointment
		var err error
		modification, appointment, err = s.loadPending(ctx, tx, actor, modificationID)
		if err != nil {
			return err
		}

		modification.Status = models.ModificationRejected
		modification.Reason = strings.TrimSpace(modification.Reason + " [REJECTED: " + explanation + "]")
		if err := tx.Modifications.Save(ctx, modification); err != nil {
			return fmt.Errorf("save modification: %w", err)
		}
		return s.answerLatest(ctx, tx, appointment.ID, models.ApprovalRejected)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"modification_id": modification.ID,
		"appointment_id":  modification.AppointmentID,
		"actor_id":        actor.ID,
	}).Info("modification rejected")
	return modification, nil
}

// ModificationHistory is everything proposed for one appointment.
type ModificationHistory struct {
	Modifications []models.ServiceModification `json:"modifications"`
	Approvals     []models.CustomerApproval    `json:"approvals"`
}

func (s *ModificationService) List(ctx context.Context, actor models.Actor, appointmentID string) (*ModificationHistory, error) {
	appointment, err := s.store.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, orNotFound(err, "Appointment not found")
	}
	if !canView(actor, appointment) {
		return nil, forbidden("You are not authorized to view this appointment")
	}

	modifications, err := s.store.Modifications.ListByAppointment(ctx, appointment.ID)
	if err != nil {
		return nil, fmt.Errorf("list modifications: %w", err)
	}
	approvals, err := s.store.Modifications.ListApprovals(ctx, appointment.ID)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	return &ModificationHistory{Modifications: modifications, Approvals: approvals}, nil
}

// loadPending returns a modification still awaiting a decision together with
// its appointment, after checking the actor may decide on it.
func (s *ModificationService) loadPending(ctx context.Context, tx *repository.Store, actor models.Actor, modificationID string) (*models.ServiceModification, *models.Appointment, error) {
	modification, err := tx.Modifications.GetByID(ctx, modificationID)
	if err != nil {
		return nil, nil, orNotFound(err, "Modification not found")
	}
	appointment, err := tx.Appointments.GetByID(ctx, modification.AppointmentID)
	if err != nil {
		return nil, nil, orNotFound(err, "Appointment not found")
	}
	if !canView(actor, appointment) {
		return nil, nil, forbidden("You are not authorized to respond to this modification")
	}
	if modification.Status != models.ModificationPendingApproval {
		return nil, nil, ruleError("This modification has already been processed")
	}
	return modification, appointment, nil
}

func (s *ModificationService) answerLatest(ctx context.Context, tx *repository.Store, appointmentID string, status models.ApprovalStatus) error {
	approval, err := tx.Modifications.LatestPendingApproval(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("load pending approval: %w", err)
	}
	if approval == nil {
		return nil
	}
	now := s.settings.now()
	approval.Status = status
	approval.RespondedAt = &now
	if err := tx.Modifications.SaveApproval(ctx, approval); err != nil {
		return fmt.Errorf("save approval: %w", err)
	}
	return nil
}
