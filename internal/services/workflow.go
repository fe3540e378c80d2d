package services

import (
	"context"
	"fmt"

	"autoshop-server/internal/models"
	"autoshop-server/internal/repository"
)

// transition moves the appointment to the next status if the workflow allows
// it. Leaving waiting_for_approval requires every customer approval to be
// answered. The caller persists the appointment.
func transition(ctx context.Context, tx *repository.Store, appointment *models.Appointment, to models.AppointmentStatus) error {
	if !appointment.Status.CanTransitionTo(to) {
		return ruleError("Cannot change appointment status from %s to %s", appointment.Status, to)
	}
	if appointment.Status == models.StatusWaitingForApproval {
		pending, err := tx.Modifications.CountPendingApprovals(ctx, appointment.ID)
		if err != nil {
			return fmt.Errorf("count pending approvals: %w", err)
		}
		if pending > 0 {
			return ruleError("Appointment still has %d pending customer approval(s)", pending)
		}
	}
	appointment.Status = to
	return nil
}

// canView reports whether the actor takes part in the appointment.
func canView(actor models.Actor, appointment *models.Appointment) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStaff:
		return appointment.HasStaff(actor.ID)
	case models.RoleCustomer:
		return appointment.CustomerID == actor.ID
	}
	return false
}

// isOwnerOrAdmin reports whether the actor is the booking customer or an admin.
func isOwnerOrAdmin(actor models.Actor, appointment *models.Appointment) bool {
	return actor.IsAdmin() || (actor.IsCustomer() && appointment.CustomerID == actor.ID)
}

// isAssignedOrAdmin reports whether the actor is the assigned staff member or an admin.
func isAssignedOrAdmin(actor models.Actor, appointment *models.Appointment) bool {
	return actor.IsAdmin() || (actor.IsStaff() && appointment.HasStaff(actor.ID))
}
