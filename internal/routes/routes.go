package routes

import (
	"github.com/gin-gonic/gin"

	"autoshop-server/internal/handlers"
	"autoshop-server/internal/middleware"
	"autoshop-server/internal/models"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Appointments  *handlers.AppointmentHandler
	Modifications *handlers.ModificationHandler
	Schedules     *handlers.ScheduleHandler
	Invoices      *handlers.InvoiceHandler
}

// SetupRoutes configures the application routes. extra middleware (rate
// limiting) runs after authentication so it can key on the user.
func SetupRoutes(router *gin.Engine, h Handlers, jwtSecret string, extra ...gin.HandlerFunc) {
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(jwtSecret))
	private.Use(extra...)
	{
		customer := private.Group("/customer")
		customer.Use(middleware.RoleAuthMiddleware(models.RoleCustomer))
		{
			customer.POST("/appointments", h.Appointments.CreateAppointment)
			customer.GET("/appointments/:id", h.Appointments.GetAppointmentByID)
			customer.PUT("/appointments/:id", h.Appointments.RescheduleAppointment)
			customer.DELETE("/appointments/:id", h.Appointments.CancelAppointment)
			customer.GET("/available-slots", h.Appointments.GetAvailableSlots)
			customer.GET("/availability", h.Appointments.CheckAvailability)
		}

		// Customer, assigned staff and admins; ownership is checked in the service.
		private.GET("/appointments/:id", h.Appointments.GetAppointmentByID)
		private.GET("/appointments/:id/modifications", h.Modifications.ListModifications)
		private.POST("/modifications/:id/approve", h.Modifications.ApproveModification)
		private.POST("/modifications/:id/reject", h.Modifications.RejectModification)

		staff := private.Group("/staff")
		staff.Use(middleware.RoleAuthMiddleware(models.RoleStaff, models.RoleAdmin))
		{
			staff.PATCH("/appointments/:id/status", h.Appointments.UpdateAppointmentStatus)
			staff.PATCH("/appointments/:id/notes", h.Appointments.UpdateStaffNotes)
			staff.POST("/appointments/:id/modifications", h.Modifications.ProposeModification)
		}

		admin := private.Group("/admin")
		admin.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			admin.POST("/appointments/:id/assign-staff", h.Appointments.AssignStaff)
			admin.POST("/appointments/:id/invoice", h.Invoices.CreateInvoice)

			admin.PUT("/schedule/staff", h.Schedules.UpsertStaffSchedule)
			admin.GET("/schedule/staff/:id", h.Schedules.GetStaffSchedules)
			admin.POST("/schedule/blackout", h.Schedules.AddBlackoutDate)
			admin.DELETE("/schedule/blackout/:id", h.Schedules.RemoveBlackoutDate)

			admin.GET("/invoices/:id", h.Invoices.GetInvoice)
			admin.POST("/invoices/:id/approve", h.Invoices.ApproveInvoice)
			admin.POST("/invoices/:id/lock", h.Invoices.LockInvoice)
			admin.POST("/invoices/:id/recalculate", h.Invoices.RecalculateInvoice)
			admin.POST("/invoices/:id/discount", h.Invoices.SetDiscount)
			admin.POST("/invoices/:id/payments", h.Invoices.RecordPayment)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
