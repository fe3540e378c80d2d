package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"autoshop-server/internal/models"
	"autoshop-server/internal/notify"
	"autoshop-server/internal/repository"
	"autoshop-server/internal/scheduling"
)

var errTest = errors.New("mail relay unavailable")

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) templates() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.Template)
	}
	return out
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	store    *repository.Store
	notifier *recordingNotifier

	appointments  *AppointmentService
	modifications *ModificationService
	invoices      *InvoiceService
	schedules     *ScheduleService

	customer models.User
	other    models.User
	staff    models.User
	admin    models.User
	vehicle  models.Vehicle
	oil      models.ServiceType
	brakes   models.ServiceType
}

// fixtureNow is Sunday 2026-03-01 12:00 UTC; bookings go on Monday.
var fixtureNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func monday(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	settings := Settings{
		Hours:   scheduling.DefaultShopHours(),
		TaxRate: decimal.NewFromFloat(0.10),
		Now:     func() time.Time { return fixtureNow },
	}
	store := repository.NewStore(db, nil)
	notifier := &recordingNotifier{}
	invoices := NewInvoiceService(store, settings, logger)

	f := &fixture{
		t:             t,
		ctx:           context.Background(),
		db:            db,
		store:         store,
		notifier:      notifier,
		invoices:      invoices,
		appointments:  NewAppointmentService(store, settings, invoices, notifier, logger),
		modifications: NewModificationService(store, settings, logger),
		schedules:     NewScheduleService(store, settings, logger),
	}

	f.customer = f.createUser("jane@example.com", models.RoleCustomer)
	f.other = f.createUser("john@example.com", models.RoleCustomer)
	f.staff = f.createUser("mech@example.com", models.RoleStaff)
	f.admin = f.createUser("boss@example.com", models.RoleAdmin)

	f.vehicle = models.Vehicle{CustomerID: f.customer.ID, Make: "Toyota", Model: "Corolla", Year: 2019, PlateNumber: "ABC-123"}
	f.mustCreate(&f.vehicle)

	f.oil = models.ServiceType{Name: "Oil change", Price: decimal.NewFromInt(100), DurationMinutes: 60, IsActive: true}
	f.brakes = models.ServiceType{Name: "Brake inspection", Price: decimal.NewFromInt(50), DurationMinutes: 30, IsActive: true}
	f.mustCreate(&f.oil)
	f.mustCreate(&f.brakes)

	if _, err := f.schedules.UpsertStaffSchedule(f.ctx, StaffScheduleInput{
		StaffID: f.staff.ID, Day: models.Monday, StartMinute: 8 * 60, EndMinute: 18 * 60, IsAvailable: true,
	}); err != nil {
		t.Fatalf("staff schedule: %v", err)
	}
	return f
}

func (f *fixture) createUser(email string, role models.Role) models.User {
	u := models.User{Email: email, FirstName: "Test", LastName: string(role), Role: role}
	f.mustCreate(&u)
	return u
}

func (f *fixture) mustCreate(value interface{}) {
	f.t.Helper()
	if err := f.db.Create(value).Error; err != nil {
		f.t.Fatalf("create %T: %v", value, err)
	}
}

func actorOf(u models.User) models.Actor {
	return models.Actor{ID: u.ID, Role: u.Role}
}

// book creates an appointment for the fixture customer assigned to the fixture staff.
func (f *fixture) book(start time.Time, services ...models.ServiceType) *models.Appointment {
	f.t.Helper()
	ids := make([]string, 0, len(services))
	for _, s := range services {
		ids = append(ids, s.ID)
	}
	a, err := f.appointments.Create(f.ctx, actorOf(f.customer), BookingInput{
		VehicleID:      f.vehicle.ID,
		ServiceTypeIDs: ids,
		StartTime:      start,
		StaffID:        f.staff.ID,
	})
	if err != nil {
		f.t.Fatalf("book %v: %v", start, err)
	}
	return a
}

// startWork moves an appointment from pending to in_progress as its staff member.
func (f *fixture) startWork(id string) {
	f.t.Helper()
	for _, status := range []models.AppointmentStatus{models.StatusConfirmed, models.StatusInProgress} {
		if _, err := f.appointments.UpdateStatus(f.ctx, actorOf(f.staff), id, status); err != nil {
			f.t.Fatalf("set %s: %v", status, err)
		}
	}
}

func (f *fixture) reload(id string) *models.Appointment {
	f.t.Helper()
	a, err := f.store.Appointments.GetWithServices(f.ctx, id)
	if err != nil {
		f.t.Fatalf("reload appointment: %v", err)
	}
	return a
}

func expectRule(t *testing.T, err error, kind ErrorKind, reason string) {
	t.Helper()
	re, ok := AsRuleError(err)
	if !ok {
		t.Fatalf("expected rule error %q, got %v", reason, err)
	}
	if re.Kind != kind {
		t.Fatalf("expected kind %d, got %d (%q)", kind, re.Kind, re.Reason)
	}
	if reason != "" && re.Reason != reason {
		t.Fatalf("expected reason %q, got %q", reason, re.Reason)
	}
}
