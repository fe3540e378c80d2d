package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Store groups the repositories so that a unit of work can run them all
// against one transaction.
type Store struct {
	db     *gorm.DB
	txOpts *sql.TxOptions

	Users         UserRepository
	ServiceTypes  ServiceTypeRepository
	Appointments  AppointmentRepository
	Schedules     ScheduleRepository
	Modifications ModificationRepository
	Invoices      InvoiceRepository
	Sequences     SequenceRepository
	Availability  *GormAvailabilityRepository
}

func NewStore(db *gorm.DB, txOpts *sql.TxOptions) *Store {
	return &Store{
		db:            db,
		txOpts:        txOpts,
		Users:         NewGormUserRepository(db),
		ServiceTypes:  NewGormServiceTypeRepository(db),
		Appointments:  NewGormAppointmentRepository(db),
		Schedules:     NewGormScheduleRepository(db),
		Modifications: NewGormModificationRepository(db),
		Invoices:      NewGormInvoiceRepository(db),
		Sequences:     NewGormSequenceRepository(db),
		Availability:  NewGormAvailabilityRepository(db),
	}
}

// Transaction runs fn with a Store bound to a single transaction. Any error
// returned by fn rolls back every write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(NewStore(db, s.txOpts))
	}, s.txOpts)
}
