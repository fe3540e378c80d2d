package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"autoshop-server/internal/models"
)

type SequenceRepository interface {
	// Next increments the counter for scope and returns the new value.
	// Must run inside a transaction for the read-back to be consistent.
	Next(ctx context.Context, scope string) (int64, error)
	// Ready reports whether the counter table exists.
	Ready(ctx context.Context) bool
	// LastIssued returns the highest value of column in table that starts
	// with prefix, or "" when none does. Soft-deleted rows are included.
	LastIssued(ctx context.Context, table, column, prefix string) (string, error)
}

type GormSequenceRepository struct {
	db *gorm.DB
}

func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

func (r *GormSequenceRepository) Next(ctx context.Context, scope string) (int64, error) {
	db := r.db.WithContext(ctx)
	counter := models.SequenceCounter{Scope: scope, Value: 1}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      gorm.Expr("value + 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&counter).Error
	if err != nil {
		return 0, err
	}

	var stored models.SequenceCounter
	if err := db.First(&stored, "scope = ?", scope).Error; err != nil {
		return 0, err
	}
	return stored.Value, nil
}

func (r *GormSequenceRepository) Ready(ctx context.Context) bool {
	return r.db.WithContext(ctx).Migrator().HasTable(&models.SequenceCounter{})
}

func (r *GormSequenceRepository) LastIssued(ctx context.Context, table, column, prefix string) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Table(table).
		Where(column+" LIKE ?", prefix+"%").
		Order("LENGTH(" + column + ") DESC").
		Order(column + " DESC").
		Limit(1).
		Pluck(column, &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}
