package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType is a bookable workshop service from the catalogue.
type ServiceType struct {
	BaseModel
	Name            string          `gorm:"size:150;not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationMinutes int             `gorm:"not null" json:"durationMinutes"`
	IsActive        bool            `gorm:"default:true" json:"isActive"`
}

// TotalDuration sums the durations of the given services.
func TotalDuration(services []ServiceType) time.Duration {
	var total time.Duration
	for _, s := range services {
		total += time.Duration(s.DurationMinutes) * time.Minute
	}
	return total
}

// TotalPrice sums the current catalogue prices of the given services.
func TotalPrice(services []ServiceType) decimal.Decimal {
	total := decimal.Zero
	for _, s := range services {
		total = total.Add(s.Price)
	}
	return total
}
