package scheduling

import (
	"context"
	"time"

	"autoshop-server/internal/models"
)

// Slot is a bookable start time, rendered in the shop's time zone.
type Slot struct {
	Time     string `json:"time"`
	DateTime string `json:"datetime"`
}

// AvailableSlots walks the shop day in fixed steps from opening time and
// keeps every start the calculator accepts. The last candidate is the latest
// start whose services and buffer still end by closing time.
func (c *Calculator) AvailableSlots(ctx context.Context, date time.Time, services []models.ServiceType, staffID string) ([]Slot, error) {
	local := c.hours.Local(date)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, local.Location())
	occupied := int((models.TotalDuration(services) + c.hours.Buffer) / time.Minute)
	step := int(c.hours.Step / time.Minute)
	if step <= 0 {
		step = 30
	}

	slots := make([]Slot, 0)
	for minute := c.hours.Open; minute+occupied <= c.hours.Close; minute += step {
		candidate := midnight.Add(time.Duration(minute) * time.Minute)
		result, err := c.Check(ctx, Request{Start: candidate, Services: services, StaffID: staffID})
		if err != nil {
			return nil, err
		}
		if result.Available {
			slots = append(slots, Slot{
				Time:     candidate.Format("15:04"),
				DateTime: candidate.Format("2006-01-02 15:04:05"),
			})
		}
	}
	return slots, nil
}
