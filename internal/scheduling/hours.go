package scheduling

import (
	"time"

	"autoshop-server/internal/config"
)

// ShopHours describes when the workshop takes bookings. Open and Close are
// minutes since midnight in Location.
type ShopHours struct {
	Open     int
	Close    int
	Buffer   time.Duration
	Step     time.Duration
	Location *time.Location
}

func DefaultShopHours() ShopHours {
	return ShopHours{
		Open:     8 * 60,
		Close:    18 * 60,
		Buffer:   15 * time.Minute,
		Step:     30 * time.Minute,
		Location: time.UTC,
	}
}

func ShopHoursFromConfig(cfg config.ShopConfig) ShopHours {
	h := ShopHours{
		Open:     cfg.OpenMinute,
		Close:    cfg.CloseMinute,
		Buffer:   cfg.Buffer,
		Step:     cfg.SlotStep,
		Location: cfg.Location,
	}
	if h.Location == nil {
		h.Location = time.UTC
	}
	if h.Step <= 0 {
		h.Step = 30 * time.Minute
	}
	return h
}

// Local converts t to the shop's time zone.
func (h ShopHours) Local(t time.Time) time.Time {
	if h.Location == nil {
		return t.UTC()
	}
	return t.In(h.Location)
}

// minuteOfDay returns minutes since midnight of t in the shop's time zone.
func (h ShopHours) minuteOfDay(t time.Time) int {
	local := h.Local(t)
	return local.Hour()*60 + local.Minute()
}

// span returns [start, end] as minutes since midnight of start's shop-local
// day. end may exceed 24h when the interval crosses midnight.
func (h ShopHours) span(start, end time.Time) (int, int) {
	startMinute := h.minuteOfDay(start)
	return startMinute, startMinute + int(end.Sub(start)/time.Minute)
}
