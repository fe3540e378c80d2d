package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Weekday is a lower-case English day name as stored in staff schedules.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// WeekdayOf returns the schedule day for t in t's own location.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(strings.ToLower(t.Weekday().String()))
}

func ParseWeekday(value string) (Weekday, error) {
	switch d := Weekday(strings.ToLower(strings.TrimSpace(value))); d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return d, nil
	}
	return "", fmt.Errorf("unknown day of week %q", value)
}

// StaffSchedule is the weekly working window of one staff member for one day.
type StaffSchedule struct {
	BaseModel
	StaffID     string         `gorm:"size:36;not null;uniqueIndex:idx_staff_day" json:"staffId"`
	DayOfWeek   Weekday        `gorm:"size:10;not null;uniqueIndex:idx_staff_day" json:"dayOfWeek"`
	StartTime   datatypes.Time `gorm:"not null" json:"startTime"`
	EndTime     datatypes.Time `gorm:"not null" json:"endTime"`
	IsAvailable bool           `gorm:"default:true" json:"isAvailable"`
}

// StartMinute and EndMinute give the window as minutes since midnight.
func (s *StaffSchedule) StartMinute() int { return clockMinutes(s.StartTime) }
func (s *StaffSchedule) EndMinute() int   { return clockMinutes(s.EndTime) }

// Covers reports whether [startMinute, endMinute] lies inside the window.
func (s *StaffSchedule) Covers(startMinute, endMinute int) bool {
	return startMinute >= s.StartMinute() && endMinute <= s.EndMinute()
}

func clockMinutes(t datatypes.Time) int {
	return int(time.Duration(t) / time.Minute)
}

// ClockTime builds a time-of-day column value from minutes since midnight.
func ClockTime(minutes int) datatypes.Time {
	return datatypes.NewTime(minutes/60, minutes%60, 0, 0)
}

// ShopBlackoutDate closes the workshop on a date, or on the same month and
// day every year when recurring.
type ShopBlackoutDate struct {
	BaseModel
	Date        datatypes.Date `gorm:"index;not null" json:"date"`
	Reason      string         `gorm:"size:255" json:"reason"`
	Description string         `gorm:"type:text" json:"description"`
	IsRecurring bool           `gorm:"default:false" json:"isRecurring"`
}

// Matches reports whether the blackout applies to the calendar day of t.
func (b *ShopBlackoutDate) Matches(t time.Time) bool {
	by, bm, bd := time.Time(b.Date).Date()
	y, m, d := t.Date()
	if b.IsRecurring {
		return bm == m && bd == d
	}
	return by == y && bm == m && bd == d
}
