package models

import (
	"time"
)

// HolidayType distinguishes public holidays from school holiday terms.
type HolidayType string

const (
	HolidayPublic HolidayType = "public"
	HolidaySchool HolidayType = "school"
)

// Holiday period importance ranks. Multi-day public periods (Easter, the
// Christmas/New Year block) outrank single public holidays, which outrank
// school terms.
const (
	ImportanceMultiDayPublic = 3
	ImportanceSinglePublic   = 2
	ImportanceSchool         = 1
)

// HolidayPeriod is a labeled date range used to prioritize moves. It is
// never persisted on its own; the winning period is denormalized onto each
// move at tagging time. EndDate is inclusive.
type HolidayPeriod struct {
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	Name       string      `json:"name"`
	Type       HolidayType `json:"type"`
	Region     string      `json:"region"`
	Importance int         `json:"importance"`
}

// MultiDay reports whether the period spans more than one calendar day.
func (p *HolidayPeriod) MultiDay() bool {
	return p.EndDate.After(p.StartDate)
}

// Overlaps reports whether the period intersects the inclusive date range
// [from, to].
func (p *HolidayPeriod) Overlaps(from, to time.Time) bool {
	return !p.StartDate.After(to) && !p.EndDate.Before(from)
}
