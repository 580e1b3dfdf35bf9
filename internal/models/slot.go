package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SlotStatus describes whether a derived time slot can be booked.
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotUnavailable SlotStatus = "unavailable"
)

// TimeSlot is a concrete bookable unit derived from a teacher's availability
// template. Slots are ephemeral: they are recomputed per query and never
// stored independently of a booking.
type TimeSlot struct {
	TeacherID       string          `json:"teacherId"`
	Start           time.Time       `json:"start"`
	DurationMinutes int             `json:"durationMinutes"`
	Status          SlotStatus      `json:"status"`
	Price           decimal.Decimal `json:"price"`
}

// End returns the exclusive end instant of the slot interval.
func (s TimeSlot) End() time.Time {
	return s.Start.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// IntervalsOverlap reports whether [aStart, aEnd) intersects [bStart, bEnd).
func IntervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
