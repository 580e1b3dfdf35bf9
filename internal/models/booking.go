package models

import "time"

// BookingStatus tracks the booking lifecycle. Permitted transitions:
// pending→confirmed→completed, pending→cancelled, confirmed→cancelled.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// CanTransition reports whether moving to next is a legal lifecycle step.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCompleted || next == BookingCancelled
	default:
		return false
	}
}

// SessionStatus tracks one scheduled occurrence.
type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in-progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

// Session is one concrete occurrence owned by its parent booking. Sessions
// have no identity outside the booking.
type Session struct {
	ID              string        `json:"id"`
	TeacherID       string        `json:"teacherId"`
	Start           time.Time     `json:"start"`
	DurationMinutes int           `json:"durationMinutes"`
	Status          SessionStatus `json:"status"`
	MeetingLink     *string       `json:"meetingLink,omitempty"`
}

// End returns the exclusive end instant of the session interval.
func (s Session) End() time.Time {
	return s.Start.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Overlaps reports whether the session interval intersects [start, end) on
// the inclusive-exclusive convention.
func (s Session) Overlaps(start, end time.Time) bool {
	return IntervalsOverlap(s.Start, s.End(), start, end)
}

// RefundStatus values stamped on cancelled bookings.
const (
	RefundPending       = "pending"
	RefundNotApplicable = "not_applicable"
)

// Booking owns an ordered set of sessions booked against one teacher.
type Booking struct {
	ID                 string          `json:"id"`
	TeacherID          string          `json:"teacherId"`
	StudentID          string          `json:"studentId"`
	SessionType        SessionType     `json:"sessionType"`
	Recurrence         *RecurrencePlan `json:"recurrence,omitempty"`
	Sessions           []Session       `json:"sessions"`
	Status             BookingStatus   `json:"status"`
	Quote              PricingQuote    `json:"quote"`
	CreatedAt          time.Time       `json:"createdAt"`
	CancellationReason *string         `json:"cancellationReason,omitempty"`
	RefundStatus       *string         `json:"refundStatus,omitempty"`
	PaymentReference   *string         `json:"paymentReference,omitempty"`
}

// EarliestRemainingSession returns the first non-cancelled session by start
// time, or nil when none remain.
func (b *Booking) EarliestRemainingSession() *Session {
	var earliest *Session
	for i := range b.Sessions {
		s := &b.Sessions[i]
		if s.Status == SessionCancelled {
			continue
		}
		if earliest == nil || s.Start.Before(earliest.Start) {
			earliest = s
		}
	}
	return earliest
}

// AllSessionsEnded reports whether every non-cancelled session has an end
// time at or before now.
func (b *Booking) AllSessionsEnded(now time.Time) bool {
	for _, s := range b.Sessions {
		if s.Status == SessionCancelled {
			continue
		}
		if s.End().After(now) {
			return false
		}
	}
	return true
}

// FirstSessionStart returns the earliest session start regardless of session
// status, or the zero time for an empty booking.
func (b *Booking) FirstSessionStart() time.Time {
	var first time.Time
	for _, s := range b.Sessions {
		if first.IsZero() || s.Start.Before(first) {
			first = s.Start
		}
	}
	return first
}
