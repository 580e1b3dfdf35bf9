package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	assert.True(t, BookingPending.CanTransition(BookingConfirmed))
	assert.True(t, BookingPending.CanTransition(BookingCancelled))
	assert.True(t, BookingConfirmed.CanTransition(BookingCompleted))
	assert.True(t, BookingConfirmed.CanTransition(BookingCancelled))

	assert.False(t, BookingPending.CanTransition(BookingCompleted))
	assert.False(t, BookingCompleted.CanTransition(BookingCancelled))
	assert.False(t, BookingCancelled.CanTransition(BookingConfirmed))
	assert.False(t, BookingCancelled.CanTransition(BookingPending))
}

func TestIntervalsOverlapHalfOpen(t *testing.T) {
	base := time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC)
	hour := time.Hour

	// Back to back intervals do not overlap.
	assert.False(t, IntervalsOverlap(base, base.Add(hour), base.Add(hour), base.Add(2*hour)))
	assert.True(t, IntervalsOverlap(base, base.Add(hour), base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.True(t, IntervalsOverlap(base, base.Add(2*hour), base.Add(30*time.Minute), base.Add(hour)))
}

func TestEarliestRemainingSessionSkipsCancelled(t *testing.T) {
	base := time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC)
	b := Booking{Sessions: []Session{
		{ID: "a", Start: base, Status: SessionCancelled},
		{ID: "b", Start: base.AddDate(0, 0, 7), Status: SessionScheduled},
		{ID: "c", Start: base.AddDate(0, 0, 14), Status: SessionScheduled},
	}}

	earliest := b.EarliestRemainingSession()
	assert.NotNil(t, earliest)
	assert.Equal(t, "b", earliest.ID)
}

func TestAllSessionsEnded(t *testing.T) {
	base := time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC)
	b := Booking{Sessions: []Session{
		{Start: base, DurationMinutes: 60, Status: SessionCompleted},
		{Start: base.AddDate(0, 0, 7), DurationMinutes: 60, Status: SessionScheduled},
	}}

	assert.False(t, b.AllSessionsEnded(base.AddDate(0, 0, 3)))
	assert.True(t, b.AllSessionsEnded(base.AddDate(0, 0, 8)))

	// A cancelled future session does not hold the booking open.
	b.Sessions[1].Status = SessionCancelled
	assert.True(t, b.AllSessionsEnded(base.AddDate(0, 0, 3)))
}

func TestAvailabilityTemplateNormalize(t *testing.T) {
	template := AvailabilityTemplate{
		time.Monday: {600, 480, 600, 510},
	}
	template.Normalize()
	assert.Equal(t, []int{480, 510, 600}, template.StartsOn(time.Monday))
}

func TestFrequencyAdvance(t *testing.T) {
	start := time.Date(2026, time.January, 31, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, start.AddDate(0, 0, 7), FrequencyWeekly.Advance(start))
	assert.Equal(t, start.AddDate(0, 0, 14), FrequencyBiweekly.Advance(start))
	// Calendar month arithmetic rolls Jan 31 into early March.
	assert.Equal(t, time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC), FrequencyMonthly.Advance(start))
}
