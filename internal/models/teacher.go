package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Teacher is a marketplace tutor profile. The booking engine consumes it
// read-only from the catalog; profile mutation is owned elsewhere.
type Teacher struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Title           string          `json:"title"`
	Rating          float64         `json:"rating"`
	ReviewCount     int             `json:"reviewCount"`
	ExperienceYears int             `json:"experienceYears"`
	HourlyRate      decimal.Decimal `json:"hourlyRate"`
	Specializations []string        `json:"specializations"`
	Languages       []string        `json:"languages"`

	NativeSpeaker       bool `json:"nativeSpeaker"`
	Certified           bool `json:"certified"`
	OffersGroupSessions bool `json:"offersGroupSessions"`
	OffersTrialSession  bool `json:"offersTrialSession"`
	WeekendAvailable    bool `json:"weekendAvailable"`

	Availability AvailabilityTemplate `json:"availability"`
}

// AvailabilityTemplate maps a weekday to the minutes-from-midnight start
// points at which the teacher is nominally available. Each day's entries are
// strictly increasing.
type AvailabilityTemplate map[time.Weekday][]int

// StartsOn returns the template start points for a weekday in ascending
// order. The returned slice must not be mutated.
func (t AvailabilityTemplate) StartsOn(day time.Weekday) []int {
	return t[day]
}

// Normalize sorts and deduplicates every day's start points so the template
// invariant holds regardless of how the entries were assembled.
func (t AvailabilityTemplate) Normalize() {
	for day, starts := range t {
		sort.Ints(starts)
		out := starts[:0]
		for i, m := range starts {
			if i > 0 && m == starts[i-1] {
				continue
			}
			out = append(out, m)
		}
		t[day] = out
	}
}

// DailyStarts builds start points covering [startHour, endHour) at the given
// step in minutes. Used when seeding templates.
func DailyStarts(startHour, endHour, stepMinutes int) []int {
	if stepMinutes <= 0 {
		stepMinutes = 30
	}
	var starts []int
	for m := startHour * 60; m < endHour*60; m += stepMinutes {
		starts = append(starts, m)
	}
	return starts
}
