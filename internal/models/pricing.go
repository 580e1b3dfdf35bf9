package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionType enumerates the bookable session formats. The set is fixed; it
// is not user-extensible.
type SessionType string

const (
	SessionIndividual SessionType = "individual"
	SessionGroup      SessionType = "group"
	SessionIntensive  SessionType = "intensive"
)

// SessionTypeSpec carries the canonical price and duration for a session type.
type SessionTypeSpec struct {
	Name            string
	BasePrice       decimal.Decimal
	DurationMinutes int
}

// SessionTypeSpecs is the canonical base price table.
var SessionTypeSpecs = map[SessionType]SessionTypeSpec{
	SessionIndividual: {Name: "Individual Session", BasePrice: decimal.NewFromInt(25), DurationMinutes: 60},
	SessionGroup:      {Name: "Group Session", BasePrice: decimal.NewFromInt(15), DurationMinutes: 60},
	SessionIntensive:  {Name: "Intensive Session", BasePrice: decimal.NewFromInt(45), DurationMinutes: 120},
}

// Spec resolves the canonical spec for the session type.
func (t SessionType) Spec() (SessionTypeSpec, bool) {
	spec, ok := SessionTypeSpecs[t]
	return spec, ok
}

// Frequency enumerates how often a recurring booking repeats.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// recurringDiscounts maps a frequency to its discount percentage.
var recurringDiscounts = map[Frequency]int64{
	FrequencyWeekly:   10,
	FrequencyBiweekly: 5,
	FrequencyMonthly:  15,
}

// DiscountPercent returns the discount percentage granted for the frequency.
func (f Frequency) DiscountPercent() (int64, bool) {
	pct, ok := recurringDiscounts[f]
	return pct, ok
}

// Advance moves a session start forward by one recurrence period. Monthly
// advances by calendar month, not a fixed day count.
func (f Frequency) Advance(t time.Time) time.Time {
	switch f {
	case FrequencyBiweekly:
		return t.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 7)
	}
}

// RecurrencePlan expands one booking intent into a dated series of sessions.
type RecurrencePlan struct {
	Frequency    Frequency `json:"frequency"`
	WindowMonths int       `json:"windowMonths"`
	StartDate    time.Time `json:"startDate"`
}

// PricingQuote is a derived price breakdown. It is recomputed on any input
// change and never mutated in place. Amounts stay unrounded; rounding to two
// decimals happens only at the presentation boundary.
type PricingQuote struct {
	BasePrice      decimal.Decimal `json:"basePrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	PlatformFee    decimal.Decimal `json:"platformFee"`
	Total          decimal.Decimal `json:"total"`
}
