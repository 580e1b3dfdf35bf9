package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

// allowedWindows are the recurrence window lengths offered to students.
var allowedWindows = map[int]struct{}{1: {}, 3: {}, 6: {}, 12: {}}

// PlannerService expands a recurrence plan into concrete session start
// times. Expansion is pure; conflict checking against live bookings belongs
// to the ledger.
type PlannerService struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlannerService constructs a PlannerService.
func NewPlannerService(validate *validator.Validate, logger *zap.Logger) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{validator: validate, logger: logger}
}

// Expand returns every occurrence start from the plan's start date up to the
// window end, exclusive. Monthly plans advance by calendar month, so a
// Jan 31 start lands on the month's rollover rather than a fixed day count.
func (s *PlannerService) Expand(ctx context.Context, plan models.RecurrencePlan) ([]time.Time, error) {
	if plan.StartDate.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recurrence start date is required")
	}
	if _, ok := plan.Frequency.DiscountPercent(); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown recurrence frequency")
	}
	if _, ok := allowedWindows[plan.WindowMonths]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recurrence window must be 1, 3, 6 or 12 months")
	}

	end := plan.StartDate.AddDate(0, plan.WindowMonths, 0)

	var occurrences []time.Time
	for t := plan.StartDate; t.Before(end); t = plan.Frequency.Advance(t) {
		occurrences = append(occurrences, t)
	}
	return occurrences, nil
}
