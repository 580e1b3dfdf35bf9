package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

// platformFeePercent is charged on the discounted subtotal.
var platformFeePercent = decimal.NewFromInt(5)

var oneHundred = decimal.NewFromInt(100)

// QuoteRequest asks for a price breakdown. Frequency is empty for one-off
// bookings; SessionCount is how many occurrences the quote covers.
type QuoteRequest struct {
	SessionType  models.SessionType `json:"sessionType" validate:"required"`
	Frequency    models.Frequency   `json:"frequency" validate:"omitempty,oneof=weekly biweekly monthly"`
	SessionCount int                `json:"sessionCount" validate:"omitempty,min=1"`
}

// PricingService derives quotes from the canonical session type price table.
// Quotes are pure derivations: same inputs, same breakdown, and amounts stay
// unrounded until the presentation boundary.
type PricingService struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPricingService constructs a PricingService.
func NewPricingService(validate *validator.Validate, logger *zap.Logger) *PricingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingService{validator: validate, logger: logger}
}

// Quote computes the breakdown: base price across all sessions, recurring
// discount off the base, then the platform fee on the discounted subtotal.
func (s *PricingService) Quote(ctx context.Context, req QuoteRequest) (*models.PricingQuote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quote payload")
	}

	spec, ok := req.SessionType.Spec()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown session type")
	}

	count := req.SessionCount
	if count <= 0 {
		count = 1
	}

	base := spec.BasePrice.Mul(decimal.NewFromInt(int64(count)))

	discount := decimal.Zero
	if req.Frequency != "" {
		pct, ok := req.Frequency.DiscountPercent()
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown recurrence frequency")
		}
		discount = base.Mul(decimal.NewFromInt(pct)).Div(oneHundred)
	}

	subtotal := base.Sub(discount)
	fee := subtotal.Mul(platformFeePercent).Div(oneHundred)

	return &models.PricingQuote{
		BasePrice:      base,
		DiscountAmount: discount,
		PlatformFee:    fee,
		Total:          subtotal.Add(fee),
	}, nil
}
