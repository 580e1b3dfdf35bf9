package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
)

// Processor charges the student when a booking is confirmed. Implementations
// wrap an external gateway; a declined charge is a result, not an error.
type Processor interface {
	Charge(ctx context.Context, amount decimal.Decimal, method models.PaymentMethod) (models.PaymentResult, error)
}

// StubProcessor approves every charge and issues a synthetic reference. It
// stands in for the gateway integration in development and tests.
type StubProcessor struct {
	logger *zap.Logger
}

// NewStubProcessor builds a stub gateway.
func NewStubProcessor(logger *zap.Logger) *StubProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubProcessor{logger: logger}
}

// Charge approves the payment and returns a reference of the form
// "pay_<uuid>".
func (p *StubProcessor) Charge(ctx context.Context, amount decimal.Decimal, method models.PaymentMethod) (models.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return models.PaymentResult{}, err
	}

	ref := "pay_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	p.logger.Info("payment charged",
		zap.String("reference", ref),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("method", string(method)),
	)
	return models.PaymentResult{Success: true, Reference: ref}, nil
}
