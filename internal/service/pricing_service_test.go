package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

func TestQuoteOneOffIndividual(t *testing.T) {
	svc := NewPricingService(nil, zap.NewNop())

	quote, err := svc.Quote(context.Background(), QuoteRequest{SessionType: models.SessionIndividual})
	require.NoError(t, err)

	assert.Equal(t, "25", quote.BasePrice.String())
	assert.True(t, quote.DiscountAmount.IsZero())
	assert.Equal(t, "1.25", quote.PlatformFee.String())
	assert.Equal(t, "26.25", quote.Total.String())
}

func TestQuoteRecurringDiscounts(t *testing.T) {
	svc := NewPricingService(nil, zap.NewNop())

	cases := []struct {
		frequency models.Frequency
		discount  string
		total     string
	}{
		{models.FrequencyWeekly, "2.5", "23.625"},
		{models.FrequencyBiweekly, "1.25", "24.9375"},
		{models.FrequencyMonthly, "3.75", "22.3125"},
	}
	for _, tc := range cases {
		quote, err := svc.Quote(context.Background(), QuoteRequest{
			SessionType: models.SessionIndividual,
			Frequency:   tc.frequency,
		})
		require.NoError(t, err, string(tc.frequency))
		assert.Equal(t, tc.discount, quote.DiscountAmount.String(), string(tc.frequency))
		assert.Equal(t, tc.total, quote.Total.String(), string(tc.frequency))
	}
}

func TestQuoteFeeAppliedAfterDiscount(t *testing.T) {
	svc := NewPricingService(nil, zap.NewNop())

	quote, err := svc.Quote(context.Background(), QuoteRequest{
		SessionType: models.SessionIntensive,
		Frequency:   models.FrequencyWeekly,
	})
	require.NoError(t, err)

	// 45 base, 10% discount = 40.5 subtotal, 5% fee on the subtotal.
	assert.Equal(t, "45", quote.BasePrice.String())
	assert.Equal(t, "4.5", quote.DiscountAmount.String())
	assert.Equal(t, "2.025", quote.PlatformFee.String())
	assert.Equal(t, "42.525", quote.Total.String())
}

func TestQuoteMultiSessionSeries(t *testing.T) {
	svc := NewPricingService(nil, zap.NewNop())

	quote, err := svc.Quote(context.Background(), QuoteRequest{
		SessionType:  models.SessionGroup,
		Frequency:    models.FrequencyWeekly,
		SessionCount: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, "60", quote.BasePrice.String())
	assert.Equal(t, "6", quote.DiscountAmount.String())
	assert.Equal(t, "56.7", quote.Total.String())
}

func TestQuoteUnknownSessionType(t *testing.T) {
	svc := NewPricingService(nil, zap.NewNop())

	_, err := svc.Quote(context.Background(), QuoteRequest{SessionType: "masterclass"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestQuoteUnknownFrequency(t *testing.T) {
	svc := NewPricingService(nil, zap.NewNop())

	_, err := svc.Quote(context.Background(), QuoteRequest{
		SessionType: models.SessionIndividual,
		Frequency:   "fortnightly",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
