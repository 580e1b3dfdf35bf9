package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

func TestPlannerWeeklyExpansion(t *testing.T) {
	svc := NewPlannerService(nil, zap.NewNop())

	start := time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC)
	occurrences, err := svc.Expand(context.Background(), models.RecurrencePlan{
		Frequency:    models.FrequencyWeekly,
		WindowMonths: 1,
		StartDate:    start,
	})
	require.NoError(t, err)

	// Sep 7 through Oct 6 inclusive holds five Mondays.
	require.Len(t, occurrences, 5)
	for i, occ := range occurrences {
		assert.Equal(t, start.AddDate(0, 0, 7*i), occ)
	}
}

func TestPlannerBiweeklyExpansion(t *testing.T) {
	svc := NewPlannerService(nil, zap.NewNop())

	start := time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC)
	occurrences, err := svc.Expand(context.Background(), models.RecurrencePlan{
		Frequency:    models.FrequencyBiweekly,
		WindowMonths: 3,
		StartDate:    start,
	})
	require.NoError(t, err)
	require.Len(t, occurrences, 7)
	assert.Equal(t, start.AddDate(0, 0, 14), occurrences[1])
}

func TestPlannerMonthlyUsesCalendarMonths(t *testing.T) {
	svc := NewPlannerService(nil, zap.NewNop())

	// A Jan 31 anchor rolls over where the next month is shorter.
	start := time.Date(2026, time.January, 31, 9, 0, 0, 0, time.UTC)
	occurrences, err := svc.Expand(context.Background(), models.RecurrencePlan{
		Frequency:    models.FrequencyMonthly,
		WindowMonths: 3,
		StartDate:    start,
	})
	require.NoError(t, err)
	require.Len(t, occurrences, 3)
	assert.Equal(t, time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC), occurrences[1])
}

func TestPlannerRejectsUnknownWindow(t *testing.T) {
	svc := NewPlannerService(nil, zap.NewNop())

	_, err := svc.Expand(context.Background(), models.RecurrencePlan{
		Frequency:    models.FrequencyWeekly,
		WindowMonths: 2,
		StartDate:    time.Now(),
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestPlannerRejectsUnknownFrequency(t *testing.T) {
	svc := NewPlannerService(nil, zap.NewNop())

	_, err := svc.Expand(context.Background(), models.RecurrencePlan{
		Frequency:    "daily",
		WindowMonths: 1,
		StartDate:    time.Now(),
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
