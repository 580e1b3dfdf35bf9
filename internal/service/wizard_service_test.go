package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/repository"
	"github.com/tutorhive/booking-api/pkg/clock"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type wizardFixture struct {
	wizard   *WizardService
	ledger   *LedgerService
	payments *fakePayments
	now      time.Time
	setNow   func(time.Time)
}

func newWizardFixture(t *testing.T) *wizardFixture {
	t.Helper()

	now := fixedNow
	clk := clock.Func(func() time.Time { return now })

	repo := repository.NewInMemoryBookingRepository()
	cat := newFakeCatalog(testTeacher("T001"))
	availability := NewAvailabilityService(cat, repo, clk, zap.NewNop())
	payments := &fakePayments{succeed: true}

	ledger := NewLedgerService(
		repo,
		availability,
		NewPricingService(nil, zap.NewNop()),
		NewPlannerService(nil, zap.NewNop()),
		nil,
		payments,
		LedgerOptions{Clock: clk},
	)

	f := &wizardFixture{ledger: ledger, payments: payments, now: now}
	f.setNow = func(v time.Time) { now = v }
	f.wizard = NewWizardService(cat, availability, NewPricingService(nil, zap.NewNop()), NewPlannerService(nil, zap.NewNop()), ledger, WizardOptions{
		TTL:   30 * time.Minute,
		Clock: clk,
	})
	return f
}

func (f *wizardFixture) advanceToConfirm(t *testing.T) *WizardSession {
	t.Helper()
	ctx := context.Background()

	session, err := f.wizard.Start(ctx, "stu-1")
	require.NoError(t, err)
	session, err = f.wizard.SelectTeacher(ctx, session.ID, "T001")
	require.NoError(t, err)
	session, err = f.wizard.SelectDateTime(ctx, session.ID, nextMonday10)
	require.NoError(t, err)
	session, err = f.wizard.SelectSessionType(ctx, session.ID, models.SessionIndividual, nil)
	require.NoError(t, err)
	require.Equal(t, StepConfirm, session.Step)
	return session
}

func TestWizardHappyPath(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	session := f.advanceToConfirm(t)
	require.NotNil(t, session.Quote)
	assert.Equal(t, "26.25", session.Quote.Total.String())

	done, err := f.wizard.Confirm(ctx, session.ID, models.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, StepDone, done.Step)
	require.NotEmpty(t, done.BookingID)

	booking, err := f.ledger.Get(ctx, done.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
}

func TestWizardRecurringQuoteMatchesChargedAmount(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	session, err := f.wizard.Start(ctx, "stu-1")
	require.NoError(t, err)
	session, err = f.wizard.SelectTeacher(ctx, session.ID, "T001")
	require.NoError(t, err)
	session, err = f.wizard.SelectDateTime(ctx, session.ID, nextMonday10)
	require.NoError(t, err)

	session, err = f.wizard.SelectSessionType(ctx, session.ID, models.SessionIndividual, &RecurrenceRequest{
		Frequency:    models.FrequencyWeekly,
		WindowMonths: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, session.Quote)

	// Weekly over one month from the selected Monday is five sessions, so the
	// confirmation step shows the series total, not a single session's price.
	assert.Equal(t, "125", session.Quote.BasePrice.String())
	assert.Equal(t, "118.125", session.Quote.Total.String())

	done, err := f.wizard.Confirm(ctx, session.ID, models.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, StepDone, done.Step)

	require.Len(t, f.payments.charged, 1)
	assert.True(t, session.Quote.Total.Equal(f.payments.charged[0]),
		"displayed quote %s != charged %s", session.Quote.Total, f.payments.charged[0])
}

func TestWizardForwardGates(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	session, err := f.wizard.Start(ctx, "stu-1")
	require.NoError(t, err)

	_, err = f.wizard.SelectDateTime(ctx, session.ID, nextMonday10)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = f.wizard.SelectSessionType(ctx, session.ID, models.SessionIndividual, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = f.wizard.Confirm(ctx, session.ID, models.PaymentCard)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
}

func TestWizardRejectsTakenSlotSelection(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Create(ctx, CreateBookingRequest{
		StudentID: "stu-2", TeacherID: "T001",
		SessionType: models.SessionIndividual, Start: nextMonday10,
	})
	require.NoError(t, err)

	session, err := f.wizard.Start(ctx, "stu-1")
	require.NoError(t, err)
	session, err = f.wizard.SelectTeacher(ctx, session.ID, "T001")
	require.NoError(t, err)

	_, err = f.wizard.SelectDateTime(ctx, session.ID, nextMonday10)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSlotUnavailable))
}

func TestWizardBackRevalidatesHeldSlot(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	session := f.advanceToConfirm(t)

	// Another student grabs the held slot while this flow sits on confirm.
	_, err := f.ledger.Create(ctx, CreateBookingRequest{
		StudentID: "stu-2", TeacherID: "T001",
		SessionType: models.SessionIndividual, Start: nextMonday10,
	})
	require.NoError(t, err)

	_, err = f.wizard.Back(ctx, session.ID, StepSelectDateTime)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSlotUnavailable))

	// The stale selection was cleared; a fresh slot gets the flow moving again.
	state, err := f.wizard.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, state.SlotStart.IsZero())

	state, err = f.wizard.SelectDateTime(ctx, session.ID, nextMonday10.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StepSelectSessionType, state.Step)
}

func TestWizardBackKeepsCommittedState(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	session := f.advanceToConfirm(t)

	state, err := f.wizard.Back(ctx, session.ID, StepSelectSessionType)
	require.NoError(t, err)
	assert.Equal(t, StepSelectSessionType, state.Step)
	assert.Equal(t, "T001", state.TeacherID)
	assert.Equal(t, nextMonday10, state.SlotStart)
	assert.Equal(t, models.SessionIndividual, state.SessionType)
}

func TestWizardConfirmConflictFallsBackToDateStep(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	session := f.advanceToConfirm(t)

	_, err := f.ledger.Create(ctx, CreateBookingRequest{
		StudentID: "stu-2", TeacherID: "T001",
		SessionType: models.SessionIndividual, Start: nextMonday10,
	})
	require.NoError(t, err)

	_, err = f.wizard.Confirm(ctx, session.ID, models.PaymentCard)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSlotUnavailable))

	state, err := f.wizard.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, StepSelectDateTime, state.Step)
	assert.True(t, state.SlotStart.IsZero())
}

func TestWizardPaymentDeclineKeepsBookingPending(t *testing.T) {
	f := newWizardFixture(t)
	f.payments.succeed = false
	ctx := context.Background()

	session := f.advanceToConfirm(t)

	_, err := f.wizard.Confirm(ctx, session.ID, models.PaymentCard)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPaymentFailed))

	state, err := f.wizard.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, StepConfirm, state.Step)
	require.NotEmpty(t, state.BookingID)

	booking, err := f.ledger.Get(ctx, state.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, booking.Status)
}

func TestWizardSessionExpires(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	session, err := f.wizard.Start(ctx, "stu-1")
	require.NoError(t, err)

	f.setNow(fixedNow.Add(31 * time.Minute))

	_, err = f.wizard.Get(ctx, session.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
