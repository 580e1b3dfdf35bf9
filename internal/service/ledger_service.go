package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/lock"
	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/payment"
	"github.com/tutorhive/booking-api/pkg/clock"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type bookingRepository interface {
	Insert(ctx context.Context, booking models.Booking) error
	Get(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, booking models.Booking) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
}

type slotChecker interface {
	IsSlotAvailable(ctx context.Context, teacherID string, start time.Time, durationMinutes int) (bool, error)
	IsSlotAvailableExcluding(ctx context.Context, teacherID string, start time.Time, durationMinutes int, excludeSessionID string) (bool, error)
}

type quoter interface {
	Quote(ctx context.Context, req QuoteRequest) (*models.PricingQuote, error)
}

type planExpander interface {
	Expand(ctx context.Context, plan models.RecurrencePlan) ([]time.Time, error)
}

type bookingMetrics interface {
	BookingCreated()
	BookingConfirmed()
	BookingCancelled()
	SlotConflict()
}

// bookingEvents receives lifecycle notifications after the state change has
// been persisted. Implementations must not block.
type bookingEvents interface {
	Confirmed(booking models.Booking)
	Cancelled(booking models.Booking)
}

// RecurrenceRequest describes a recurring series in a create payload.
type RecurrenceRequest struct {
	Frequency    models.Frequency `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	WindowMonths int              `json:"windowMonths" validate:"required,oneof=1 3 6 12"`
}

// CreateBookingRequest opens a pending booking for one slot or a recurring
// series anchored at Start.
type CreateBookingRequest struct {
	StudentID   string             `json:"studentId" validate:"required"`
	TeacherID   string             `json:"teacherId" validate:"required"`
	SessionType models.SessionType `json:"sessionType" validate:"required"`
	Start       time.Time          `json:"start" validate:"required"`
	Recurrence  *RecurrenceRequest `json:"recurrence" validate:"omitempty"`
}

// ConfirmBookingRequest carries the payment instrument for confirmation.
type ConfirmBookingRequest struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"required,oneof=card paypal bank"`
}

// CancelBookingRequest carries the optional cancellation reason.
type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// RescheduleBookingRequest moves one session of a booking to a new start.
type RescheduleBookingRequest struct {
	SessionID string    `json:"sessionId" validate:"required"`
	NewStart  time.Time `json:"newStart" validate:"required"`
}

// LedgerService is the system of record for bookings. Every mutation of a
// teacher's schedule runs under that teacher's lock, and slot availability is
// re-verified inside the critical section so concurrent contenders for the
// same slot cannot both commit.
type LedgerService struct {
	repo         bookingRepository
	slots        slotChecker
	pricing      quoter
	planner      planExpander
	locker       lock.Locker
	payments     payment.Processor
	metrics      bookingMetrics
	events       bookingEvents
	clock        clock.Clock
	validator    *validator.Validate
	logger       *zap.Logger
	cancelNotice time.Duration
}

// LedgerOptions groups the optional collaborators of the ledger.
type LedgerOptions struct {
	Metrics            bookingMetrics
	Events             bookingEvents
	Clock              clock.Clock
	Validator          *validator.Validate
	Logger             *zap.Logger
	CancellationNotice time.Duration
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(repo bookingRepository, slots slotChecker, pricing quoter, planner planExpander, locker lock.Locker, payments payment.Processor, opts LedgerOptions) *LedgerService {
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Validator == nil {
		opts.Validator = validator.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.CancellationNotice <= 0 {
		opts.CancellationNotice = 24 * time.Hour
	}
	if locker == nil {
		locker = lock.NewMutexLocker()
	}
	return &LedgerService{
		repo:         repo,
		slots:        slots,
		pricing:      pricing,
		planner:      planner,
		locker:       locker,
		payments:     payments,
		metrics:      opts.Metrics,
		events:       opts.Events,
		clock:        opts.Clock,
		validator:    opts.Validator,
		logger:       opts.Logger,
		cancelNotice: opts.CancellationNotice,
	}
}

// Create opens a pending booking. For recurring requests every occurrence in
// the window must be free; one conflict rejects the whole series.
func (s *LedgerService) Create(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	spec, ok := req.SessionType.Spec()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown session type")
	}
	if !req.Start.After(s.clock.Now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "booking start must be in the future")
	}

	occurrences := []time.Time{req.Start}
	var plan *models.RecurrencePlan
	var frequency models.Frequency
	if req.Recurrence != nil {
		plan = &models.RecurrencePlan{
			Frequency:    req.Recurrence.Frequency,
			WindowMonths: req.Recurrence.WindowMonths,
			StartDate:    req.Start,
		}
		expanded, err := s.planner.Expand(ctx, *plan)
		if err != nil {
			return nil, err
		}
		occurrences = expanded
		frequency = plan.Frequency
	}
	if len(occurrences) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "booking requires at least one session")
	}

	quote, err := s.pricing.Quote(ctx, QuoteRequest{
		SessionType:  req.SessionType,
		Frequency:    frequency,
		SessionCount: len(occurrences),
	})
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, req.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock teacher schedule")
	}
	defer release()

	for _, start := range occurrences {
		available, err := s.slots.IsSlotAvailable(ctx, req.TeacherID, start, spec.DurationMinutes)
		if err != nil {
			return nil, err
		}
		if !available {
			if s.metrics != nil {
				s.metrics.SlotConflict()
			}
			if req.Recurrence != nil {
				return nil, appErrors.Clone(appErrors.ErrRecurringConflict, "occurrence on "+start.Format(time.RFC3339)+" is not available")
			}
			return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "")
		}
	}

	booking := models.Booking{
		ID:          uuid.NewString(),
		TeacherID:   req.TeacherID,
		StudentID:   req.StudentID,
		SessionType: req.SessionType,
		Recurrence:  plan,
		Status:      models.BookingPending,
		Quote:       *quote,
		CreatedAt:   s.clock.Now(),
	}
	for _, start := range occurrences {
		booking.Sessions = append(booking.Sessions, models.Session{
			ID:              uuid.NewString(),
			TeacherID:       req.TeacherID,
			Start:           start,
			DurationMinutes: spec.DurationMinutes,
			Status:          models.SessionScheduled,
		})
	}

	if err := s.repo.Insert(ctx, booking); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BookingCreated()
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("teacher_id", booking.TeacherID),
		zap.Int("sessions", len(booking.Sessions)),
	)
	return &booking, nil
}

// Get returns the booking with session statuses rolled forward to now.
func (s *LedgerService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.rollForward(booking) {
		if err := s.repo.Update(ctx, *booking); err != nil {
			return nil, err
		}
	}
	return booking, nil
}

// List returns the actor's booking history, filtered and ordered. Students
// and parents see bookings they opened, teachers see bookings against their
// schedule, admins see everything.
func (s *LedgerService) List(ctx context.Context, actor models.Actor, filter models.BookingHistoryFilter) ([]models.Booking, error) {
	var bookings []models.Booking
	var err error
	switch actor.Role {
	case models.RoleTeacher:
		bookings, err = s.repo.ListByTeacher(ctx, actor.ID)
	case models.RoleAdmin:
		bookings, err = s.repo.ListAll(ctx)
	default:
		bookings, err = s.repo.ListByStudent(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	filtered := bookings[:0]
	for i := range bookings {
		s.rollForward(&bookings[i])
		if historyStatusMatches(&bookings[i], filter.Status, now) {
			filtered = append(filtered, bookings[i])
		}
	}

	sortBookings(filtered, filter.SortBy)
	return filtered, nil
}

// Confirm transitions a pending booking to confirmed, charging the student
// first. A declined charge leaves the booking pending for retry.
func (s *LedgerService) Confirm(ctx context.Context, id string, req ConfirmBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirmation payload")
	}

	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransition(models.BookingConfirmed) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only pending bookings can be confirmed")
	}

	result, err := s.payments.Charge(ctx, booking.Quote.Total, req.PaymentMethod)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "payment gateway error")
	}
	if !result.Success {
		return nil, appErrors.Clone(appErrors.ErrPaymentFailed, "")
	}

	booking.Status = models.BookingConfirmed
	booking.PaymentReference = &result.Reference

	if err := s.repo.Update(ctx, *booking); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BookingConfirmed()
	}
	if s.events != nil {
		s.events.Confirmed(*booking)
	}

	s.logger.Info("booking confirmed",
		zap.String("booking_id", booking.ID),
		zap.String("payment_reference", result.Reference),
	)
	return booking, nil
}

// Cancel cancels a pending or confirmed booking. The earliest remaining
// session must start at least the cancellation notice from now; paid
// bookings get a pending refund, unpaid ones none.
func (s *LedgerService) Cancel(ctx context.Context, id string, req CancelBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancellation payload")
	}

	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, booking.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock teacher schedule")
	}
	defer release()

	// Re-read inside the lock so we act on the committed state.
	booking, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransition(models.BookingCancelled) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "booking cannot be cancelled from its current status")
	}

	// The notice period only protects charged bookings; a pending booking
	// was never paid and can be abandoned at any time.
	if booking.Status == models.BookingConfirmed {
		if earliest := booking.EarliestRemainingSession(); earliest != nil {
			if s.clock.Now().Add(s.cancelNotice).After(earliest.Start) {
				return nil, appErrors.Clone(appErrors.ErrCancellationWindow, "")
			}
		}
	}

	wasPaid := booking.Status == models.BookingConfirmed && booking.PaymentReference != nil

	booking.Status = models.BookingCancelled
	if req.Reason != "" {
		reason := req.Reason
		booking.CancellationReason = &reason
	}
	refund := models.RefundNotApplicable
	if wasPaid {
		refund = models.RefundPending
	}
	booking.RefundStatus = &refund
	for i := range booking.Sessions {
		if booking.Sessions[i].Status == models.SessionScheduled {
			booking.Sessions[i].Status = models.SessionCancelled
		}
	}

	if err := s.repo.Update(ctx, *booking); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BookingCancelled()
	}
	if s.events != nil {
		s.events.Cancelled(*booking)
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", booking.ID),
		zap.String("refund_status", refund),
	)
	return booking, nil
}

// Reschedule moves one scheduled session to a new start. The old start must
// still be outside the cancellation notice and the new slot must be free.
func (s *LedgerService) Reschedule(ctx context.Context, id string, req RescheduleBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}

	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, booking.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock teacher schedule")
	}
	defer release()

	booking, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only pending or confirmed bookings can be rescheduled")
	}

	var session *models.Session
	for i := range booking.Sessions {
		if booking.Sessions[i].ID == req.SessionID {
			session = &booking.Sessions[i]
			break
		}
	}
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	if session.Status != models.SessionScheduled {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only scheduled sessions can be rescheduled")
	}

	// Moving a session out of a slot on short notice frees the teacher's time
	// exactly as a late cancellation would, so confirmed bookings get the same
	// notice cutoff. Pending bookings were never charged and move freely.
	now := s.clock.Now()
	if booking.Status == models.BookingConfirmed && now.Add(s.cancelNotice).After(session.Start) {
		return nil, appErrors.Clone(appErrors.ErrCancellationWindow, "reschedule window has expired")
	}
	if !req.NewStart.After(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "new start must be in the future")
	}

	available, err := s.slots.IsSlotAvailableExcluding(ctx, booking.TeacherID, req.NewStart, session.DurationMinutes, session.ID)
	if err != nil {
		return nil, err
	}
	if !available {
		if s.metrics != nil {
			s.metrics.SlotConflict()
		}
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "")
	}

	session.Start = req.NewStart

	if err := s.repo.Update(ctx, *booking); err != nil {
		return nil, err
	}

	s.logger.Info("session rescheduled",
		zap.String("booking_id", booking.ID),
		zap.String("session_id", session.ID),
		zap.Time("new_start", req.NewStart),
	)
	return booking, nil
}

// Complete transitions a confirmed booking to completed once every
// non-cancelled session has ended.
func (s *LedgerService) Complete(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransition(models.BookingCompleted) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only confirmed bookings can be completed")
	}

	now := s.clock.Now()
	if !booking.AllSessionsEnded(now) {
		return nil, appErrors.Clone(appErrors.ErrSessionsPending, "")
	}

	booking.Status = models.BookingCompleted
	for i := range booking.Sessions {
		if booking.Sessions[i].Status != models.SessionCancelled {
			booking.Sessions[i].Status = models.SessionCompleted
		}
	}

	if err := s.repo.Update(ctx, *booking); err != nil {
		return nil, err
	}

	s.logger.Info("booking completed", zap.String("booking_id", booking.ID))
	return booking, nil
}

// AttachMeetingLink stores the meeting URL on one session. Used by the
// post-confirmation job; attaching the same link twice is a no-op.
func (s *LedgerService) AttachMeetingLink(ctx context.Context, bookingID, sessionID, url string) error {
	booking, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	for i := range booking.Sessions {
		if booking.Sessions[i].ID != sessionID {
			continue
		}
		if booking.Sessions[i].MeetingLink != nil && *booking.Sessions[i].MeetingLink == url {
			return nil
		}
		booking.Sessions[i].MeetingLink = &url
		return s.repo.Update(ctx, *booking)
	}
	return appErrors.Clone(appErrors.ErrNotFound, "session not found")
}

// rollForward advances session statuses to match the clock: a scheduled
// session whose interval contains now becomes in-progress, one fully in the
// past becomes completed. Returns true when anything changed.
func (s *LedgerService) rollForward(booking *models.Booking) bool {
	if booking.Status != models.BookingConfirmed {
		return false
	}
	now := s.clock.Now()
	changed := false
	for i := range booking.Sessions {
		session := &booking.Sessions[i]
		switch session.Status {
		case models.SessionScheduled:
			if !session.End().After(now) {
				session.Status = models.SessionCompleted
				changed = true
			} else if !session.Start.After(now) {
				session.Status = models.SessionInProgress
				changed = true
			}
		case models.SessionInProgress:
			if !session.End().After(now) {
				session.Status = models.SessionCompleted
				changed = true
			}
		}
	}
	return changed
}

func historyStatusMatches(b *models.Booking, status string, now time.Time) bool {
	switch status {
	case "", models.FilterAll:
		return true
	case "upcoming":
		if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
			return false
		}
		return !b.AllSessionsEnded(now)
	case "completed":
		return b.Status == models.BookingCompleted
	case "cancelled":
		return b.Status == models.BookingCancelled
	default:
		return false
	}
}

func sortBookings(bookings []models.Booking, sortBy string) {
	switch sortBy {
	case models.BookingSortDateAsc:
		sort.SliceStable(bookings, func(i, j int) bool {
			return bookings[i].FirstSessionStart().Before(bookings[j].FirstSessionStart())
		})
	case models.BookingSortPriceDesc:
		sort.SliceStable(bookings, func(i, j int) bool {
			return bookings[i].Quote.Total.GreaterThan(bookings[j].Quote.Total)
		})
	case models.BookingSortPriceAsc:
		sort.SliceStable(bookings, func(i, j int) bool {
			return bookings[i].Quote.Total.LessThan(bookings[j].Quote.Total)
		})
	default:
		sort.SliceStable(bookings, func(i, j int) bool {
			return bookings[j].FirstSessionStart().Before(bookings[i].FirstSessionStart())
		})
	}
}
