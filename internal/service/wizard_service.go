package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/pkg/clock"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

// WizardStep identifies a state of the booking flow.
type WizardStep string

const (
	StepSelectTeacher     WizardStep = "select_teacher"
	StepSelectDateTime    WizardStep = "select_datetime"
	StepSelectSessionType WizardStep = "select_session_type"
	StepConfirm           WizardStep = "confirm"
	StepDone              WizardStep = "done"
)

var stepOrder = map[WizardStep]int{
	StepSelectTeacher:     0,
	StepSelectDateTime:    1,
	StepSelectSessionType: 2,
	StepConfirm:           3,
	StepDone:              4,
}

// WizardSession is the accumulated state of one booking flow. Committed
// selections survive backward navigation; only forward movement is gated.
type WizardSession struct {
	ID          string               `json:"id"`
	StudentID   string               `json:"studentId"`
	Step        WizardStep           `json:"step"`
	TeacherID   string               `json:"teacherId,omitempty"`
	SlotStart   time.Time            `json:"slotStart,omitempty"`
	SessionType models.SessionType   `json:"sessionType,omitempty"`
	Recurrence  *RecurrenceRequest   `json:"recurrence,omitempty"`
	Quote       *models.PricingQuote `json:"quote,omitempty"`
	BookingID   string               `json:"bookingId,omitempty"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type wizardStore struct {
	ttl   time.Duration
	clock clock.Clock
	mu    sync.RWMutex
	items map[string]WizardSession
}

func newWizardStore(ttl time.Duration, clk clock.Clock) *wizardStore {
	return &wizardStore{
		ttl:   ttl,
		clock: clk,
		items: make(map[string]WizardSession),
	}
}

func (s *wizardStore) Save(session WizardSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.UpdatedAt = s.clock.Now()
	s.items[session.ID] = session
}

func (s *wizardStore) Get(id string) (WizardSession, bool) {
	s.mu.RLock()
	session, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return WizardSession{}, false
	}
	if s.clock.Now().Sub(session.UpdatedAt) > s.ttl {
		s.Delete(id)
		return WizardSession{}, true
	}
	return session, true
}

func (s *wizardStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

type bookingCreator interface {
	Create(ctx context.Context, req CreateBookingRequest) (*models.Booking, error)
	Confirm(ctx context.Context, id string, req ConfirmBookingRequest) (*models.Booking, error)
}

type wizardMetrics interface {
	WizardExpired()
}

// WizardService sequences a student through teacher selection, slot
// selection, session type and confirmation. Forward progress is gated on the
// previous step being valid; state lives in an in-memory store with a TTL so
// abandoned flows evaporate.
type WizardService struct {
	store     *wizardStore
	catalog   teacherCatalog
	slots     slotChecker
	pricing   quoter
	planner   planExpander
	ledger    bookingCreator
	metrics   wizardMetrics
	clock     clock.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// WizardOptions groups the optional collaborators of the wizard.
type WizardOptions struct {
	TTL       time.Duration
	Metrics   wizardMetrics
	Clock     clock.Clock
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewWizardService constructs a WizardService.
func NewWizardService(catalog teacherCatalog, slots slotChecker, pricing quoter, planner planExpander, ledger bookingCreator, opts WizardOptions) *WizardService {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Validator == nil {
		opts.Validator = validator.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &WizardService{
		store:     newWizardStore(opts.TTL, opts.Clock),
		catalog:   catalog,
		slots:     slots,
		pricing:   pricing,
		planner:   planner,
		ledger:    ledger,
		metrics:   opts.Metrics,
		clock:     opts.Clock,
		validator: opts.Validator,
		logger:    opts.Logger,
	}
}

// Start opens a new wizard session for the student.
func (s *WizardService) Start(ctx context.Context, studentID string) (*WizardSession, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	session := WizardSession{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Step:      StepSelectTeacher,
	}
	s.store.Save(session)
	return &session, nil
}

// Get returns the current wizard state.
func (s *WizardService) Get(ctx context.Context, wizardID string) (*WizardSession, error) {
	session, err := s.load(wizardID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SelectTeacher commits the teacher choice and advances to date selection.
func (s *WizardService) SelectTeacher(ctx context.Context, wizardID, teacherID string) (*WizardSession, error) {
	session, err := s.load(wizardID)
	if err != nil {
		return nil, err
	}
	if stepOrder[session.Step] > stepOrder[StepSelectTeacher] && session.Step != StepDone {
		// Changing the teacher restarts the downstream selections.
		session.SlotStart = time.Time{}
		session.SessionType = ""
		session.Recurrence = nil
		session.Quote = nil
	}
	if session.Step == StepDone {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "wizard already completed")
	}

	if _, err := s.catalog.GetTeacher(ctx, teacherID); err != nil {
		return nil, err
	}

	session.TeacherID = teacherID
	session.Step = StepSelectDateTime
	s.store.Save(*session)
	return session, nil
}

// SelectDateTime commits the slot choice. The slot is validated against live
// availability using the default session length; the exact duration is
// re-verified at confirmation once the session type is known.
func (s *WizardService) SelectDateTime(ctx context.Context, wizardID string, start time.Time) (*WizardSession, error) {
	session, err := s.load(wizardID)
	if err != nil {
		return nil, err
	}
	if session.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "select a teacher first")
	}
	if session.Step == StepDone {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "wizard already completed")
	}

	available, err := s.slots.IsSlotAvailable(ctx, session.TeacherID, start, 60)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "")
	}

	session.SlotStart = start
	session.Step = StepSelectSessionType
	s.store.Save(*session)
	return session, nil
}

// SelectSessionType commits the session type and optional recurrence, and
// computes the live quote shown on the confirmation step.
func (s *WizardService) SelectSessionType(ctx context.Context, wizardID string, sessionType models.SessionType, recurrence *RecurrenceRequest) (*WizardSession, error) {
	session, err := s.load(wizardID)
	if err != nil {
		return nil, err
	}
	if session.SlotStart.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "select a date and time first")
	}
	if session.Step == StepDone {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "wizard already completed")
	}

	if _, ok := sessionType.Spec(); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown session type")
	}

	// The quote shown on the confirmation step must match what Confirm will
	// charge, so a recurring selection is expanded to its real session count
	// here with the same plan the ledger will use.
	var frequency models.Frequency
	sessionCount := 1
	if recurrence != nil {
		if err := s.validator.Struct(recurrence); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurrence")
		}
		frequency = recurrence.Frequency
		occurrences, err := s.planner.Expand(ctx, models.RecurrencePlan{
			Frequency:    recurrence.Frequency,
			WindowMonths: recurrence.WindowMonths,
			StartDate:    session.SlotStart,
		})
		if err != nil {
			return nil, err
		}
		sessionCount = len(occurrences)
	}

	quote, err := s.pricing.Quote(ctx, QuoteRequest{SessionType: sessionType, Frequency: frequency, SessionCount: sessionCount})
	if err != nil {
		return nil, err
	}

	session.SessionType = sessionType
	session.Recurrence = recurrence
	session.Quote = quote
	session.Step = StepConfirm
	s.store.Save(*session)
	return session, nil
}

// Back navigates to an earlier step without discarding committed state.
// Re-entering the date step re-validates the held slot; if another booking
// claimed it in the meantime the selection is cleared.
func (s *WizardService) Back(ctx context.Context, wizardID string, target WizardStep) (*WizardSession, error) {
	session, err := s.load(wizardID)
	if err != nil {
		return nil, err
	}
	order, ok := stepOrder[target]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown wizard step")
	}
	if order > stepOrder[session.Step] {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "forward navigation must pass each step's gate")
	}
	if session.Step == StepDone {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "wizard already completed")
	}

	session.Step = target

	if target == StepSelectDateTime && !session.SlotStart.IsZero() {
		available, err := s.slots.IsSlotAvailable(ctx, session.TeacherID, session.SlotStart, 60)
		if err != nil {
			return nil, err
		}
		if !available {
			session.SlotStart = time.Time{}
			s.store.Save(*session)
			return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "previously selected slot is no longer available")
		}
	}

	s.store.Save(*session)
	return session, nil
}

// Confirm creates the booking from the accumulated state and collects
// payment. A slot conflict at this point pushes the wizard back to the date
// step with the stale selection cleared.
func (s *WizardService) Confirm(ctx context.Context, wizardID string, method models.PaymentMethod) (*WizardSession, error) {
	session, err := s.load(wizardID)
	if err != nil {
		return nil, err
	}
	if session.Step != StepConfirm {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "wizard is not ready to confirm")
	}

	// A previous confirm attempt may already have created the booking and
	// failed only on payment; in that case just retry the charge.
	bookingID := session.BookingID
	if bookingID == "" {
		booking, err := s.ledger.Create(ctx, CreateBookingRequest{
			StudentID:   session.StudentID,
			TeacherID:   session.TeacherID,
			SessionType: session.SessionType,
			Start:       session.SlotStart,
			Recurrence:  session.Recurrence,
		})
		if err != nil {
			if appErrors.Is(err, appErrors.ErrSlotUnavailable) || appErrors.Is(err, appErrors.ErrRecurringConflict) {
				session.SlotStart = time.Time{}
				session.Step = StepSelectDateTime
				s.store.Save(*session)
			}
			return nil, err
		}
		bookingID = booking.ID
	}

	confirmed, err := s.ledger.Confirm(ctx, bookingID, ConfirmBookingRequest{PaymentMethod: method})
	if err != nil {
		// The booking stays pending; the student can retry payment.
		session.BookingID = bookingID
		s.store.Save(*session)
		return nil, err
	}

	session.BookingID = confirmed.ID
	session.Quote = &confirmed.Quote
	session.Step = StepDone
	s.store.Save(*session)

	s.logger.Info("wizard completed",
		zap.String("wizard_id", session.ID),
		zap.String("booking_id", confirmed.ID),
	)
	return session, nil
}

func (s *WizardService) load(wizardID string) (*WizardSession, error) {
	session, found := s.store.Get(wizardID)
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "wizard session not found")
	}
	if session.ID == "" {
		// Found but expired.
		if s.metrics != nil {
			s.metrics.WizardExpired()
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "wizard session expired")
	}
	return &session, nil
}
