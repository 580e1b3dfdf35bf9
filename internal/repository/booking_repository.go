package repository

import (
	"context"
	"sync"

	"github.com/tutorhive/booking-api/internal/models"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

// BookingRepository stores bookings. The in-memory implementation is the
// system of record for this service; persistence sits behind this interface
// so a database can be swapped in without touching the engine.
type BookingRepository interface {
	Insert(ctx context.Context, booking models.Booking) error
	Get(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, booking models.Booking) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	ActiveSessionsForTeacher(ctx context.Context, teacherID string) ([]models.Session, error)
}

// InMemoryBookingRepository keeps bookings in a mutex-guarded map. All reads
// return deep copies so callers cannot mutate stored state.
type InMemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
	order    []string
}

// NewInMemoryBookingRepository builds an empty store.
func NewInMemoryBookingRepository() *InMemoryBookingRepository {
	return &InMemoryBookingRepository{bookings: make(map[string]models.Booking)}
}

// Insert stores a new booking. The ID must be unused.
func (r *InMemoryBookingRepository) Insert(ctx context.Context, booking models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bookings[booking.ID]; exists {
		return appErrors.Clone(appErrors.ErrConflict, "booking id already exists")
	}
	r.bookings[booking.ID] = copyBooking(booking)
	r.order = append(r.order, booking.ID)
	return nil
}

// Get returns a copy of the booking or ErrNotFound.
func (r *InMemoryBookingRepository) Get(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
	}
	out := copyBooking(booking)
	return &out, nil
}

// Update replaces an existing booking.
func (r *InMemoryBookingRepository) Update(ctx context.Context, booking models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[booking.ID]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
	}
	r.bookings[booking.ID] = copyBooking(booking)
	return nil
}

// ListByStudent returns the student's bookings in insertion order.
func (r *InMemoryBookingRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error) {
	return r.list(func(b models.Booking) bool { return b.StudentID == studentID }), nil
}

// ListByTeacher returns the teacher's bookings in insertion order.
func (r *InMemoryBookingRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error) {
	return r.list(func(b models.Booking) bool { return b.TeacherID == teacherID }), nil
}

// ListAll returns every booking in insertion order.
func (r *InMemoryBookingRepository) ListAll(ctx context.Context) ([]models.Booking, error) {
	return r.list(func(models.Booking) bool { return true }), nil
}

// ActiveSessionsForTeacher returns every non-cancelled session belonging to a
// pending or confirmed booking against the teacher. This is the conflict set
// availability checks run against.
func (r *InMemoryBookingRepository) ActiveSessionsForTeacher(ctx context.Context, teacherID string) ([]models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sessions []models.Session
	for _, id := range r.order {
		b := r.bookings[id]
		if b.TeacherID != teacherID {
			continue
		}
		if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
			continue
		}
		for _, s := range b.Sessions {
			if s.Status == models.SessionCancelled {
				continue
			}
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

func (r *InMemoryBookingRepository) list(match func(models.Booking) bool) []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Booking
	for _, id := range r.order {
		b := r.bookings[id]
		if match(b) {
			out = append(out, copyBooking(b))
		}
	}
	return out
}

func copyBooking(b models.Booking) models.Booking {
	out := b
	out.Sessions = make([]models.Session, len(b.Sessions))
	copy(out.Sessions, b.Sessions)
	for i := range out.Sessions {
		out.Sessions[i].MeetingLink = copyString(b.Sessions[i].MeetingLink)
	}
	if b.Recurrence != nil {
		plan := *b.Recurrence
		out.Recurrence = &plan
	}
	out.CancellationReason = copyString(b.CancellationReason)
	out.RefundStatus = copyString(b.RefundStatus)
	out.PaymentReference = copyString(b.PaymentReference)
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
