package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/pkg/clock"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type teacherCatalog interface {
	GetTeacher(ctx context.Context, id string) (*models.Teacher, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
}

type sessionSource interface {
	ActiveSessionsForTeacher(ctx context.Context, teacherID string) ([]models.Session, error)
}

// AvailabilityService derives bookable slots from teacher availability
// templates and the live set of booked sessions. Slots are computed fresh on
// every query; nothing here is cached or stored.
type AvailabilityService struct {
	catalog  teacherCatalog
	sessions sessionSource
	clock    clock.Clock
	logger   *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(catalog teacherCatalog, sessions sessionSource, clk clock.Clock, logger *zap.Logger) *AvailabilityService {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{catalog: catalog, sessions: sessions, clock: clk, logger: logger}
}

// SlotsForRange returns the teacher's slots for every day in [from, to] for
// a session of durationMinutes. Template starts are strided by the session
// duration so no two emitted slots overlap. Slots already overlapped by an
// active session are reported as booked; slots whose start has passed are
// omitted. The sequence is deterministic for an unchanged session set.
func (s *AvailabilityService) SlotsForRange(ctx context.Context, teacherID string, from, to time.Time, durationMinutes int) ([]models.TimeSlot, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date range end precedes start")
	}
	if durationMinutes <= 0 {
		durationMinutes = 60
	}

	teacher, err := s.catalog.GetTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	booked, err := s.sessions.ActiveSessionsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booked sessions")
	}

	now := s.clock.Now()
	rate := hourlyToSlotPrice(teacher.HourlyRate, durationMinutes)

	var slots []models.TimeSlot
	firstDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	lastDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		nextFree := -1
		for _, startMinute := range teacher.Availability.StartsOn(day.Weekday()) {
			if startMinute < nextFree {
				continue
			}
			nextFree = startMinute + durationMinutes
			start := day.Add(time.Duration(startMinute) * time.Minute)
			if !start.After(now) {
				continue
			}

			slot := models.TimeSlot{
				TeacherID:       teacherID,
				Start:           start,
				DurationMinutes: durationMinutes,
				Status:          models.SlotAvailable,
				Price:           rate,
			}
			if overlapsAny(booked, start, slot.End()) {
				slot.Status = models.SlotBooked
			}
			slots = append(slots, slot)
		}
	}

	return slots, nil
}

// SlotsForDate is SlotsForRange restricted to one calendar day.
func (s *AvailabilityService) SlotsForDate(ctx context.Context, teacherID string, date time.Time, durationMinutes int) ([]models.TimeSlot, error) {
	return s.SlotsForRange(ctx, teacherID, date, date, durationMinutes)
}

// IsSlotAvailable reports whether [start, start+duration) is free for the
// teacher: the start must lie on the availability template, be in the future,
// and not intersect any active session.
func (s *AvailabilityService) IsSlotAvailable(ctx context.Context, teacherID string, start time.Time, durationMinutes int) (bool, error) {
	return s.IsSlotAvailableExcluding(ctx, teacherID, start, durationMinutes, "")
}

// IsSlotAvailableExcluding is IsSlotAvailable with one session left out of
// the conflict set. Rescheduling needs this so a session can move into an
// interval it currently occupies itself.
func (s *AvailabilityService) IsSlotAvailableExcluding(ctx context.Context, teacherID string, start time.Time, durationMinutes int, excludeSessionID string) (bool, error) {
	teacher, err := s.catalog.GetTeacher(ctx, teacherID)
	if err != nil {
		return false, err
	}

	if !start.After(s.clock.Now()) {
		return false, nil
	}

	startMinute := start.Hour()*60 + start.Minute()
	onTemplate := false
	for _, m := range teacher.Availability.StartsOn(start.Weekday()) {
		if m == startMinute {
			onTemplate = true
			break
		}
	}
	if !onTemplate {
		return false, nil
	}

	booked, err := s.sessions.ActiveSessionsForTeacher(ctx, teacherID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booked sessions")
	}

	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	for _, session := range booked {
		if session.ID == excludeSessionID {
			continue
		}
		if session.Overlaps(start, end) {
			return false, nil
		}
	}
	return true, nil
}

func overlapsAny(sessions []models.Session, start, end time.Time) bool {
	for _, session := range sessions {
		if session.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func hourlyToSlotPrice(hourlyRate decimal.Decimal, durationMinutes int) decimal.Decimal {
	return hourlyRate.Mul(decimal.NewFromInt(int64(durationMinutes))).Div(decimal.NewFromInt(60))
}
