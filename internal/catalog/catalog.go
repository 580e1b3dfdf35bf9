package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutorhive/booking-api/internal/models"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

// Catalog exposes read access to tutor profiles. The booking engine never
// mutates profiles; upserts exist for seeding and for the profile service to
// push updates.
type Catalog interface {
	GetTeacher(ctx context.Context, id string) (*models.Teacher, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
}

// InMemoryCatalog keeps teacher profiles in a mutex-guarded map and preserves
// insertion order for stable listings.
type InMemoryCatalog struct {
	mu       sync.RWMutex
	teachers map[string]models.Teacher
	order    []string
}

// NewInMemoryCatalog builds an empty catalog.
func NewInMemoryCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{teachers: make(map[string]models.Teacher)}
}

// Upsert inserts or replaces a teacher profile.
func (c *InMemoryCatalog) Upsert(teacher models.Teacher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.teachers[teacher.ID]; !exists {
		c.order = append(c.order, teacher.ID)
	}
	teacher.Availability.Normalize()
	c.teachers[teacher.ID] = teacher
}

// GetTeacher returns the profile for id or ErrNotFound.
func (c *InMemoryCatalog) GetTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	teacher, ok := c.teachers[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	return &teacher, nil
}

// ListTeachers returns all profiles in insertion order.
func (c *InMemoryCatalog) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Teacher, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.teachers[id])
	}
	return out, nil
}

// Seeded returns a catalog preloaded with the marketplace launch roster.
// Weekday availability runs 8:00 to 20:00 on a half-hour grid; teachers
// flagged weekend-available carry the same grid on Saturday and Sunday.
func Seeded(dayStartHour, dayEndHour, stepMinutes int) *InMemoryCatalog {
	c := NewInMemoryCatalog()

	weekdays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	weekend := []time.Weekday{time.Saturday, time.Sunday}

	template := func(weekendToo bool) models.AvailabilityTemplate {
		starts := models.DailyStarts(dayStartHour, dayEndHour, stepMinutes)
		t := make(models.AvailabilityTemplate)
		for _, d := range weekdays {
			t[d] = append([]int(nil), starts...)
		}
		if weekendToo {
			for _, d := range weekend {
				t[d] = append([]int(nil), starts...)
			}
		}
		return t
	}

	for _, t := range []models.Teacher{
		{
			ID:              "T001",
			Name:            "Sarah Johnson",
			Title:           "English Literature Specialist",
			Rating:          4.9,
			ReviewCount:     127,
			ExperienceYears: 8,
			HourlyRate:      decimal.NewFromInt(25),
			Specializations: []string{"English Literature", "Creative Writing", "Grammar", "IELTS Prep"},
			Languages:       []string{"English (Native)", "Spanish (Fluent)"},
			NativeSpeaker:   true, Certified: true, OffersGroupSessions: true, OffersTrialSession: true, WeekendAvailable: true,
		},
		{
			ID:              "T002",
			Name:            "Michael Chen",
			Title:           "Mathematics & Physics Tutor",
			Rating:          4.8,
			ReviewCount:     89,
			ExperienceYears: 5,
			HourlyRate:      decimal.NewFromInt(30),
			Specializations: []string{"Algebra", "Calculus", "Physics", "SAT Math"},
			Languages:       []string{"English (Fluent)", "Mandarin (Native)"},
			Certified:       true, OffersGroupSessions: true,
		},
		{
			ID:              "T003",
			Name:            "Lisa Rodriguez",
			Title:           "Spanish Language Expert",
			Rating:          4.7,
			ReviewCount:     156,
			ExperienceYears: 12,
			HourlyRate:      decimal.NewFromInt(28),
			Specializations: []string{"Spanish Conversation", "Business Spanish", "DELE Prep", "Grammar"},
			Languages:       []string{"Spanish (Native)", "English (Fluent)", "Portuguese (Basic)"},
			NativeSpeaker:   true, Certified: true, OffersTrialSession: true, WeekendAvailable: true,
		},
		{
			ID:              "T004",
			Name:            "David Kim",
			Title:           "Science & Technology Educator",
			Rating:          4.9,
			ReviewCount:     203,
			ExperienceYears: 10,
			HourlyRate:      decimal.NewFromInt(35),
			Specializations: []string{"Computer Science", "Chemistry", "Biology", "AP Sciences"},
			Languages:       []string{"English (Fluent)", "Korean (Native)"},
			Certified:       true, OffersGroupSessions: true, OffersTrialSession: true, WeekendAvailable: true,
		},
		{
			ID:              "T005",
			Name:            "Emma Thompson",
			Title:           "French Language & Culture",
			Rating:          4.6,
			ReviewCount:     78,
			ExperienceYears: 6,
			HourlyRate:      decimal.NewFromInt(22),
			Specializations: []string{"French Conversation", "French Literature", "DELF Prep", "Pronunciation"},
			Languages:       []string{"French (Native)", "English (Fluent)", "Italian (Basic)"},
			NativeSpeaker:   true, OffersGroupSessions: true, OffersTrialSession: true,
		},
		{
			ID:              "T006",
			Name:            "Ahmed Hassan",
			Title:           "Arabic & Islamic Studies",
			Rating:          4.8,
			ReviewCount:     92,
			ExperienceYears: 15,
			HourlyRate:      decimal.NewFromInt(26),
			Specializations: []string{"Modern Standard Arabic", "Quranic Arabic", "Islamic History", "Calligraphy"},
			Languages:       []string{"Arabic (Native)", "English (Fluent)", "French (Basic)"},
			NativeSpeaker:   true, Certified: true, OffersGroupSessions: true, OffersTrialSession: true, WeekendAvailable: true,
		},
	} {
		t.Availability = template(t.WeekendAvailable)
		c.Upsert(t)
	}

	return c
}
