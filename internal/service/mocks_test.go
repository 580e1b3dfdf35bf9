package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutorhive/booking-api/internal/models"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type fakeCatalog struct {
	teachers map[string]models.Teacher
	order    []string
}

func newFakeCatalog(teachers ...models.Teacher) *fakeCatalog {
	c := &fakeCatalog{teachers: make(map[string]models.Teacher)}
	for _, t := range teachers {
		c.teachers[t.ID] = t
		c.order = append(c.order, t.ID)
	}
	return c
}

func (c *fakeCatalog) GetTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := c.teachers[id]; ok {
		return &t, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
}

func (c *fakeCatalog) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	out := make([]models.Teacher, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.teachers[id])
	}
	return out, nil
}

type fakeSessions struct {
	sessions []models.Session
}

func (f *fakeSessions) ActiveSessionsForTeacher(ctx context.Context, teacherID string) ([]models.Session, error) {
	var out []models.Session
	for _, s := range f.sessions {
		if s.TeacherID == teacherID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakePayments struct {
	succeed bool
	charged []decimal.Decimal
}

func (f *fakePayments) Charge(ctx context.Context, amount decimal.Decimal, method models.PaymentMethod) (models.PaymentResult, error) {
	f.charged = append(f.charged, amount)
	if !f.succeed {
		return models.PaymentResult{Success: false}, nil
	}
	return models.PaymentResult{Success: true, Reference: "pay_test"}, nil
}

// weekdayTemplate builds an availability template covering 8:00-20:00 on a
// 30 minute grid for the given weekdays.
func weekdayTemplate(days ...time.Weekday) models.AvailabilityTemplate {
	t := make(models.AvailabilityTemplate)
	for _, d := range days {
		t[d] = models.DailyStarts(8, 20, 30)
	}
	return t
}

func testTeacher(id string) models.Teacher {
	return models.Teacher{
		ID:              id,
		Name:            "Test Teacher",
		Rating:          4.8,
		ExperienceYears: 6,
		HourlyRate:      decimal.NewFromInt(30),
		Specializations: []string{"Algebra", "Calculus"},
		Availability: weekdayTemplate(
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		),
	}
}
