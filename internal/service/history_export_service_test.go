package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/pkg/clock"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

type fakeHistory struct {
	bookings  []models.Booking
	lastActor models.Actor
}

func (f *fakeHistory) List(ctx context.Context, actor models.Actor, filter models.BookingHistoryFilter) ([]models.Booking, error) {
	f.lastActor = actor
	return f.bookings, nil
}

func exportTestBooking() models.Booking {
	refund := models.RefundPending
	return models.Booking{
		ID:          "bk-1",
		TeacherID:   "T001",
		StudentID:   "stu-1",
		SessionType: models.SessionIndividual,
		Status:      models.BookingCancelled,
		Quote: models.PricingQuote{
			BasePrice:   decimal.NewFromInt(25),
			PlatformFee: decimal.RequireFromString("1.25"),
			Total:       decimal.RequireFromString("26.25"),
		},
		RefundStatus: &refund,
		Sessions: []models.Session{{
			ID:              "bk-1-s1",
			TeacherID:       "T001",
			Start:           time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
			Status:          models.SessionCancelled,
		}},
	}
}

func TestHistoryExportCSV(t *testing.T) {
	history := &fakeHistory{bookings: []models.Booking{exportTestBooking()}}
	svc := NewHistoryExportService(history, newFakeCatalog(testTeacher("T001")), clock.Fixed(fixedNow), zap.NewNop())

	actor := models.Actor{ID: "stu-1", Role: models.RoleStudent}
	result, err := svc.Export(context.Background(), actor, models.BookingHistoryFilter{Status: models.FilterAll}, ExportCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	// The filename is stamped from the injected clock, not the wall clock.
	assert.Equal(t, "booking-history-20260901.csv", result.Filename)
	assert.Equal(t, actor, history.lastActor)

	lines := strings.Split(strings.TrimSpace(string(result.Bytes)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Booking,Teacher,Type,First Session,Sessions,Status,Total,Refund", lines[0])
	assert.Equal(t, "bk-1,Test Teacher,individual,2026-09-07 10:00,1,cancelled,26.25,pending", lines[1])
}

func TestHistoryExportParentSeesStudentColumn(t *testing.T) {
	history := &fakeHistory{bookings: []models.Booking{exportTestBooking()}}
	svc := NewHistoryExportService(history, newFakeCatalog(testTeacher("T001")), clock.Fixed(fixedNow), zap.NewNop())

	result, err := svc.Export(context.Background(), models.Actor{ID: "par-1", Role: models.RoleParent}, models.BookingHistoryFilter{Status: models.FilterAll}, ExportCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(result.Bytes)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Booking,Student,Teacher,Type,First Session,Sessions,Status,Total,Refund", lines[0])
	assert.Contains(t, lines[1], "bk-1,stu-1,Test Teacher")
}

func TestHistoryExportFallsBackToTeacherID(t *testing.T) {
	history := &fakeHistory{bookings: []models.Booking{exportTestBooking()}}
	svc := NewHistoryExportService(history, newFakeCatalog(), clock.Fixed(fixedNow), zap.NewNop())

	result, err := svc.Export(context.Background(), models.Actor{ID: "stu-1", Role: models.RoleStudent}, models.BookingHistoryFilter{Status: models.FilterAll}, ExportCSV)
	require.NoError(t, err)
	assert.Contains(t, string(result.Bytes), "bk-1,T001,")
}

func TestHistoryExportPDF(t *testing.T) {
	history := &fakeHistory{bookings: []models.Booking{exportTestBooking()}}
	svc := NewHistoryExportService(history, newFakeCatalog(testTeacher("T001")), clock.Fixed(fixedNow), zap.NewNop())

	result, err := svc.Export(context.Background(), models.Actor{ID: "stu-1", Role: models.RoleStudent}, models.BookingHistoryFilter{Status: models.FilterAll}, ExportPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "booking-history-20260901.pdf", result.Filename)
	assert.True(t, bytes.HasPrefix(result.Bytes, []byte("%PDF")))
}

func TestHistoryExportRejectsUnknownFormat(t *testing.T) {
	svc := NewHistoryExportService(&fakeHistory{}, newFakeCatalog(), clock.Fixed(fixedNow), zap.NewNop())

	_, err := svc.Export(context.Background(), models.Actor{ID: "stu-1", Role: models.RoleStudent}, models.BookingHistoryFilter{Status: models.FilterAll}, "xlsx")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
