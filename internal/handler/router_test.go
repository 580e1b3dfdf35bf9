package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/catalog"
	"github.com/tutorhive/booking-api/internal/payment"
	"github.com/tutorhive/booking-api/internal/repository"
	"github.com/tutorhive/booking-api/internal/service"
	"github.com/tutorhive/booking-api/pkg/clock"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newTestRouter wires the HTTP surface against in-memory services, frozen the
// day before the first bookable slot used in these tests.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.Fixed(time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC))
	logr := zap.NewNop()

	teachers := catalog.Seeded(8, 20, 30)
	bookings := repository.NewInMemoryBookingRepository()

	availability := service.NewAvailabilityService(teachers, bookings, clk, logr)
	search := service.NewSearchService(teachers, logr)
	pricing := service.NewPricingService(nil, logr)
	planner := service.NewPlannerService(nil, logr)

	ledger := service.NewLedgerService(bookings, availability, pricing, planner, nil, payment.NewStubProcessor(logr), service.LedgerOptions{
		Clock: clk,
	})
	wizard := service.NewWizardService(teachers, availability, pricing, planner, ledger, service.WizardOptions{Clock: clk})
	exports := service.NewHistoryExportService(ledger, teachers, clk, logr)

	teacherHandler := NewTeacherHandler(search, availability, 90*24*time.Hour)
	quoteHandler := NewQuoteHandler(pricing)
	bookingHandler := NewBookingHandler(ledger, exports)
	wizardHandler := NewWizardHandler(wizard)

	r := gin.New()
	r.GET("/teachers", teacherHandler.List)
	r.GET("/teachers/:id", teacherHandler.Get)
	r.GET("/teachers/:id/slots", teacherHandler.Slots)
	r.POST("/quotes", quoteHandler.Quote)
	r.POST("/bookings", bookingHandler.Create)
	r.GET("/bookings", bookingHandler.List)
	r.GET("/bookings/export", bookingHandler.Export)
	r.GET("/bookings/:id", bookingHandler.Get)
	r.POST("/bookings/:id/confirm", bookingHandler.Confirm)
	r.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	r.POST("/wizard", wizardHandler.Start)
	r.POST("/wizard/:id/teacher", wizardHandler.SelectTeacher)
	r.POST("/wizard/:id/datetime", wizardHandler.SelectDateTime)
	r.POST("/wizard/:id/session-type", wizardHandler.SelectSessionType)
	r.POST("/wizard/:id/confirm", wizardHandler.Confirm)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "stu-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if len(rec.Body.Bytes()) > 0 && rec.Header().Get("Content-Type") != "text/csv" {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func TestTeacherEndpoints(t *testing.T) {
	r := newTestRouter(t)

	rec, env := doJSON(t, r, http.MethodGet, "/teachers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var teachers []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &teachers))
	assert.Len(t, teachers, 6)

	rec, env = doJSON(t, r, http.MethodGet, "/teachers/T001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var teacher map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &teacher))
	assert.Equal(t, "Sarah Johnson", teacher["name"])

	rec, env = doJSON(t, r, http.MethodGet, "/teachers/T001/slots?from=2026-09-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var slots []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &slots))
	assert.Len(t, slots, 12)

	rec, env = doJSON(t, r, http.MethodGet, "/teachers/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, env = doJSON(t, r, http.MethodGet, "/teachers/T001/slots?from=bogus", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The range cap rejects windows wider than the configured maximum.
	rec, env = doJSON(t, r, http.MethodGet, "/teachers/T001/slots?from=2026-09-07&to=2027-09-07", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestQuoteEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec, env := doJSON(t, r, http.MethodPost, "/quotes", map[string]any{
		"sessionType": "individual",
		"frequency":   "weekly",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var quote QuoteResponse
	require.NoError(t, json.Unmarshal(env.Data, &quote))
	assert.Equal(t, "25.00", quote.BasePrice)
	assert.Equal(t, "2.50", quote.DiscountAmount)
	assert.Equal(t, "23.63", quote.Total)

	rec, env = doJSON(t, r, http.MethodPost, "/quotes", map[string]any{"sessionType": "mystery"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	create := map[string]any{
		"studentId":   "stu-1",
		"teacherId":   "T001",
		"sessionType": "individual",
		"start":       "2026-09-07T10:00:00Z",
	}

	rec, env := doJSON(t, r, http.MethodPost, "/bookings", create)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created BookingResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "26.25", created.Quote.Total)

	// A second booking for the same slot conflicts.
	rec, env = doJSON(t, r, http.MethodPost, "/bookings", create)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SLOT_UNAVAILABLE", env.Error.Code)

	rec, env = doJSON(t, r, http.MethodPost, fmt.Sprintf("/bookings/%s/confirm", created.ID), map[string]any{
		"paymentMethod": "card",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var confirmed BookingResponse
	require.NoError(t, json.Unmarshal(env.Data, &confirmed))
	assert.Equal(t, "confirmed", string(confirmed.Status))

	rec, env = doJSON(t, r, http.MethodGet, "/bookings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []BookingResponse
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)

	rec, _ = doJSON(t, r, http.MethodGet, "/bookings/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "Sarah Johnson")
}

func TestBookingExportDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewBookingHandler(nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/bookings/export?format=csv", nil)

	h.Export(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWizardFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	rec, env := doJSON(t, r, http.MethodPost, "/wizard", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var session service.WizardSession
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(t, session.ID)

	rec, _ = doJSON(t, r, http.MethodPost, "/wizard/"+session.ID+"/teacher", map[string]any{"teacherId": "T001"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/wizard/"+session.ID+"/datetime", map[string]any{"start": "2026-09-07T10:00:00Z"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/wizard/"+session.ID+"/session-type", map[string]any{"sessionType": "individual"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = doJSON(t, r, http.MethodPost, "/wizard/"+session.ID+"/confirm", map[string]any{"paymentMethod": "card"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, service.StepDone, session.Step)
	assert.NotEmpty(t, session.BookingID)
}
