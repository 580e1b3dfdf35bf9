package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/service"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
	"github.com/tutorhive/booking-api/pkg/response"
)

// BookingHandler wires the booking ledger to HTTP routes.
type BookingHandler struct {
	ledger  *service.LedgerService
	exports *service.HistoryExportService
}

// NewBookingHandler constructs a new BookingHandler. exports may be nil when
// the export feature is disabled.
func NewBookingHandler(ledger *service.LedgerService, exports *service.HistoryExportService) *BookingHandler {
	return &BookingHandler{ledger: ledger, exports: exports}
}

// Create godoc
// @Summary Create a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	booking, err := h.ledger.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, newBookingResponse(*booking))
}

// Get godoc
// @Summary Get booking detail
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, newBookingResponse(*booking), nil)
}

// List godoc
// @Summary List booking history for the caller
// @Tags Bookings
// @Produce json
// @Param status query string false "Status filter (all, upcoming, completed, cancelled)"
// @Param sort query string false "Sort key (date-desc, date-asc, price-desc, price-asc)"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	filter := models.BookingHistoryFilter{
		Status: c.DefaultQuery("status", models.FilterAll),
		SortBy: c.DefaultQuery("sort", models.BookingSortDateDesc),
	}
	bookings, err := h.ledger.List(c.Request.Context(), actorFromRequest(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, newBookingResponses(bookings), nil)
}

// Confirm godoc
// @Summary Confirm and pay for a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body service.ConfirmBookingRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	var req service.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid confirmation payload"))
		return
	}
	booking, err := h.ledger.Confirm(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, newBookingResponse(*booking), nil)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body service.CancelBookingRequest false "Cancellation payload"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req service.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancellation payload"))
			return
		}
	}
	booking, err := h.ledger.Cancel(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, newBookingResponse(*booking), nil)
}

// Reschedule godoc
// @Summary Reschedule one session of a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body service.RescheduleBookingRequest true "Reschedule payload"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/reschedule [post]
func (h *BookingHandler) Reschedule(c *gin.Context) {
	var req service.RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reschedule payload"))
		return
	}
	booking, err := h.ledger.Reschedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, newBookingResponse(*booking), nil)
}

// Complete godoc
// @Summary Mark a booking completed
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	booking, err := h.ledger.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, newBookingResponse(*booking), nil)
}

// Export godoc
// @Summary Export booking history
// @Tags Bookings
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "Export format (csv, pdf)"
// @Param status query string false "Status filter"
// @Success 200 {file} binary
// @Router /bookings/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	filter := models.BookingHistoryFilter{
		Status: c.DefaultQuery("status", models.FilterAll),
		SortBy: c.DefaultQuery("sort", models.BookingSortDateDesc),
	}
	result, err := h.exports.Export(c.Request.Context(), actorFromRequest(c), filter, c.DefaultQuery("format", service.ExportCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Bytes)
}
