package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhive/booking-api/internal/service"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
	"github.com/tutorhive/booking-api/pkg/response"
)

// QuoteHandler exposes pricing quotes.
type QuoteHandler struct {
	pricing *service.PricingService
}

// NewQuoteHandler constructs a new QuoteHandler.
func NewQuoteHandler(pricing *service.PricingService) *QuoteHandler {
	return &QuoteHandler{pricing: pricing}
}

// Quote godoc
// @Summary Compute a price quote
// @Tags Pricing
// @Accept json
// @Produce json
// @Param payload body service.QuoteRequest true "Quote payload"
// @Success 200 {object} response.Envelope
// @Router /quotes [post]
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req service.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quote payload"))
		return
	}
	quote, err := h.pricing.Quote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, newQuoteResponse(*quote), nil)
}
