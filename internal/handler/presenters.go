package handler

import (
	"github.com/tutorhive/booking-api/internal/models"
)

// QuoteResponse is the presentation form of a quote: amounts rounded to two
// decimals at this boundary only.
type QuoteResponse struct {
	BasePrice      string `json:"basePrice"`
	DiscountAmount string `json:"discountAmount"`
	PlatformFee    string `json:"platformFee"`
	Total          string `json:"total"`
}

func newQuoteResponse(q models.PricingQuote) QuoteResponse {
	return QuoteResponse{
		BasePrice:      q.BasePrice.StringFixed(2),
		DiscountAmount: q.DiscountAmount.StringFixed(2),
		PlatformFee:    q.PlatformFee.StringFixed(2),
		Total:          q.Total.StringFixed(2),
	}
}

// BookingResponse wraps a booking with its quote in presentation form.
type BookingResponse struct {
	models.Booking
	Quote QuoteResponse `json:"quote"`
}

func newBookingResponse(b models.Booking) BookingResponse {
	return BookingResponse{Booking: b, Quote: newQuoteResponse(b.Quote)}
}

func newBookingResponses(bookings []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, newBookingResponse(b))
	}
	return out
}
