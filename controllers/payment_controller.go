package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartassist/smartassist-api/services"
	"github.com/smartassist/smartassist-api/utils"
)

// CreatePaymentIntentRequest represents the request body for starting a payment
type CreatePaymentIntentRequest struct {
	Amount    *float64 `json:"amount" binding:"required"`
	BookingID *string  `json:"bookingId"`
}

// PaymentIntentResponse is returned by POST /api/create-payment-intent
type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// CreatePaymentIntent handles POST /api/create-payment-intent. Non-positive
// amounts are rejected before the processor is contacted.
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	if utils.ToMinorUnits(*req.Amount) < 1 {
		respondError(c, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be at least one minor currency unit")
		return
	}

	var bookingID string
	if req.BookingID != nil && *req.BookingID != "" {
		booking, ok := h.loadBooking(c, *req.BookingID)
		if !ok {
			return
		}
		bookingID = booking.ID
	}

	ctx := c.Request.Context()
	intent, err := h.Payments.CreatePaymentIntent(ctx, services.PaymentIntentRequest{
		Amount:    *req.Amount,
		BookingID: bookingID,
	})
	if err != nil {
		h.paymentError(c, err)
		return
	}

	if bookingID != "" {
		if _, err := h.Store.UpdateBooking(ctx, bookingID, map[string]interface{}{"payment_intent_id": intent.ID}); err != nil {
			h.storeError(c, err, "BOOKING_NOT_FOUND", "Booking not found")
			return
		}
	}

	respond(c, http.StatusOK, PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
}
