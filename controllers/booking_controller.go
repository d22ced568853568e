package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartassist/smartassist-api/models"
	"github.com/smartassist/smartassist-api/services"
	"github.com/smartassist/smartassist-api/store"
	"github.com/smartassist/smartassist-api/utils"
)

// CreateBookingRequest represents the request body for booking a technician
type CreateBookingRequest struct {
	TechnicianID       string   `json:"technicianId" binding:"required"`
	ApplianceID        *string  `json:"applianceId"`
	DiagnosisID        *string  `json:"diagnosisId"`
	ScheduledDate      string   `json:"scheduledDate" binding:"required"`
	ServiceType        string   `json:"serviceType" binding:"required"`
	ProblemDescription string   `json:"problemDescription" binding:"required"`
	EstimatedCost      *float64 `json:"estimatedCost" binding:"omitnil,gte=0"`
	Notes              *string  `json:"notes"`
}

// UpdateBookingRequest represents a partial booking update
type UpdateBookingRequest struct {
	Status        *string  `json:"status" binding:"omitnil,oneof=pending confirmed completed cancelled"`
	PaymentStatus *string  `json:"paymentStatus" binding:"omitnil,oneof=unpaid paid refunded"`
	ScheduledDate *string  `json:"scheduledDate"`
	EstimatedCost *float64 `json:"estimatedCost" binding:"omitnil,gte=0"`
	ActualCost    *float64 `json:"actualCost" binding:"omitnil,gte=0"`
	Notes         *string  `json:"notes"`
}

// ListBookings handles GET /api/bookings
func (h *Handler) ListBookings(c *gin.Context) {
	bookings, err := h.Store.ListUserBookings(c.Request.Context(), currentUser(c))
	if err != nil {
		h.storeError(c, err, "", "")
		return
	}
	respond(c, http.StatusOK, bookings)
}

// GetBooking handles GET /api/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	booking, ok := h.loadBooking(c, c.Param("id"))
	if !ok {
		return
	}
	respond(c, http.StatusOK, booking)
}

// CreateBooking handles POST /api/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	scheduledDate, err := utils.ParseDate(req.ScheduledDate)
	if err != nil {
		validationError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Store.GetTechnician(ctx, req.TechnicianID); err != nil {
		h.storeError(c, err, "TECHNICIAN_NOT_FOUND", "Technician not found")
		return
	}
	applianceID, ok := h.optionalAppliance(c, req.ApplianceID)
	if !ok {
		return
	}
	var diagnosisID *string
	if req.DiagnosisID != nil && *req.DiagnosisID != "" {
		if _, ok := h.loadDiagnosis(c, *req.DiagnosisID); !ok {
			return
		}
		diagnosisID = req.DiagnosisID
	}

	booking := models.Booking{
		UserID:             currentUser(c),
		TechnicianID:       req.TechnicianID,
		ApplianceID:        applianceID,
		DiagnosisID:        diagnosisID,
		ScheduledDate:      scheduledDate,
		ServiceType:        req.ServiceType,
		ProblemDescription: req.ProblemDescription,
		EstimatedCost:      req.EstimatedCost,
		Notes:              req.Notes,
	}
	if err := h.Store.CreateBooking(ctx, &booking); err != nil {
		h.storeError(c, err, "", "")
		return
	}

	respond(c, http.StatusCreated, booking)
}

// UpdateBooking handles PATCH /api/bookings/:id
func (h *Handler) UpdateBooking(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.loadBooking(c, id); !ok {
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	fields := map[string]interface{}{}
	setField(fields, "status", req.Status)
	setField(fields, "payment_status", req.PaymentStatus)
	setField(fields, "estimated_cost", req.EstimatedCost)
	setField(fields, "actual_cost", req.ActualCost)
	setField(fields, "notes", req.Notes)
	if req.ScheduledDate != nil {
		scheduledDate, err := utils.ParseDate(*req.ScheduledDate)
		if err != nil {
			validationError(c, err)
			return
		}
		fields["scheduled_date"] = scheduledDate
	}

	booking, err := h.Store.UpdateBooking(c.Request.Context(), id, fields)
	if err != nil {
		h.storeError(c, err, "BOOKING_NOT_FOUND", "Booking not found")
		return
	}
	respond(c, http.StatusOK, booking)
}

// RefreshPaymentStatus handles POST /api/bookings/:id/payment-status. It reads
// the charge state from the processor and stores it on the booking.
func (h *Handler) RefreshPaymentStatus(c *gin.Context) {
	booking, ok := h.loadBooking(c, c.Param("id"))
	if !ok {
		return
	}
	if booking.PaymentIntentID == nil || *booking.PaymentIntentID == "" {
		respondError(c, http.StatusConflict, "NO_PAYMENT", "Booking has no payment to check")
		return
	}

	ctx := c.Request.Context()
	status, err := h.Payments.PaymentStatus(ctx, *booking.PaymentIntentID)
	if err != nil {
		h.paymentError(c, err)
		return
	}

	if status != booking.PaymentStatus {
		booking, err = h.Store.UpdateBooking(ctx, booking.ID, map[string]interface{}{"payment_status": status})
		if err != nil {
			h.storeError(c, err, "BOOKING_NOT_FOUND", "Booking not found")
			return
		}
	}
	respond(c, http.StatusOK, booking)
}

func (h *Handler) loadBooking(c *gin.Context, id string) (*models.Booking, bool) {
	booking, err := h.Store.GetBooking(c.Request.Context(), id)
	if err == nil && booking.UserID != currentUser(c) {
		err = store.ErrNotFound
	}
	if err != nil {
		h.storeError(c, err, "BOOKING_NOT_FOUND", "Booking not found")
		return nil, false
	}
	return booking, true
}

// paymentError maps processor errors onto the response taxonomy
func (h *Handler) paymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		respondError(c, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero")
	case errors.Is(err, services.ErrPaymentNotConfigured):
		respondError(c, http.StatusServiceUnavailable, "PAYMENT_NOT_CONFIGURED", "Payment processing is not configured")
	default:
		h.Log.WithError(err).Error("payment processor call failed")
		respondErrorDetails(c, http.StatusBadGateway, "PAYMENT_ERROR", "Payment processor request failed", err.Error())
	}
}
