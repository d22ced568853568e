package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartassist/smartassist-api/models"
)

// CreateReviewRequest represents the request body for reviewing a technician
type CreateReviewRequest struct {
	BookingID    string  `json:"bookingId" binding:"required"`
	TechnicianID string  `json:"technicianId" binding:"required"`
	Rating       int     `json:"rating" binding:"required,min=1,max=5"`
	Comment      *string `json:"comment"`
}

// CreateReview handles POST /api/reviews. The technician's rating and review
// count are recomputed in the same transaction as the insert.
func (h *Handler) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	booking, ok := h.loadBooking(c, req.BookingID)
	if !ok {
		return
	}
	if booking.TechnicianID != req.TechnicianID {
		respondError(c, http.StatusBadRequest, "TECHNICIAN_MISMATCH", "Booking was not with this technician")
		return
	}

	review := models.Review{
		BookingID:    req.BookingID,
		UserID:       currentUser(c),
		TechnicianID: req.TechnicianID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
	if err := h.Store.CreateReview(c.Request.Context(), &review); err != nil {
		h.storeError(c, err, "TECHNICIAN_NOT_FOUND", "Technician not found")
		return
	}

	respond(c, http.StatusCreated, review)
}
