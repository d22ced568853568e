package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartassist/smartassist-api/store"
)

// ListTechnicians handles GET /api/technicians?city=&state=&specialty=
func (h *Handler) ListTechnicians(c *gin.Context) {
	filter := store.TechnicianFilter{
		City:      c.Query("city"),
		State:     c.Query("state"),
		Specialty: c.Query("specialty"),
	}

	ctx := c.Request.Context()
	var (
		technicians interface{}
		err         error
	)
	if filter.IsEmpty() {
		technicians, err = h.Store.ListTechnicians(ctx)
	} else {
		technicians, err = h.Store.SearchTechnicians(ctx, filter)
	}
	if err != nil {
		h.storeError(c, err, "", "")
		return
	}
	respond(c, http.StatusOK, technicians)
}

// GetTechnician handles GET /api/technicians/:id
func (h *Handler) GetTechnician(c *gin.Context) {
	technician, err := h.Store.GetTechnician(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err, "TECHNICIAN_NOT_FOUND", "Technician not found")
		return
	}
	respond(c, http.StatusOK, technician)
}

// ListTechnicianReviews handles GET /api/technicians/:id/reviews
func (h *Handler) ListTechnicianReviews(c *gin.Context) {
	reviews, err := h.Store.ListTechnicianReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err, "", "")
		return
	}
	respond(c, http.StatusOK, reviews)
}

// ListTechnicianBookings handles GET /api/technicians/:id/bookings. Only the
// current user's bookings with the technician are listed.
func (h *Handler) ListTechnicianBookings(c *gin.Context) {
	bookings, err := h.Store.ListTechnicianBookings(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		h.storeError(c, err, "", "")
		return
	}
	respond(c, http.StatusOK, bookings)
}
