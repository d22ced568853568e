package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitnil,email"`
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	ZipCode  *string `json:"zipCode"`
}

// GetMyProfile handles GET /api/users/me - gets current user's profile
func (h *Handler) GetMyProfile(c *gin.Context) {
	user, err := h.Store.GetUser(c.Request.Context(), currentUser(c))
	if err != nil {
		h.storeError(c, err, "USER_NOT_FOUND", "User profile not found")
		return
	}
	respond(c, http.StatusOK, user)
}

// UpdateMyProfile handles PATCH /api/users/me - updates current user's profile
func (h *Handler) UpdateMyProfile(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	updates := map[string]interface{}{}
	setField(updates, "email", req.Email)
	setField(updates, "full_name", req.FullName)
	setField(updates, "phone", req.Phone)
	setField(updates, "address", req.Address)
	setField(updates, "city", req.City)
	setField(updates, "state", req.State)
	setField(updates, "zip_code", req.ZipCode)

	user, err := h.Store.UpdateUser(c.Request.Context(), currentUser(c), updates)
	if err != nil {
		// Check for duplicate email (works with both PostgreSQL and SQLite)
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			respondError(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
			return
		}
		h.storeError(c, err, "USER_NOT_FOUND", "User profile not found")
		return
	}

	respond(c, http.StatusOK, user)
}
