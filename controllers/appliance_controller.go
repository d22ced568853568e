package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartassist/smartassist-api/models"
	"github.com/smartassist/smartassist-api/store"
	"github.com/smartassist/smartassist-api/utils"
)

// CreateApplianceRequest represents the request body for registering an appliance
type CreateApplianceRequest struct {
	Name           string  `json:"name" binding:"required"`
	Type           string  `json:"type" binding:"required"`
	Brand          *string `json:"brand"`
	Model          *string `json:"model"`
	SerialNumber   *string `json:"serialNumber"`
	PurchaseDate   *string `json:"purchaseDate"`
	WarrantyExpiry *string `json:"warrantyExpiry"`
	ManualURL      *string `json:"manualUrl"`
	ImageURL       *string `json:"imageUrl"`
	Notes          *string `json:"notes"`
}

// UpdateApplianceRequest represents a partial appliance update. Absent fields are left unchanged.
type UpdateApplianceRequest struct {
	Name           *string `json:"name" binding:"omitnil,min=1"`
	Type           *string `json:"type" binding:"omitnil,min=1"`
	Brand          *string `json:"brand"`
	Model          *string `json:"model"`
	SerialNumber   *string `json:"serialNumber"`
	PurchaseDate   *string `json:"purchaseDate"`
	WarrantyExpiry *string `json:"warrantyExpiry"`
	ManualURL      *string `json:"manualUrl"`
	ImageURL       *string `json:"imageUrl"`
	Notes          *string `json:"notes"`
}

// ListAppliances handles GET /api/appliances
func (h *Handler) ListAppliances(c *gin.Context) {
	appliances, err := h.Store.ListUserAppliances(c.Request.Context(), currentUser(c))
	if err != nil {
		h.storeError(c, err, "", "")
		return
	}
	respond(c, http.StatusOK, appliances)
}

// GetAppliance handles GET /api/appliances/:id
func (h *Handler) GetAppliance(c *gin.Context) {
	appliance, ok := h.loadAppliance(c, c.Param("id"))
	if !ok {
		return
	}
	respond(c, http.StatusOK, appliance)
}

// CreateAppliance handles POST /api/appliances
func (h *Handler) CreateAppliance(c *gin.Context) {
	var req CreateApplianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	purchaseDate, err := utils.ParseOptionalDate(req.PurchaseDate)
	if err != nil {
		validationError(c, err)
		return
	}
	warrantyExpiry, err := utils.ParseOptionalDate(req.WarrantyExpiry)
	if err != nil {
		validationError(c, err)
		return
	}

	appliance := models.Appliance{
		UserID:         currentUser(c),
		Name:           req.Name,
		Type:           req.Type,
		Brand:          req.Brand,
		Model:          req.Model,
		SerialNumber:   req.SerialNumber,
		PurchaseDate:   purchaseDate,
		WarrantyExpiry: warrantyExpiry,
		ManualURL:      req.ManualURL,
		ImageURL:       req.ImageURL,
		Notes:          req.Notes,
	}
	if err := h.Store.CreateAppliance(c.Request.Context(), &appliance); err != nil {
		h.storeError(c, err, "", "")
		return
	}

	respond(c, http.StatusCreated, appliance)
}

// UpdateAppliance handles PATCH /api/appliances/:id
func (h *Handler) UpdateAppliance(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.loadAppliance(c, id); !ok {
		return
	}

	var req UpdateApplianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	fields := map[string]interface{}{}
	setField(fields, "name", req.Name)
	setField(fields, "type", req.Type)
	setField(fields, "brand", req.Brand)
	setField(fields, "model", req.Model)
	setField(fields, "serial_number", req.SerialNumber)
	setField(fields, "manual_url", req.ManualURL)
	setField(fields, "image_url", req.ImageURL)
	setField(fields, "notes", req.Notes)
	for column, value := range map[string]*string{
		"purchase_date":   req.PurchaseDate,
		"warranty_expiry": req.WarrantyExpiry,
	} {
		if value == nil {
			continue
		}
		parsed, err := utils.ParseOptionalDate(value)
		if err != nil {
			validationError(c, err)
			return
		}
		fields[column] = parsed
	}

	appliance, err := h.Store.UpdateAppliance(c.Request.Context(), id, fields)
	if err != nil {
		h.storeError(c, err, "APPLIANCE_NOT_FOUND", "Appliance not found")
		return
	}
	respond(c, http.StatusOK, appliance)
}

// DeleteAppliance handles DELETE /api/appliances/:id
func (h *Handler) DeleteAppliance(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.loadAppliance(c, id); !ok {
		return
	}

	if err := h.Store.DeleteAppliance(c.Request.Context(), id); err != nil {
		h.storeError(c, err, "APPLIANCE_NOT_FOUND", "Appliance not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// loadAppliance fetches an appliance owned by the current user, writing a 404 otherwise
func (h *Handler) loadAppliance(c *gin.Context, id string) (*models.Appliance, bool) {
	appliance, err := h.Store.GetAppliance(c.Request.Context(), id)
	if err == nil && appliance.UserID != currentUser(c) {
		err = store.ErrNotFound
	}
	if err != nil {
		h.storeError(c, err, "APPLIANCE_NOT_FOUND", "Appliance not found")
		return nil, false
	}
	return appliance, true
}

// setField records a partial-update column when the request carried it
func setField[T any](fields map[string]interface{}, column string, value *T) {
	if value != nil {
		fields[column] = *value
	}
}
