package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/smartassist/smartassist-api/models"
	"github.com/smartassist/smartassist-api/services"
	"github.com/smartassist/smartassist-api/store"
	"github.com/smartassist/smartassist-api/utils"
)

const imageDiagnosisIssue = "Image-based diagnosis"

// MaxImageRequestBytes bounds an analyze-image request body: one image plus form fields
const MaxImageRequestBytes = utils.MaxFileSize + 1<<20

// DiagnoseRequest represents one troubleshooting turn. Without diagnosisId a new
// diagnosis is created; with it the turn is appended to that diagnosis.
type DiagnoseRequest struct {
	Issue               string               `json:"issue" binding:"required"`
	DiagnosisID         *string              `json:"diagnosisId"`
	ApplianceID         *string              `json:"applianceId"`
	ApplianceType       string               `json:"applianceType"`
	Brand               string               `json:"brand"`
	Model               string               `json:"model"`
	ConversationHistory []models.ChatMessage `json:"conversationHistory" binding:"omitempty,dive"`
}

// DiagnoseResponse is returned by POST /api/diagnose
type DiagnoseResponse struct {
	DiagnosisID string `json:"diagnosisId"`
	Response    string `json:"response"`
	Diagnosis   string `json:"diagnosis"`
	Solution    string `json:"solution"`
}

// UpdateDiagnosisRequest represents a partial diagnosis update
type UpdateDiagnosisRequest struct {
	Status      *string               `json:"status" binding:"omitnil,oneof=open resolved escalated"`
	Resolved    *bool                 `json:"resolved"`
	Diagnosis   *string               `json:"diagnosis"`
	Solution    *string               `json:"solution"`
	Messages    *[]models.ChatMessage `json:"messages" binding:"omitempty,dive"`
	ApplianceID *string               `json:"applianceId"`
}

// ImageAnalysisResult is returned by POST /api/analyze-image
type ImageAnalysisResult struct {
	DiagnosisID      string   `json:"diagnosisId"`
	Analysis         string   `json:"analysis"`
	IdentifiedIssues []string `json:"identifiedIssues"`
	Recommendations  string   `json:"recommendations"`
	ImageURL         *string  `json:"imageUrl"`
}

// ListDiagnoses handles GET /api/diagnoses
func (h *Handler) ListDiagnoses(c *gin.Context) {
	diagnoses, err := h.Store.ListUserDiagnoses(c.Request.Context(), currentUser(c))
	if err != nil {
		h.storeError(c, err, "", "")
		return
	}
	for i := range diagnoses {
		h.resolveImageURL(c.Request.Context(), &diagnoses[i])
	}
	respond(c, http.StatusOK, diagnoses)
}

// GetDiagnosis handles GET /api/diagnoses/:id
func (h *Handler) GetDiagnosis(c *gin.Context) {
	diagnosis, ok := h.loadDiagnosis(c, c.Param("id"))
	if !ok {
		return
	}
	h.resolveImageURL(c.Request.Context(), diagnosis)
	respond(c, http.StatusOK, diagnosis)
}

// UpdateDiagnosis handles PATCH /api/diagnoses/:id
func (h *Handler) UpdateDiagnosis(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.loadDiagnosis(c, id); !ok {
		return
	}

	var req UpdateDiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	fields := map[string]interface{}{}
	setField(fields, "status", req.Status)
	setField(fields, "resolved", req.Resolved)
	setField(fields, "diagnosis", req.Diagnosis)
	setField(fields, "solution", req.Solution)
	if req.Messages != nil {
		fields["messages"] = datatypes.JSONSlice[models.ChatMessage](*req.Messages)
	}
	if req.ApplianceID != nil {
		applianceID, ok := h.optionalAppliance(c, req.ApplianceID)
		if !ok {
			return
		}
		fields["appliance_id"] = applianceID
	}

	diagnosis, err := h.Store.UpdateDiagnosis(c.Request.Context(), id, fields)
	if err != nil {
		h.storeError(c, err, "DIAGNOSIS_NOT_FOUND", "Diagnosis not found")
		return
	}
	h.resolveImageURL(c.Request.Context(), diagnosis)
	respond(c, http.StatusOK, diagnosis)
}

// Diagnose handles POST /api/diagnose
func (h *Handler) Diagnose(c *gin.Context) {
	var req DiagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	ctx := c.Request.Context()

	var existing *models.Diagnosis
	if req.DiagnosisID != nil && *req.DiagnosisID != "" {
		var ok bool
		if existing, ok = h.loadDiagnosis(c, *req.DiagnosisID); !ok {
			return
		}
		if req.ApplianceID == nil {
			req.ApplianceID = existing.ApplianceID
		}
	}

	applianceID, ok := h.optionalAppliance(c, req.ApplianceID)
	if !ok {
		return
	}

	history := req.ConversationHistory
	if len(history) == 0 && existing != nil {
		history = existing.Messages
	}

	aiReq := services.DiagnosisRequest{
		Issue:               req.Issue,
		ApplianceType:       req.ApplianceType,
		Brand:               req.Brand,
		Model:               req.Model,
		ConversationHistory: history,
	}
	if applianceID != nil {
		h.fillApplianceDetails(ctx, *applianceID, &aiReq)
	}

	reply, err := h.AI.DiagnoseIssue(ctx, aiReq)
	if err != nil {
		h.Log.WithError(err).Error("AI diagnosis failed")
		respondErrorDetails(c, http.StatusBadGateway, "AI_ERROR", "Failed to get AI diagnosis", err.Error())
		return
	}

	messages := make(datatypes.JSONSlice[models.ChatMessage], 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages,
		models.ChatMessage{Role: models.RoleUser, Content: req.Issue},
		models.ChatMessage{Role: models.RoleAssistant, Content: reply.ConversationResponse},
	)

	var diagnosisID string
	if existing != nil {
		updated, err := h.Store.UpdateDiagnosis(ctx, existing.ID, map[string]interface{}{
			"messages":     messages,
			"diagnosis":    reply.Diagnosis,
			"solution":     reply.Solution,
			"appliance_id": applianceID,
		})
		if err != nil {
			h.storeError(c, err, "DIAGNOSIS_NOT_FOUND", "Diagnosis not found")
			return
		}
		diagnosisID = updated.ID
	} else {
		diagnosis := models.Diagnosis{
			UserID:      currentUser(c),
			ApplianceID: applianceID,
			Issue:       req.Issue,
			Messages:    messages,
			Diagnosis:   &reply.Diagnosis,
			Solution:    &reply.Solution,
			Status:      models.DiagnosisStatusOpen,
		}
		if err := h.Store.CreateDiagnosis(ctx, &diagnosis); err != nil {
			h.storeError(c, err, "", "")
			return
		}
		diagnosisID = diagnosis.ID
	}

	respond(c, http.StatusOK, DiagnoseResponse{
		DiagnosisID: diagnosisID,
		Response:    reply.ConversationResponse,
		Diagnosis:   reply.Diagnosis,
		Solution:    reply.Solution,
	})
}

// AnalyzeImage handles POST /api/analyze-image. The upload is validated before
// the model is called; a storage failure only drops the saved photo.
func (h *Handler) AnalyzeImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE",
				fmt.Sprintf("File size exceeds maximum allowed size of %d MB", utils.MaxFileSize/(1024*1024)))
			return
		}
		respondError(c, http.StatusBadRequest, "NO_IMAGE", "No image file provided")
		return
	}

	if err := utils.ValidateImageFile(fileHeader); err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		respondError(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
		return
	}

	var applianceIDParam *string
	if v := strings.TrimSpace(c.PostForm("applianceId")); v != "" {
		applianceIDParam = &v
	}
	applianceID, ok := h.optionalAppliance(c, applianceIDParam)
	if !ok {
		return
	}

	encoded, err := utils.ReadAndEncode(fileHeader)
	if err != nil {
		respondErrorDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read image", err.Error())
		return
	}

	ctx := c.Request.Context()
	userDescription := strings.TrimSpace(c.PostForm("userDescription"))
	analysis, err := h.AI.AnalyzeApplianceImage(ctx, services.ImageAnalysisRequest{
		Base64Image:     encoded.Base64,
		MimeType:        encoded.MimeType,
		ApplianceType:   c.PostForm("applianceType"),
		UserDescription: userDescription,
	})
	if err != nil {
		h.Log.WithError(err).Error("AI image analysis failed")
		respondErrorDetails(c, http.StatusBadGateway, "AI_ERROR", "Failed to analyze image", err.Error())
		return
	}

	var imageKey *string
	if key, err := h.Images.UploadImage(ctx, fileHeader); err != nil {
		h.Log.WithError(err).Warn("failed to store diagnosis photo, continuing without it")
	} else {
		imageKey = &key
	}

	issue := userDescription
	if issue == "" {
		issue = imageDiagnosisIssue
	}
	diagnosis := models.Diagnosis{
		UserID:        currentUser(c),
		ApplianceID:   applianceID,
		Issue:         issue,
		Diagnosis:     &analysis.Analysis,
		Solution:      &analysis.Recommendations,
		ImageAnalysis: &analysis.Analysis,
		ImageKey:      imageKey,
		Status:        models.DiagnosisStatusOpen,
	}
	if err := h.Store.CreateDiagnosis(ctx, &diagnosis); err != nil {
		if imageKey != nil {
			if delErr := h.Images.DeleteImage(ctx, *imageKey); delErr != nil {
				h.Log.WithError(delErr).WithField("image_key", *imageKey).Warn("failed to remove orphaned diagnosis photo")
			}
		}
		h.storeError(c, err, "", "")
		return
	}
	h.resolveImageURL(ctx, &diagnosis)

	respond(c, http.StatusOK, ImageAnalysisResult{
		DiagnosisID:      diagnosis.ID,
		Analysis:         analysis.Analysis,
		IdentifiedIssues: analysis.IdentifiedIssues,
		Recommendations:  analysis.Recommendations,
		ImageURL:         diagnosis.ImageURL,
	})
}

func (h *Handler) loadDiagnosis(c *gin.Context, id string) (*models.Diagnosis, bool) {
	diagnosis, err := h.Store.GetDiagnosis(c.Request.Context(), id)
	if err == nil && diagnosis.UserID != currentUser(c) {
		err = store.ErrNotFound
	}
	if err != nil {
		h.storeError(c, err, "DIAGNOSIS_NOT_FOUND", "Diagnosis not found")
		return nil, false
	}
	return diagnosis, true
}

// optionalAppliance checks that a referenced appliance belongs to the current
// user. A nil or empty id means no appliance.
func (h *Handler) optionalAppliance(c *gin.Context, id *string) (*string, bool) {
	if id == nil || *id == "" {
		return nil, true
	}
	if _, ok := h.loadAppliance(c, *id); !ok {
		return nil, false
	}
	return id, true
}

// fillApplianceDetails uses the registered appliance for any metadata the request left out
func (h *Handler) fillApplianceDetails(ctx context.Context, applianceID string, req *services.DiagnosisRequest) {
	appliance, err := h.Store.GetAppliance(ctx, applianceID)
	if err != nil {
		return
	}
	if req.ApplianceType == "" {
		req.ApplianceType = appliance.Type
	}
	if req.Brand == "" && appliance.Brand != nil {
		req.Brand = *appliance.Brand
	}
	if req.Model == "" && appliance.Model != nil {
		req.Model = *appliance.Model
	}
}

func (h *Handler) resolveImageURL(ctx context.Context, diagnosis *models.Diagnosis) {
	if diagnosis.ImageKey == nil || *diagnosis.ImageKey == "" {
		return
	}
	url, err := h.Images.GetImageURL(ctx, *diagnosis.ImageKey)
	if err != nil {
		h.Log.WithError(err).WithField("image_key", *diagnosis.ImageKey).Warn("failed to resolve diagnosis photo URL")
		return
	}
	diagnosis.ImageURL = &url
}
