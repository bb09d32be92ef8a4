package api

import (
	"fmt"
	"net/http"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/service"

	"github.com/gin-gonic/gin"
)

// TrainerHandler exposes trainer profiles, the admin approval gate,
// availability, and the image upload flow.
type TrainerHandler struct {
	trainerService service.TrainerService
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

type TrainerProfileRequest struct {
	HasVehicle      *bool    `json:"hasVehicle"`
	VehicleType     string   `json:"vehicleType"`
	VehicleModel    string   `json:"vehicleModel"`
	VehicleYear     int      `json:"vehicleYear" binding:"omitempty,gte=1980"`
	Specializations []string `json:"specializations"`
}

type TrainerStatusRequest struct {
	Status domain.TrainerStatus `json:"status" binding:"required,oneof=pending active rejected"`
}

type AvailabilityRequest struct {
	Availability []domain.DayAvailability `json:"availability" binding:"required"`
}

type ImageUploadRequest struct {
	Kind        service.ImageKind `json:"kind" binding:"required,oneof=profile vehicle"`
	ContentType string            `json:"contentType" binding:"required"`
}

type ImageUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type ImageConfirmRequest struct {
	Kind      service.ImageKind `json:"kind" binding:"required,oneof=profile vehicle"`
	ObjectKey string            `json:"objectKey" binding:"required"`
}

// ListTrainers is the admin listing with an optional status filter.
func (h *TrainerHandler) ListTrainers(c *gin.Context) {
	var status *domain.TrainerStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.TrainerStatus(raw)
		status = &s
	}

	trainers, err := h.trainerService.List(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainers)
}

func (h *TrainerHandler) GetTrainer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	trainer, err := h.trainerService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// SetTrainerStatus is the admin approval decision.
func (h *TrainerHandler) SetTrainerStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req TrainerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	trainer, err := h.trainerService.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// MyProfile returns the calling trainer's own profile.
func (h *TrainerHandler) MyProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	trainer, err := h.trainerService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

func (h *TrainerHandler) UpdateProfile(c *gin.Context) {
	var req TrainerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	trainer, err := h.trainerService.UpdateProfile(c.Request.Context(), userID, service.TrainerProfileInput{
		HasVehicle:      req.HasVehicle,
		VehicleType:     req.VehicleType,
		VehicleModel:    req.VehicleModel,
		VehicleYear:     req.VehicleYear,
		Specializations: req.Specializations,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// UpdateAvailability replaces the weekly availability grid.
func (h *TrainerHandler) UpdateAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	trainer, err := h.trainerService.UpdateAvailability(c.Request.Context(), userID, req.Availability)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// MyTrainees lists the trainees assigned to the calling trainer.
func (h *TrainerHandler) MyTrainees(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	trainees, err := h.trainerService.AssignedTrainees(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainees)
}

// RequestImageUpload returns a presigned PUT URL the client uploads
// against, plus the key to confirm afterwards.
func (h *TrainerHandler) RequestImageUpload(c *gin.Context) {
	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	uploadURL, objectKey, err := h.trainerService.RequestImageUpload(c.Request.Context(), userID, req.Kind, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ImageUploadResponse{UploadURL: uploadURL, ObjectKey: objectKey})
}

// ConfirmImageUpload records a finished upload on the trainer profile.
func (h *TrainerHandler) ConfirmImageUpload(c *gin.Context) {
	var req ImageConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	trainer, err := h.trainerService.ConfirmImageUpload(c.Request.Context(), userID, req.Kind, req.ObjectKey)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// TrainerImage returns a short-lived download URL for a trainer image.
func (h *TrainerHandler) TrainerImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	kind := service.ImageKind(c.Query("kind"))
	if kind == "" {
		kind = service.ImageProfile
	}

	url, err := h.trainerService.ImageDownloadURL(c.Request.Context(), id, kind)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
