package api

import (
	"fmt"
	"net/http"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/service"

	"github.com/gin-gonic/gin"
)

// TraineeHandler exposes the trainee's own profile, progress ledger and
// assigned trainer.
type TraineeHandler struct {
	traineeService service.TraineeService
}

// NewTraineeHandler creates a new TraineeHandler.
func NewTraineeHandler(traineeService service.TraineeService) *TraineeHandler {
	return &TraineeHandler{traineeService: traineeService}
}

type PreferredLanguageRequest struct {
	Language domain.Language `json:"language" binding:"required,oneof=en ar"`
}

// MyProfile returns the calling trainee's profile.
func (h *TraineeHandler) MyProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	trainee, err := h.traineeService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainee)
}

// MyProgress returns the activePlans ledger.
func (h *TraineeHandler) MyProgress(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	progress, err := h.traineeService.Progress(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// MyTrainer returns the trainee's currently assigned trainer.
func (h *TraineeHandler) MyTrainer(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	trainer, err := h.traineeService.AssignedTrainer(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// SetPreferredLanguage updates the trainee's localization preference.
func (h *TraineeHandler) SetPreferredLanguage(c *gin.Context) {
	var req PreferredLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	trainee, err := h.traineeService.SetPreferredLanguage(c.Request.Context(), userID, req.Language)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainee)
}
