package api

import (
	"fmt"
	"net/http"
	"time"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/repository"
	"masar/driving-school/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler drives the session lifecycle endpoints.
type SessionHandler struct {
	sessionService service.SessionService
	trainerService service.TrainerService
	traineeService service.TraineeService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService, trainerService service.TrainerService, traineeService service.TraineeService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		trainerService: trainerService,
		traineeService: traineeService,
	}
}

type SessionSlotRequest struct {
	ScheduledDate time.Time `json:"scheduledDate" binding:"required"`
	StartTime     string    `json:"startTime" binding:"required"`
	EndTime       string    `json:"endTime"`
}

type BulkCreateSessionsRequest struct {
	BookingID string               `json:"bookingId" binding:"required"`
	Slots     []SessionSlotRequest `json:"sessions" binding:"required,min=1,dive"`
}

type UpdateSessionStatusRequest struct {
	Status domain.SessionStatus `json:"status" binding:"required"`
}

type RescheduleSessionRequest struct {
	ScheduledDate time.Time `json:"scheduledDate" binding:"required"`
	StartTime     string    `json:"startTime" binding:"required"`
	EndTime       string    `json:"endTime"`
}

type CompleteSessionRequest struct {
	Notes string `json:"notes"`
}

type SessionFeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// BulkCreateSessions materialises a confirmed booking's schedule.
func (h *SessionHandler) BulkCreateSessions(c *gin.Context) {
	var req BulkCreateSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	bookingID, err := primitive.ObjectIDFromHex(req.BookingID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid bookingId format")
		return
	}

	slots := make([]service.SessionSlot, 0, len(req.Slots))
	for _, s := range req.Slots {
		slots = append(slots, service.SessionSlot{
			ScheduledDate: s.ScheduledDate,
			StartTime:     s.StartTime,
			EndTime:       s.EndTime,
		})
	}

	sessions, err := h.sessionService.BulkCreate(c.Request.Context(), bookingID, slots)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessions)
}

// ListSessions is the admin listing with optional trainer, trainee,
// status and date filters.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var filter repository.SessionFilter

	if raw := c.Query("trainerId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid trainerId format")
			return
		}
		filter.TrainerID = &id
	}
	if raw := c.Query("traineeId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid traineeId format")
			return
		}
		filter.TraineeID = &id
	}
	if raw := c.Query("status"); raw != "" {
		s := domain.SessionStatus(raw)
		filter.Status = &s
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		filter.Date = &day
	}

	sessions, err := h.sessionService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// MySessions lists the caller's sessions, resolved through their role
// profile. Trainers see the sessions they teach, trainees the ones they
// attend.
func (h *SessionHandler) MySessions(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	role, _ := getUserRoleFromContext(c)

	var filter repository.SessionFilter
	switch role {
	case domain.RoleTrainer:
		trainer, err := h.trainerService.GetByUserID(c.Request.Context(), userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		filter.TrainerID = &trainer.ID
		// Trainers can narrow to one of their trainees.
		if raw := c.Query("traineeId"); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				abortWithError(c, http.StatusBadRequest, "Invalid traineeId format")
				return
			}
			filter.TraineeID = &id
		}
	case domain.RoleTrainee:
		trainee, err := h.traineeService.GetByUserID(c.Request.Context(), userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		filter.TraineeID = &trainee.ID
	default:
		abortWithError(c, http.StatusForbidden, "Only trainers and trainees have their own sessions")
		return
	}

	if raw := c.Query("status"); raw != "" {
		s := domain.SessionStatus(raw)
		filter.Status = &s
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		filter.Date = &day
	}

	sessions, err := h.sessionService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	session, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// StartSession moves a scheduled or rescheduled session to in_progress.
// Only the session's trainer may start it.
func (h *SessionHandler) StartSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	trainer, ok := h.callerTrainer(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), trainer.ID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CompleteSession closes an in-progress session and advances the
// trainee's plan progress.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	// Notes are optional; an empty body is fine.
	var req CompleteSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return
		}
	}

	trainer, ok := h.callerTrainer(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Complete(c.Request.Context(), trainer.ID, id, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateSessionStatus is the admin override without lifecycle guards.
func (h *SessionHandler) UpdateSessionStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateSessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.sessionService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// RescheduleSession moves one of the calling trainer's sessions to a
// new slot.
func (h *SessionHandler) RescheduleSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req RescheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	trainer, ok := h.callerTrainer(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Reschedule(c.Request.Context(), trainer.ID, id, service.RescheduleInput{
		ScheduledDate: req.ScheduledDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession removes a still-scheduled session.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.sessionService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// SubmitFeedback records the calling trainee's rating on a completed
// session.
func (h *SessionHandler) SubmitFeedback(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SessionFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

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

	session, err := h.sessionService.SubmitFeedback(c.Request.Context(), trainee.ID, id, req.Rating, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) callerTrainer(c *gin.Context) (*domain.Trainer, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return nil, false
	}
	trainer, err := h.trainerService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return trainer, true
}
