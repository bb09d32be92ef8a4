package api

import (
	"fmt"
	"net/http"
	"time"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingHandler drives the booking lifecycle endpoints.
type BookingHandler struct {
	bookingService service.BookingService
	traineeService service.TraineeService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService service.BookingService, traineeService service.TraineeService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		traineeService: traineeService,
	}
}

type CreateBookingRequest struct {
	PlanID             string                 `json:"planId" binding:"required"`
	PreferredStartDate time.Time              `json:"preferredStartDate" binding:"required"`
	PreferredTimes     []domain.PreferredTime `json:"preferredTimes"`
	Notes              string                 `json:"notes"`
}

type ConfirmBookingRequest struct {
	TrainerID string `json:"trainerId" binding:"required"`
}

type TrainerChangeRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

type ResolveTrainerChangeRequest struct {
	Status       domain.ChangeRequestStatus `json:"status" binding:"required,oneof=approved rejected"`
	NewTrainerID string                     `json:"newTrainerId"`
}

// trainee resolves the caller's trainee profile from the JWT.
func (h *BookingHandler) trainee(c *gin.Context) (*domain.Trainee, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return nil, false
	}
	trainee, err := h.traineeService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return trainee, true
}

// CreateBooking opens a pending booking for the calling trainee.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid planId format")
		return
	}

	trainee, ok := h.trainee(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), trainee.ID, service.CreateBookingInput{
		PlanID:             planID,
		PreferredStartDate: req.PreferredStartDate,
		PreferredTimes:     req.PreferredTimes,
		Notes:              req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// MyBookings lists the calling trainee's bookings, newest first.
func (h *BookingHandler) MyBookings(c *gin.Context) {
	trainee, ok := h.trainee(c)
	if !ok {
		return
	}
	bookings, err := h.bookingService.ListByTrainee(c.Request.Context(), trainee.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// ListBookings is the admin listing with an optional status filter.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	var status *domain.BookingStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.BookingStatus(raw)
		status = &s
	}

	bookings, err := h.bookingService.List(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookingService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// ConfirmBooking assigns a trainer to a pending booking.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainerId format")
		return
	}

	booking, err := h.bookingService.Confirm(c.Request.Context(), id, trainerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels a pending or confirmed booking and its
// remaining scheduled sessions.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookingService.Cancel(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CancelMyBooking cancels one of the calling trainee's own bookings.
func (h *BookingHandler) CancelMyBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	trainee, ok := h.trainee(c)
	if !ok {
		return
	}
	booking, err := h.bookingService.CancelOwn(c.Request.Context(), trainee.ID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CompleteBooking closes a confirmed booking once every session is done.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookingService.Complete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// RequestTrainerChange records the calling trainee's reassignment request.
func (h *BookingHandler) RequestTrainerChange(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req TrainerChangeRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	trainee, ok := h.trainee(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.RequestTrainerChange(c.Request.Context(), trainee.ID, id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// ResolveTrainerChange applies the admin decision on a pending request.
func (h *BookingHandler) ResolveTrainerChange(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ResolveTrainerChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	decision := service.TrainerChangeDecision{Status: req.Status}
	if req.NewTrainerID != "" {
		trainerID, err := primitive.ObjectIDFromHex(req.NewTrainerID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid newTrainerId format")
			return
		}
		decision.NewTrainerID = &trainerID
	}

	booking, err := h.bookingService.ResolveTrainerChange(c.Request.Context(), id, decision)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
