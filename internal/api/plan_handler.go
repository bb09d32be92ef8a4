package api

import (
	"fmt"
	"net/http"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler exposes the plan catalog: localized reads for trainees,
// bilingual CRUD for admins.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type PlanRequest struct {
	NameAr           string               `json:"nameAr"`
	NameEn           string               `json:"nameEn"`
	DescriptionAr    string               `json:"descriptionAr"`
	DescriptionEn    string               `json:"descriptionEn"`
	Price            float64              `json:"price" binding:"omitempty,gt=0"`
	NumberOfSessions int                  `json:"numberOfSessions" binding:"omitempty,gt=0"`
	Duration         int                  `json:"duration" binding:"omitempty,gt=0"`
	Features         []domain.PlanFeature `json:"features"`
	Category         domain.PlanCategory  `json:"category" binding:"omitempty,oneof=beginner intermediate advanced specialist"`
	Image            string               `json:"image"`
}

func (r PlanRequest) toInput() service.PlanInput {
	return service.PlanInput{
		NameAr:           r.NameAr,
		NameEn:           r.NameEn,
		DescriptionAr:    r.DescriptionAr,
		DescriptionEn:    r.DescriptionEn,
		Price:            r.Price,
		NumberOfSessions: r.NumberOfSessions,
		Duration:         r.Duration,
		Features:         r.Features,
		Category:         r.Category,
		Image:            r.Image,
	}
}

// ListPlans returns the active catalog localized to the request language.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.planService.ListLocalized(c.Request.Context(), getLanguageFromContext(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetPlan returns one active plan localized to the request language.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.planService.GetLocalized(c.Request.Context(), id, getLanguageFromContext(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ListAllPlans is the admin view: bilingual records, inactive included.
func (h *PlanHandler) ListAllPlans(c *gin.Context) {
	var active *bool
	switch c.Query("active") {
	case "true":
		v := true
		active = &v
	case "false":
		v := false
		active = &v
	}

	plans, err := h.planService.List(c.Request.Context(), active)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeletePlan soft-deletes: the plan drops out of the catalog but stays
// referenced by existing bookings.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.planService.Deactivate(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Plan deactivated"})
}
