package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Phone    string          `json:"phone" binding:"required"`
	Gender   domain.Gender   `json:"gender" binding:"required,oneof=male female"`
	Age      int             `json:"age" binding:"required,gte=16"`
	Role     domain.Role     `json:"role" binding:"omitempty,oneof=trainer trainee"`
	Language domain.Language `json:"language" binding:"omitempty,oneof=en ar"`

	// Trainer-only fields
	HasVehicle   bool   `json:"hasVehicle"`
	VehicleType  string `json:"vehicleType"`
	VehicleModel string `json:"vehicleModel"`
	VehicleYear  int    `json:"vehicleYear"`
}

// UserResponse excludes sensitive info like the password hash.
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Gender    domain.Gender   `json:"gender"`
	Age       int             `json:"age"`
	Role      domain.Role     `json:"role"`
	Language  domain.Language `json:"language"`
	CreatedAt time.Time       `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MapUserToResponse converts a domain user to its API shape.
func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Gender:    user.Gender,
		Age:       user.Age,
		Role:      user.Role,
		Language:  user.Language,
		CreatedAt: user.CreatedAt,
	}
}

// --- Handler Methods ---

// Register creates a new trainer or trainee account. Trainers start in
// the pending status and must be approved before they can log in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		Gender:       req.Gender,
		Age:          req.Age,
		Role:         req.Role,
		Language:     req.Language,
		HasVehicle:   req.HasVehicle,
		VehicleType:  req.VehicleType,
		VehicleModel: req.VehicleModel,
		VehicleYear:  req.VehicleYear,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrHashingFailed):
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		default:
			respondServiceError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login authenticates a user and returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthenticationFailed):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrTrainerNotApproved):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}
