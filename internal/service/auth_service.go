package service

import (
	"context"
	"errors"
	"time"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrTrainerNotApproved   = errors.New("trainer account is not active")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// RegisterInput carries everything needed to create an account plus its
// role profile.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Gender   domain.Gender
	Age      int
	Role     domain.Role
	Language domain.Language

	// Trainer-specific, ignored for other roles
	HasVehicle   bool
	VehicleType  string
	VehicleModel string
	VehicleYear  int
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	trainerRepo   repository.TrainerRepository
	traineeRepo   repository.TraineeRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo repository.UserRepository,
	trainerRepo repository.TrainerRepository,
	traineeRepo repository.TraineeRepository,
	jwtSecret string,
	jwtExpiration time.Duration,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		trainerRepo:   trainerRepo,
		traineeRepo:   traineeRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register creates the user account and, based on role, its trainer or
// trainee profile. New trainers start in the pending status and cannot
// log in until an admin activates them.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, errors.New("name, email and password cannot be empty")
	}
	if in.Role == "" {
		in.Role = domain.RoleTrainee
	}
	if !domain.ValidRole(in.Role) {
		return nil, ErrInvalidArgument
	}
	if in.Language == "" {
		in.Language = domain.LanguageEnglish
	}

	// Check if user already exists
	_, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Phone:        in.Phone,
		Gender:       in.Gender,
		Age:          in.Age,
		Role:         in.Role,
		Language:     in.Language,
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID

	// Create the role profile alongside the account.
	switch user.Role {
	case domain.RoleTrainer:
		trainer := &domain.Trainer{
			UserID:       userID,
			Status:       domain.TrainerPending,
			HasVehicle:   in.HasVehicle,
			VehicleType:  in.VehicleType,
			VehicleModel: in.VehicleModel,
			VehicleYear:  in.VehicleYear,
		}
		if _, err := s.trainerRepo.Create(ctx, trainer); err != nil {
			return nil, err
		}
	case domain.RoleTrainee:
		trainee := &domain.Trainee{
			UserID:            userID,
			PreferredLanguage: in.Language,
		}
		if _, err := s.traineeRepo.Create(ctx, trainee); err != nil {
			return nil, err
		}
	}

	user.PasswordHash = ""
	return user, nil
}

// Login authenticates the user and issues a JWT. Trainers whose profile
// is not active are rejected even with correct credentials.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, errors.New("email and password cannot be empty")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	if user.Role == domain.RoleTrainer {
		trainer, err := s.trainerRepo.GetByUserID(ctx, user.ID)
		if err == nil && !trainer.IsActive() {
			return "", nil, ErrTrainerNotApproved
		}
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new HS256 token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "driving-school",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
