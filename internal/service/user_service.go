package service

import (
	"context"
	"errors"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserUpdateInput carries the account fields a user (or admin) may edit.
// Zero values leave the stored field unchanged. Email and role are
// immutable after registration.
type UserUpdateInput struct {
	Name     string
	Phone    string
	Age      int
	Language domain.Language
	Avatar   string
}

// UserService manages user accounts apart from authentication.
type UserService interface {
	Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id primitive.ObjectID, in UserUpdateInput) (*domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type userService struct {
	userRepo    repository.UserRepository
	trainerRepo repository.TrainerRepository
	traineeRepo repository.TraineeRepository
	uow         repository.UnitOfWork
}

// NewUserService creates a new instance of userService.
func NewUserService(
	userRepo repository.UserRepository,
	trainerRepo repository.TrainerRepository,
	traineeRepo repository.TraineeRepository,
	uow repository.UnitOfWork,
) UserService {
	return &userService{
		userRepo:    userRepo,
		trainerRepo: trainerRepo,
		traineeRepo: traineeRepo,
		uow:         uow,
	}
}

func (s *userService) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) Update(ctx context.Context, id primitive.ObjectID, in UserUpdateInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Phone != "" {
		user.Phone = in.Phone
	}
	if in.Age > 0 {
		user.Age = in.Age
	}
	if in.Language != "" {
		user.Language = in.Language
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user account together with its trainer or trainee
// profile, as one unit. An account without a role profile is fine; only
// the user document goes.
func (s *userService) Delete(ctx context.Context, id primitive.ObjectID) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		switch user.Role {
		case domain.RoleTrainer:
			if err := s.trainerRepo.DeleteByUserID(ctx, user.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		case domain.RoleTrainee:
			if err := s.traineeRepo.DeleteByUserID(ctx, user.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		return s.userRepo.Delete(ctx, user.ID)
	})
}
