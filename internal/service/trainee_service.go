package service

import (
	"context"
	"errors"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TraineeService exposes the trainee's own profile and learning state:
// the activePlans progress ledger, the assigned trainer, and preference
// updates.
type TraineeService interface {
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Trainee, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainee, error)
	Progress(ctx context.Context, userID primitive.ObjectID) ([]domain.PlanProgress, error)
	AssignedTrainer(ctx context.Context, userID primitive.ObjectID) (*domain.Trainer, error)
	SetPreferredLanguage(ctx context.Context, userID primitive.ObjectID, lang domain.Language) (*domain.Trainee, error)
}

type traineeService struct {
	traineeRepo repository.TraineeRepository
	trainerRepo repository.TrainerRepository
}

// NewTraineeService creates a new instance of traineeService.
func NewTraineeService(traineeRepo repository.TraineeRepository, trainerRepo repository.TrainerRepository) TraineeService {
	return &traineeService{
		traineeRepo: traineeRepo,
		trainerRepo: trainerRepo,
	}
}

func (s *traineeService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Trainee, error) {
	trainee, err := s.traineeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTraineeNotFound
		}
		return nil, err
	}
	return trainee, nil
}

func (s *traineeService) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainee, error) {
	trainee, err := s.traineeRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTraineeNotFound
		}
		return nil, err
	}
	return trainee, nil
}

// Progress returns the activePlans ledger as-is; handlers decide how to
// present completed vs. active entries.
func (s *traineeService) Progress(ctx context.Context, userID primitive.ObjectID) ([]domain.PlanProgress, error) {
	trainee, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return trainee.ActivePlans, nil
}

func (s *traineeService) AssignedTrainer(ctx context.Context, userID primitive.ObjectID) (*domain.Trainer, error) {
	trainee, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if trainee.AssignedTrainerID == nil {
		return nil, ErrTrainerNotFound
	}

	trainer, err := s.trainerRepo.GetByID(ctx, *trainee.AssignedTrainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	return trainer, nil
}

func (s *traineeService) SetPreferredLanguage(ctx context.Context, userID primitive.ObjectID, lang domain.Language) (*domain.Trainee, error) {
	trainee, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	trainee.PreferredLanguage = lang
	if err := s.traineeRepo.Update(ctx, trainee); err != nil {
		return nil, err
	}
	return trainee, nil
}
