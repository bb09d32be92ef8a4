package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/repository"
	"masar/driving-school/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImageKind selects which trainer image an upload targets.
type ImageKind string

const (
	ImageProfile ImageKind = "profile"
	ImageVehicle ImageKind = "vehicle"
)

// TrainerProfileInput carries the trainer-editable profile fields.
// Zero values leave the stored field unchanged.
type TrainerProfileInput struct {
	HasVehicle      *bool
	VehicleType     string
	VehicleModel    string
	VehicleYear     int
	Specializations []string
}

// TrainerService manages trainer profiles: the admin approval gate,
// advisory availability, assigned trainees, and profile/vehicle images
// uploaded through presigned URLs.
type TrainerService interface {
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainer, error)
	List(ctx context.Context, status *domain.TrainerStatus) ([]domain.Trainer, error)
	// SetStatus is the admin approval decision: pending → active or rejected.
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.TrainerStatus) (*domain.Trainer, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, in TrainerProfileInput) (*domain.Trainer, error)
	UpdateAvailability(ctx context.Context, userID primitive.ObjectID, availability []domain.DayAvailability) (*domain.Trainer, error)
	AssignedTrainees(ctx context.Context, userID primitive.ObjectID) ([]domain.Trainee, error)
	// RequestImageUpload returns a presigned PUT URL and the object key the
	// client must confirm once the upload succeeds.
	RequestImageUpload(ctx context.Context, userID primitive.ObjectID, kind ImageKind, contentType string) (uploadURL, objectKey string, err error)
	ConfirmImageUpload(ctx context.Context, userID primitive.ObjectID, kind ImageKind, objectKey string) (*domain.Trainer, error)
	ImageDownloadURL(ctx context.Context, trainerID primitive.ObjectID, kind ImageKind) (string, error)
}

type trainerService struct {
	trainerRepo repository.TrainerRepository
	traineeRepo repository.TraineeRepository
	fileStorage storage.FileStorage
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(trainerRepo repository.TrainerRepository, traineeRepo repository.TraineeRepository, fileStorage storage.FileStorage) TrainerService {
	return &trainerService{
		trainerRepo: trainerRepo,
		traineeRepo: traineeRepo,
		fileStorage: fileStorage,
	}
}

func (s *trainerService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	trainer, err := s.trainerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	return trainer, nil
}

func (s *trainerService) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainer, error) {
	trainer, err := s.trainerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	return trainer, nil
}

func (s *trainerService) List(ctx context.Context, status *domain.TrainerStatus) ([]domain.Trainer, error) {
	return s.trainerRepo.List(ctx, status)
}

func (s *trainerService) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.TrainerStatus) (*domain.Trainer, error) {
	switch status {
	case domain.TrainerActive, domain.TrainerRejected, domain.TrainerPending:
	default:
		return nil, ErrInvalidTrainerStatus
	}

	trainer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	trainer.Status = status
	if err := s.trainerRepo.Update(ctx, trainer); err != nil {
		return nil, err
	}
	return trainer, nil
}

func (s *trainerService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in TrainerProfileInput) (*domain.Trainer, error) {
	trainer, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.HasVehicle != nil {
		trainer.HasVehicle = *in.HasVehicle
	}
	if in.VehicleType != "" {
		trainer.VehicleType = in.VehicleType
	}
	if in.VehicleModel != "" {
		trainer.VehicleModel = in.VehicleModel
	}
	if in.VehicleYear > 0 {
		trainer.VehicleYear = in.VehicleYear
	}
	if in.Specializations != nil {
		trainer.Specializations = in.Specializations
	}

	if err := s.trainerRepo.Update(ctx, trainer); err != nil {
		return nil, err
	}
	return trainer, nil
}

// UpdateAvailability replaces the trainer's weekly grid wholesale.
// Availability is advisory: bookings and sessions never validate
// against it.
func (s *trainerService) UpdateAvailability(ctx context.Context, userID primitive.ObjectID, availability []domain.DayAvailability) (*domain.Trainer, error) {
	trainer, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	trainer.Availability = availability
	if err := s.trainerRepo.Update(ctx, trainer); err != nil {
		return nil, err
	}
	return trainer, nil
}

func (s *trainerService) AssignedTrainees(ctx context.Context, userID primitive.ObjectID) ([]domain.Trainee, error) {
	trainer, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(trainer.AssignedTrainees) == 0 {
		return []domain.Trainee{}, nil
	}
	return s.traineeRepo.ListByIDs(ctx, trainer.AssignedTrainees)
}

func (s *trainerService) RequestImageUpload(ctx context.Context, userID primitive.ObjectID, kind ImageKind, contentType string) (string, string, error) {
	if kind != ImageProfile && kind != ImageVehicle {
		return "", "", ErrInvalidImageKind
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", ErrUnsupportedImageType
	}

	trainer, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return "", "", err
	}

	objectKey := fmt.Sprintf("trainers/%s/%s/%s", trainer.ID.Hex(), kind, uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", "", fmt.Errorf("generating upload url: %w", err)
	}
	return uploadURL, objectKey, nil
}

// ConfirmImageUpload records the uploaded object on the trainer and
// removes the image it replaces. A stale delete failure is logged by the
// storage layer but does not fail the confirmation.
func (s *trainerService) ConfirmImageUpload(ctx context.Context, userID primitive.ObjectID, kind ImageKind, objectKey string) (*domain.Trainer, error) {
	if objectKey == "" {
		return nil, ErrObjectKeyRequired
	}

	trainer, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Keys are scoped per trainer; reject a confirm for someone else's key.
	if !strings.HasPrefix(objectKey, fmt.Sprintf("trainers/%s/%s/", trainer.ID.Hex(), kind)) {
		return nil, ErrObjectKeyMismatch
	}

	var old string
	switch kind {
	case ImageProfile:
		old = trainer.ProfileImage
		trainer.ProfileImage = objectKey
	case ImageVehicle:
		old = trainer.VehicleImage
		trainer.VehicleImage = objectKey
	default:
		return nil, ErrInvalidImageKind
	}

	if err := s.trainerRepo.Update(ctx, trainer); err != nil {
		return nil, err
	}
	if old != "" && old != objectKey {
		_ = s.fileStorage.DeleteObject(ctx, old)
	}
	return trainer, nil
}

func (s *trainerService) ImageDownloadURL(ctx context.Context, trainerID primitive.ObjectID, kind ImageKind) (string, error) {
	trainer, err := s.Get(ctx, trainerID)
	if err != nil {
		return "", err
	}

	var key string
	switch kind {
	case ImageProfile:
		key = trainer.ProfileImage
	case ImageVehicle:
		key = trainer.VehicleImage
	default:
		return "", ErrInvalidImageKind
	}
	if key == "" {
		return "", ErrImageNotSet
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("generating download url: %w", err)
	}
	return url, nil
}
