package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"masar/driving-school/internal/domain"
)

// fakeFileStorage hands out deterministic URLs and records deletions.
type fakeFileStorage struct {
	deleted []string
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/upload/%s", objectKey), nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/get/%s", objectKey), nil
}

func (s *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

func newTrainerFixture() (*fixture, *fakeFileStorage, TrainerService) {
	f := newFixture()
	fs := &fakeFileStorage{}
	return f, fs, NewTrainerService(f.trainers, f.trainees, fs)
}

func TestSetTrainerStatus(t *testing.T) {
	f, _, svc := newTrainerFixture()
	ctx := context.Background()
	trainer := f.seedTrainer(domain.TrainerPending)

	got, err := svc.SetStatus(ctx, trainer.ID, domain.TrainerActive)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if got.Status != domain.TrainerActive {
		t.Errorf("status = %q, want active", got.Status)
	}

	if _, err := svc.SetStatus(ctx, trainer.ID, "suspended"); !errors.Is(err, ErrInvalidTrainerStatus) {
		t.Errorf("unknown status: err = %v, want ErrInvalidTrainerStatus", err)
	}
}

func TestUpdateAvailability(t *testing.T) {
	f, _, svc := newTrainerFixture()
	ctx := context.Background()
	trainer := f.seedTrainer(domain.TrainerActive)

	grid := []domain.DayAvailability{
		{Day: "monday", Slots: []domain.AvailabilitySlot{{StartTime: "09:00", EndTime: "12:00"}}},
	}
	got, err := svc.UpdateAvailability(ctx, trainer.UserID, grid)
	if err != nil {
		t.Fatalf("UpdateAvailability: %v", err)
	}
	if len(got.Availability) != 1 || got.Availability[0].Day != "monday" {
		t.Errorf("availability = %+v", got.Availability)
	}

	// Replacement is wholesale.
	got, err = svc.UpdateAvailability(ctx, trainer.UserID, nil)
	if err != nil {
		t.Fatalf("clear availability: %v", err)
	}
	if len(got.Availability) != 0 {
		t.Errorf("availability after clear = %+v, want empty", got.Availability)
	}
}

func TestImageUploadFlow(t *testing.T) {
	f, fs, svc := newTrainerFixture()
	ctx := context.Background()
	trainer := f.seedTrainer(domain.TrainerActive)

	if _, _, err := svc.RequestImageUpload(ctx, trainer.UserID, ImageProfile, "application/pdf"); !errors.Is(err, ErrUnsupportedImageType) {
		t.Errorf("pdf upload: err = %v, want ErrUnsupportedImageType", err)
	}
	if _, _, err := svc.RequestImageUpload(ctx, trainer.UserID, "banner", "image/png"); !errors.Is(err, ErrInvalidImageKind) {
		t.Errorf("unknown kind: err = %v, want ErrInvalidImageKind", err)
	}

	uploadURL, objectKey, err := svc.RequestImageUpload(ctx, trainer.UserID, ImageProfile, "image/png")
	if err != nil {
		t.Fatalf("RequestImageUpload: %v", err)
	}
	wantPrefix := fmt.Sprintf("trainers/%s/profile/", trainer.ID.Hex())
	if !strings.HasPrefix(objectKey, wantPrefix) {
		t.Errorf("objectKey = %q, want %q prefix", objectKey, wantPrefix)
	}
	if uploadURL == "" {
		t.Error("empty upload URL")
	}

	if _, err := svc.ConfirmImageUpload(ctx, trainer.UserID, ImageProfile, "trainers/somebody-else/profile/x"); !errors.Is(err, ErrObjectKeyMismatch) {
		t.Errorf("foreign key confirm: err = %v, want ErrObjectKeyMismatch", err)
	}

	got, err := svc.ConfirmImageUpload(ctx, trainer.UserID, ImageProfile, objectKey)
	if err != nil {
		t.Fatalf("ConfirmImageUpload: %v", err)
	}
	if got.ProfileImage != objectKey {
		t.Errorf("profileImage = %q, want %q", got.ProfileImage, objectKey)
	}

	// Replacing the image deletes the old object.
	_, secondKey, err := svc.RequestImageUpload(ctx, trainer.UserID, ImageProfile, "image/jpeg")
	if err != nil {
		t.Fatalf("second RequestImageUpload: %v", err)
	}
	if _, err := svc.ConfirmImageUpload(ctx, trainer.UserID, ImageProfile, secondKey); err != nil {
		t.Fatalf("second ConfirmImageUpload: %v", err)
	}
	if len(fs.deleted) != 1 || fs.deleted[0] != objectKey {
		t.Errorf("deleted = %v, want the replaced key %q", fs.deleted, objectKey)
	}

	url, err := svc.ImageDownloadURL(ctx, trainer.ID, ImageProfile)
	if err != nil {
		t.Fatalf("ImageDownloadURL: %v", err)
	}
	if !strings.Contains(url, secondKey) {
		t.Errorf("download url = %q, want it to reference %q", url, secondKey)
	}

	if _, err := svc.ImageDownloadURL(ctx, trainer.ID, ImageVehicle); !errors.Is(err, ErrImageNotSet) {
		t.Errorf("missing vehicle image: err = %v, want ErrImageNotSet", err)
	}
}

func TestAssignedTrainees(t *testing.T) {
	f, _, svc := newTrainerFixture()
	ctx := context.Background()
	trainer := f.seedTrainer(domain.TrainerActive)

	got, err := svc.AssignedTrainees(ctx, trainer.UserID)
	if err != nil {
		t.Fatalf("AssignedTrainees: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("trainees = %+v, want empty", got)
	}

	trainee := f.seedTrainee()
	_ = f.trainers.AddAssignedTrainee(ctx, trainer.ID, trainee.ID)

	got, err = svc.AssignedTrainees(ctx, trainer.UserID)
	if err != nil {
		t.Fatalf("AssignedTrainees: %v", err)
	}
	if len(got) != 1 || got[0].ID != trainee.ID {
		t.Errorf("trainees = %+v, want [%v]", got, trainee.ID)
	}
}
