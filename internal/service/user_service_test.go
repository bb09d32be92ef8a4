package service

import (
	"context"
	"errors"
	"testing"

	"masar/driving-school/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedUser(f *fixture, email string, role domain.Role) *domain.User {
	user := &domain.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashed",
		Role:         role,
	}
	_, _ = f.users.Create(context.Background(), user)
	return user
}

func TestUpdateUserSkipsZeroValues(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := seedUser(f, "zayd@example.com", domain.RoleTrainee)

	got, err := f.userSvc.Update(ctx, user.ID, UserUpdateInput{Phone: "+96650000009"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Phone != "+96650000009" {
		t.Errorf("phone = %q, want the new value", got.Phone)
	}
	if got.Name != "Test User" {
		t.Errorf("name = %q, zero-value input must not clear it", got.Name)
	}
}

func TestDeleteUserRemovesRoleProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	traineeUser := seedUser(f, "hind@example.com", domain.RoleTrainee)
	trainee := &domain.Trainee{UserID: traineeUser.ID}
	_, _ = f.trainees.Create(ctx, trainee)

	if err := f.userSvc.Delete(ctx, traineeUser.ID); err != nil {
		t.Fatalf("Delete trainee user: %v", err)
	}
	if _, err := f.users.GetByID(ctx, traineeUser.ID); err == nil {
		t.Error("user still readable after delete")
	}
	if _, err := f.trainees.GetByID(ctx, trainee.ID); err == nil {
		t.Error("trainee profile still readable after delete")
	}

	trainerUser := seedUser(f, "omar@example.com", domain.RoleTrainer)
	trainer := &domain.Trainer{UserID: trainerUser.ID, Status: domain.TrainerActive}
	_, _ = f.trainers.Create(ctx, trainer)

	if err := f.userSvc.Delete(ctx, trainerUser.ID); err != nil {
		t.Fatalf("Delete trainer user: %v", err)
	}
	if _, err := f.trainers.GetByID(ctx, trainer.ID); err == nil {
		t.Error("trainer profile still readable after delete")
	}
}

func TestDeleteUserWithoutProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// An admin has no role profile; only the account goes.
	admin := seedUser(f, "admin@example.com", domain.RoleAdmin)
	if err := f.userSvc.Delete(ctx, admin.ID); err != nil {
		t.Fatalf("Delete admin: %v", err)
	}

	// So does a trainee account whose profile was never created.
	orphan := seedUser(f, "orphan@example.com", domain.RoleTrainee)
	if err := f.userSvc.Delete(ctx, orphan.ID); err != nil {
		t.Fatalf("Delete profile-less trainee: %v", err)
	}

	if err := f.userSvc.Delete(ctx, primitive.NewObjectID()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown id: err = %v, want ErrUserNotFound", err)
	}
}
