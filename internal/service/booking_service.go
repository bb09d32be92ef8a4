package service

import (
	"context"
	"errors"
	"time"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateBookingInput is the trainee's booking request.
type CreateBookingInput struct {
	PlanID             primitive.ObjectID
	PreferredStartDate time.Time
	PreferredTimes     []domain.PreferredTime
	Notes              string
}

// TrainerChangeDecision is the admin's resolution of a pending
// trainer-change request.
type TrainerChangeDecision struct {
	Status       domain.ChangeRequestStatus
	NewTrainerID *primitive.ObjectID
}

// BookingService is the booking lifecycle engine: pending → confirmed →
// completed, with cancellation from pending or confirmed, plus the
// trainer-change request flow.
type BookingService interface {
	Create(ctx context.Context, traineeID primitive.ObjectID, in CreateBookingInput) (*domain.Booking, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	List(ctx context.Context, status *domain.BookingStatus) ([]domain.Booking, error)
	ListByTrainee(ctx context.Context, traineeID primitive.ObjectID) ([]domain.Booking, error)
	Confirm(ctx context.Context, id, trainerID primitive.ObjectID) (*domain.Booking, error)
	Cancel(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	CancelOwn(ctx context.Context, traineeID, id primitive.ObjectID) (*domain.Booking, error)
	RequestTrainerChange(ctx context.Context, traineeID, bookingID primitive.ObjectID, reason string) (*domain.Booking, error)
	ResolveTrainerChange(ctx context.Context, id primitive.ObjectID, decision TrainerChangeDecision) (*domain.Booking, error)
	Complete(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
}

// bookingService implements the BookingService interface.
type bookingService struct {
	bookingRepo repository.BookingRepository
	sessionRepo repository.SessionRepository
	trainerRepo repository.TrainerRepository
	traineeRepo repository.TraineeRepository
	planRepo    repository.PlanRepository
	uow         repository.UnitOfWork
}

// NewBookingService creates a new instance of bookingService.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	sessionRepo repository.SessionRepository,
	trainerRepo repository.TrainerRepository,
	traineeRepo repository.TraineeRepository,
	planRepo repository.PlanRepository,
	uow repository.UnitOfWork,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		sessionRepo: sessionRepo,
		trainerRepo: trainerRepo,
		traineeRepo: traineeRepo,
		planRepo:    planRepo,
		uow:         uow,
	}
}

// Create opens a pending booking against an active plan. The plan price
// is snapshotted into totalPrice and never recalculated afterwards.
func (s *bookingService) Create(ctx context.Context, traineeID primitive.ObjectID, in CreateBookingInput) (*domain.Booking, error) {
	if in.PlanID == primitive.NilObjectID {
		return nil, ErrPlanNotFound
	}

	plan, err := s.planRepo.GetActiveByID(ctx, in.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	booking := &domain.Booking{
		TraineeID:          traineeID,
		PlanID:             plan.ID,
		PreferredStartDate: in.PreferredStartDate,
		PreferredTimes:     in.PreferredTimes,
		Status:             domain.BookingPending,
		TotalPrice:         plan.Price,
		Notes:              in.Notes,
	}

	id, err := s.bookingRepo.Create(ctx, booking)
	if err != nil {
		return nil, err
	}
	booking.ID = id
	return booking, nil
}

// Get fetches one booking.
func (s *bookingService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// List returns all bookings, optionally filtered by status.
func (s *bookingService) List(ctx context.Context, status *domain.BookingStatus) ([]domain.Booking, error) {
	if status != nil && !domain.ValidBookingStatus(*status) {
		return nil, ErrInvalidBookingStatus
	}
	return s.bookingRepo.List(ctx, repository.BookingFilter{Status: status})
}

// ListByTrainee returns a trainee's own bookings, newest first.
func (s *bookingService) ListByTrainee(ctx context.Context, traineeID primitive.ObjectID) ([]domain.Booking, error) {
	return s.bookingRepo.List(ctx, repository.BookingFilter{TraineeID: &traineeID})
}

// Confirm assigns an active trainer to a pending booking and wires up
// the trainer/trainee assignment pair. The booking, trainer and trainee
// writes commit as one unit.
func (s *bookingService) Confirm(ctx context.Context, id, trainerID primitive.ObjectID) (*domain.Booking, error) {
	if trainerID == primitive.NilObjectID {
		return nil, ErrTrainerIDRequired
	}

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingPending {
		return nil, ErrBookingNotPending
	}

	trainer, err := s.trainerRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	if !trainer.IsActive() {
		return nil, ErrTrainerNotActive
	}

	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		booking.TrainerID = &trainerID
		booking.Status = domain.BookingConfirmed
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return err
		}

		// $addToSet keeps assignedTrainees duplicate-free.
		if err := s.trainerRepo.AddAssignedTrainee(ctx, trainerID, booking.TraineeID); err != nil {
			return err
		}

		trainee, err := s.traineeRepo.GetByID(ctx, booking.TraineeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// A missing trainee profile is tolerated here.
				return nil
			}
			return err
		}
		trainee.AssignedTrainerID = &trainerID
		return s.traineeRepo.Update(ctx, trainee)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel moves a pending or confirmed booking to cancelled and cascades
// to its sessions: every session still in scheduled status is
// force-transitioned to cancelled. In-progress and completed sessions
// are left untouched.
func (s *bookingService) Cancel(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, booking)
}

// CancelOwn is the trainee-facing cancel: same transition and cascade,
// but only the booking's owner may trigger it.
func (s *bookingService) CancelOwn(ctx context.Context, traineeID, id primitive.ObjectID) (*domain.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.TraineeID != traineeID {
		return nil, ErrNotBookingOwner
	}
	return s.cancel(ctx, booking)
}

func (s *bookingService) cancel(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if !booking.Cancellable() {
		return nil, ErrBookingNotCancellable
	}

	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		booking.Status = domain.BookingCancelled
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return err
		}
		return s.sessionRepo.UpdateStatusByBooking(
			ctx,
			booking.ID,
			[]domain.SessionStatus{domain.SessionScheduled},
			domain.SessionCancelled,
		)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// RequestTrainerChange records the trainee's request to be reassigned.
// Only confirmed bookings are eligible, and a new request overwrites any
// pending one; there is no queue.
func (s *bookingService) RequestTrainerChange(ctx context.Context, traineeID, bookingID primitive.ObjectID, reason string) (*domain.Booking, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	booking, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.TraineeID != traineeID {
		return nil, ErrNotBookingOwner
	}
	if booking.Status != domain.BookingConfirmed {
		return nil, ErrBookingNotConfirmed
	}

	booking.ChangeRequest = &domain.TrainerChangeRequest{
		Requested: true,
		Reason:    reason,
		Date:      time.Now().UTC(),
		Status:    domain.ChangeRequestPending,
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ResolveTrainerChange applies the admin's decision on a pending
// trainer-change request.
//
// A rejection only stamps the request status. An approval reassigns the
// trainee: the outgoing trainer is logged into previousTrainers with the
// request's original reason, both trainers' assignedTrainees sets are
// updated, and every scheduled or rescheduled session on the booking is
// retargeted to the new trainer. Sessions already completed, in progress
// or cancelled keep their original trainer. All of it commits as one
// unit.
func (s *bookingService) ResolveTrainerChange(ctx context.Context, id primitive.ObjectID, decision TrainerChangeDecision) (*domain.Booking, error) {
	if decision.Status != domain.ChangeRequestApproved && decision.Status != domain.ChangeRequestRejected {
		return nil, ErrInvalidDecision
	}

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.ChangeRequest == nil || !booking.ChangeRequest.Requested {
		return nil, ErrNoChangeRequest
	}

	booking.ChangeRequest.Status = decision.Status

	if decision.Status == domain.ChangeRequestRejected {
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}
		return booking, nil
	}

	if decision.NewTrainerID == nil || *decision.NewTrainerID == primitive.NilObjectID {
		return nil, ErrTrainerIDRequired
	}
	newTrainerID := *decision.NewTrainerID

	newTrainer, err := s.trainerRepo.GetByID(ctx, newTrainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	if !newTrainer.IsActive() {
		return nil, ErrTrainerNotActive
	}

	oldTrainerID := booking.TrainerID

	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		booking.TrainerID = &newTrainerID
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return err
		}

		trainee, err := s.traineeRepo.GetByID(ctx, booking.TraineeID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			// Missing trainee profile tolerated, as in Confirm.
		} else {
			trainee.RecordTrainerChange(oldTrainerID, newTrainerID, booking.ChangeRequest.Reason, time.Now().UTC())
			if err := s.traineeRepo.Update(ctx, trainee); err != nil {
				return err
			}
		}

		if oldTrainerID != nil && *oldTrainerID != primitive.NilObjectID {
			if err := s.trainerRepo.RemoveAssignedTrainee(ctx, *oldTrainerID, booking.TraineeID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		if err := s.trainerRepo.AddAssignedTrainee(ctx, newTrainerID, booking.TraineeID); err != nil {
			return err
		}

		return s.sessionRepo.ReassignTrainerByBooking(
			ctx,
			booking.ID,
			[]domain.SessionStatus{domain.SessionScheduled, domain.SessionRescheduled},
			newTrainerID,
		)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Complete closes out a confirmed booking once every one of its sessions
// has been completed.
func (s *bookingService) Complete(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingConfirmed {
		return nil, ErrBookingNotConfirmed
	}

	sessions, err := s.sessionRepo.ListByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Status != domain.SessionCompleted {
			return nil, ErrSessionsNotCompleted
		}
	}

	booking.Status = domain.BookingCompleted
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}
