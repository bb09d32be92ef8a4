package service

import (
	"context"
	"errors"
	"log"
	"time"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionSlot is one entry in a bulk-creation request: a calendar date
// plus the start/end times within it.
type SessionSlot struct {
	ScheduledDate time.Time
	StartTime     string
	EndTime       string
}

// RescheduleInput carries the new slot for a session.
type RescheduleInput struct {
	ScheduledDate time.Time
	StartTime     string
	EndTime       string
}

// SessionService is the session lifecycle engine: scheduled →
// in_progress → completed, with reschedule and cancel branches, bulk
// creation against confirmed bookings, trainee feedback, and the
// progress tracker hooks fired on completion.
type SessionService interface {
	BulkCreate(ctx context.Context, bookingID primitive.ObjectID, slots []SessionSlot) ([]domain.Session, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	List(ctx context.Context, filter repository.SessionFilter) ([]domain.Session, error)
	ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]domain.Session, error)
	Start(ctx context.Context, trainerID, sessionID primitive.ObjectID) (*domain.Session, error)
	Complete(ctx context.Context, trainerID, sessionID primitive.ObjectID, notes string) (*domain.Session, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus) (*domain.Session, error)
	Reschedule(ctx context.Context, trainerID, sessionID primitive.ObjectID, in RescheduleInput) (*domain.Session, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SubmitFeedback(ctx context.Context, traineeID, sessionID primitive.ObjectID, rating int, comment string) (*domain.Session, error)
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	bookingRepo repository.BookingRepository
	trainerRepo repository.TrainerRepository
	traineeRepo repository.TraineeRepository
	planRepo    repository.PlanRepository
	uow         repository.UnitOfWork
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	bookingRepo repository.BookingRepository,
	trainerRepo repository.TrainerRepository,
	traineeRepo repository.TraineeRepository,
	planRepo repository.PlanRepository,
	uow repository.UnitOfWork,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		bookingRepo: bookingRepo,
		trainerRepo: trainerRepo,
		traineeRepo: traineeRepo,
		planRepo:    planRepo,
		uow:         uow,
	}
}

// BulkCreate materialises a confirmed booking's schedule: one session
// per slot, numbered 1..N in slot order, each inheriting the plan's
// session duration. The new session ids are appended to the booking and
// the trainee's plan progress ledger is topped up by the plan's session
// count in the same unit, so repeated bulk creation accumulates rather
// than resets.
func (s *sessionService) BulkCreate(ctx context.Context, bookingID primitive.ObjectID, slots []SessionSlot) ([]domain.Session, error) {
	if len(slots) == 0 {
		return nil, ErrScheduleRequired
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.Status != domain.BookingConfirmed {
		return nil, ErrBookingNotConfirmed
	}
	if booking.TrainerID == nil {
		return nil, ErrTrainerIDRequired
	}

	plan, err := s.planRepo.GetByID(ctx, booking.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	duration := plan.Duration
	if duration <= 0 {
		duration = domain.DefaultSessionDuration
	}

	sessions := make([]domain.Session, 0, len(slots))
	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		base := len(booking.SessionIDs)
		for i, slot := range slots {
			endTime := slot.EndTime
			if endTime == "" {
				endTime = addMinutes(slot.StartTime, duration)
			}
			sess := &domain.Session{
				BookingID:     booking.ID,
				TraineeID:     booking.TraineeID,
				TrainerID:     *booking.TrainerID,
				PlanID:        booking.PlanID,
				SessionOrder:  base + i + 1,
				ScheduledDate: slot.ScheduledDate,
				StartTime:     slot.StartTime,
				EndTime:       endTime,
				Duration:      duration,
				Status:        domain.SessionScheduled,
			}
			id, err := s.sessionRepo.Create(ctx, sess)
			if err != nil {
				return err
			}
			sess.ID = id
			booking.SessionIDs = append(booking.SessionIDs, id)
			sessions = append(sessions, *sess)
		}
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return err
		}

		trainee, err := s.traineeRepo.GetByID(ctx, booking.TraineeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		trainee.UpsertPlanProgress(booking.PlanID, plan.NumberOfSessions, time.Now().UTC())
		return s.traineeRepo.Update(ctx, trainee)
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// addMinutes shifts an HH:MM clock string forward. Malformed input is
// returned unchanged rather than failing the whole bulk create.
func addMinutes(clock string, minutes int) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("15:04")
}

// Get fetches one session.
func (s *sessionService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	sess, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns sessions matching the filter, ordered by scheduled date
// then start time.
func (s *sessionService) List(ctx context.Context, filter repository.SessionFilter) ([]domain.Session, error) {
	if filter.Status != nil && !domain.ValidSessionStatus(*filter.Status) {
		return nil, ErrInvalidSessionStatus
	}
	return s.sessionRepo.List(ctx, filter)
}

// ListByBooking returns a booking's sessions in sessionOrder.
func (s *sessionService) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]domain.Session, error) {
	return s.sessionRepo.ListByBooking(ctx, bookingID)
}

// Start moves a startable session to in_progress and stamps the actual
// start time. Rescheduled sessions are startable alongside scheduled
// ones. Only the session's own trainer may start it.
func (s *sessionService) Start(ctx context.Context, trainerID, sessionID primitive.ObjectID) (*domain.Session, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.TrainerID != trainerID {
		return nil, ErrNotSessionTrainer
	}
	if !sess.Startable() {
		return nil, ErrSessionNotStartable
	}

	now := time.Now().UTC()
	sess.Status = domain.SessionInProgress
	sess.ActualStartTime = &now
	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Complete closes an in_progress session and feeds the progress
// tracker: the trainee's ledger entry for the booking's plan gains one
// completed session and is promoted to completed when it reaches its
// total. A trainee with no ledger entry for the plan is logged and
// otherwise ignored.
func (s *sessionService) Complete(ctx context.Context, trainerID, sessionID primitive.ObjectID, notes string) (*domain.Session, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.TrainerID != trainerID {
		return nil, ErrNotSessionTrainer
	}
	if sess.Status != domain.SessionInProgress {
		return nil, ErrSessionNotInProgress
	}

	now := time.Now().UTC()
	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		sess.Status = domain.SessionCompleted
		sess.ActualEndTime = &now
		if notes != "" {
			sess.Notes = notes
		}
		if err := s.sessionRepo.Update(ctx, sess); err != nil {
			return err
		}
		return s.advanceProgress(ctx, sess, now)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// advanceProgress adds one completed session to the trainee's ledger
// entry for the session's plan. A trainee with no ledger entry for the
// plan is logged and otherwise ignored.
func (s *sessionService) advanceProgress(ctx context.Context, sess *domain.Session, now time.Time) error {
	trainee, err := s.traineeRepo.GetByID(ctx, sess.TraineeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if !trainee.RecordCompletedSession(sess.PlanID, now) {
		log.Printf("WARN: trainee %s has no progress entry for plan %s, session %s completion not tracked",
			trainee.ID.Hex(), sess.PlanID.Hex(), sess.ID.Hex())
		return nil
	}
	return s.traineeRepo.Update(ctx, trainee)
}

// UpdateStatus is the admin override: it sets any valid status directly,
// without lifecycle guards. Entering in_progress or completed still
// stamps the actual times, and a completion still feeds the progress
// tracker exactly as the trainer path does.
func (s *sessionService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus) (*domain.Session, error) {
	if !domain.ValidSessionStatus(status) {
		return nil, ErrInvalidSessionStatus
	}
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess.Status = status
	switch status {
	case domain.SessionInProgress:
		sess.ActualStartTime = &now
	case domain.SessionCompleted:
		sess.ActualEndTime = &now
	}

	if status != domain.SessionCompleted {
		if err := s.sessionRepo.Update(ctx, sess); err != nil {
			return nil, err
		}
		return sess, nil
	}

	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessionRepo.Update(ctx, sess); err != nil {
			return err
		}
		return s.advanceProgress(ctx, sess, now)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Reschedule moves a session to a new slot, stashing the old one in the
// previous-schedule audit field. Only the session's own trainer may
// reschedule it. Any status may be rescheduled; the session lands in
// rescheduled regardless of where it was.
func (s *sessionService) Reschedule(ctx context.Context, trainerID, sessionID primitive.ObjectID, in RescheduleInput) (*domain.Session, error) {
	if in.ScheduledDate.IsZero() || in.StartTime == "" {
		return nil, ErrScheduleRequired
	}

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.TrainerID != trainerID {
		return nil, ErrNotSessionTrainer
	}

	sess.PreviousSchedule = &domain.PreviousSchedule{
		Date:      sess.ScheduledDate,
		StartTime: sess.StartTime,
		EndTime:   sess.EndTime,
	}
	sess.ScheduledDate = in.ScheduledDate
	sess.StartTime = in.StartTime
	sess.EndTime = in.EndTime
	sess.Status = domain.SessionRescheduled
	sess.IsRescheduled = true

	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete removes a session that has not left scheduled status, and pulls
// its id out of the owning booking.
func (s *sessionService) Delete(ctx context.Context, id primitive.ObjectID) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.Status != domain.SessionScheduled {
		return ErrSessionNotDeletable
	}

	return s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessionRepo.Delete(ctx, sess.ID); err != nil {
			return err
		}

		booking, err := s.bookingRepo.GetByID(ctx, sess.BookingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		kept := booking.SessionIDs[:0]
		for _, sid := range booking.SessionIDs {
			if sid != sess.ID {
				kept = append(kept, sid)
			}
		}
		booking.SessionIDs = kept
		return s.bookingRepo.Update(ctx, booking)
	})
}

// SubmitFeedback records the trainee's rating and comment on a session
// and folds the rating into the trainer's running average. Feedback is
// not gated on the session's status. Resubmitting replaces the previous
// feedback on the session, but each submission still counts into the
// trainer's review total.
func (s *sessionService) SubmitFeedback(ctx context.Context, traineeID, sessionID primitive.ObjectID, rating int, comment string) (*domain.Session, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.TraineeID != traineeID {
		return nil, ErrNotSessionTrainee
	}

	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		sess.Feedback = &domain.SessionFeedback{
			Rating:  rating,
			Comment: comment,
			Date:    time.Now().UTC(),
		}
		if err := s.sessionRepo.Update(ctx, sess); err != nil {
			return err
		}

		trainer, err := s.trainerRepo.GetByID(ctx, sess.TrainerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		trainer.ApplyReview(rating)
		return s.trainerRepo.Update(ctx, trainer)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}
