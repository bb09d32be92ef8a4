package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"masar/driving-school/internal/domain"
)

func confirmedBookingFixture(f *fixture, planSessions int) (*domain.Trainee, *domain.Trainer, *domain.Plan, *domain.Booking) {
	trainee := f.seedTrainee()
	trainer := f.seedTrainer(domain.TrainerActive)
	plan := f.seedPlan(planSessions, 1200)
	booking := f.seedBooking(trainee, plan, domain.BookingConfirmed, &trainer.ID)
	return trainee, trainer, plan, booking
}

func slots(n int) []SessionSlot {
	out := make([]SessionSlot, n)
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = SessionSlot{
			ScheduledDate: day.AddDate(0, 0, i),
			StartTime:     "10:00",
		}
	}
	return out
}

func TestBulkCreateSessions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	trainee, trainer, plan, booking := confirmedBookingFixture(f, 10)

	sessions, err := f.sessionSvc.BulkCreate(ctx, booking.ID, slots(5))
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if len(sessions) != 5 {
		t.Fatalf("created %d sessions, want 5", len(sessions))
	}
	for i, s := range sessions {
		if s.SessionOrder != i+1 {
			t.Errorf("session %d order = %d, want %d", i, s.SessionOrder, i+1)
		}
		if s.Status != domain.SessionScheduled {
			t.Errorf("session %d status = %q, want scheduled", i, s.Status)
		}
		if s.TrainerID != trainer.ID {
			t.Errorf("session %d trainer = %v, want %v", i, s.TrainerID, trainer.ID)
		}
		if s.Duration != domain.DefaultSessionDuration {
			t.Errorf("session %d duration = %d, want %d", i, s.Duration, domain.DefaultSessionDuration)
		}
		if s.EndTime != "10:50" {
			t.Errorf("session %d endTime = %q, want 10:50", i, s.EndTime)
		}
	}

	b, _ := f.bookings.GetByID(ctx, booking.ID)
	if len(b.SessionIDs) != 5 {
		t.Errorf("booking sessionIds = %d entries, want 5", len(b.SessionIDs))
	}

	te, _ := f.trainees.GetByID(ctx, trainee.ID)
	if len(te.ActivePlans) != 1 {
		t.Fatalf("activePlans = %+v, want one entry", te.ActivePlans)
	}
	// The ledger total comes from the plan's session count, not from
	// however many slots this batch happened to carry.
	entry := te.ActivePlans[0]
	if entry.PlanID != plan.ID || entry.TotalSessions != plan.NumberOfSessions || entry.CompletedSessions != 0 {
		t.Errorf("ledger entry = %+v, want plan %v with 0/%d", entry, plan.ID, plan.NumberOfSessions)
	}
	if entry.Status != domain.PlanProgressActive {
		t.Errorf("ledger status = %q, want active", entry.Status)
	}

	// A second round for the same plan tops up the existing entry by the
	// plan count again and continues the numbering instead of restarting.
	more, err := f.sessionSvc.BulkCreate(ctx, booking.ID, slots(3))
	if err != nil {
		t.Fatalf("second BulkCreate: %v", err)
	}
	if more[0].SessionOrder != 6 || more[2].SessionOrder != 8 {
		t.Errorf("second batch orders = %d..%d, want 6..8", more[0].SessionOrder, more[2].SessionOrder)
	}
	te, _ = f.trainees.GetByID(ctx, trainee.ID)
	if len(te.ActivePlans) != 1 || te.ActivePlans[0].TotalSessions != 2*plan.NumberOfSessions {
		t.Errorf("ledger after top-up = %+v, want one entry with total %d", te.ActivePlans, 2*plan.NumberOfSessions)
	}
}

func TestBulkCreateSessionsGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	trainee := f.seedTrainee()
	plan := f.seedPlan(5, 1200)

	pending := f.seedBooking(trainee, plan, domain.BookingPending, nil)
	if _, err := f.sessionSvc.BulkCreate(ctx, pending.ID, slots(2)); !errors.Is(err, ErrBookingNotConfirmed) {
		t.Errorf("pending booking: err = %v, want ErrBookingNotConfirmed", err)
	}

	trainer := f.seedTrainer(domain.TrainerActive)
	confirmed := f.seedBooking(trainee, plan, domain.BookingConfirmed, &trainer.ID)
	if _, err := f.sessionSvc.BulkCreate(ctx, confirmed.ID, nil); !errors.Is(err, ErrScheduleRequired) {
		t.Errorf("empty slots: err = %v, want ErrScheduleRequired", err)
	}
}

func TestStartSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, trainer, _, booking := confirmedBookingFixture(f, 2)

	scheduled := f.seedSession(booking, 1, domain.SessionScheduled)
	rescheduled := f.seedSession(booking, 2, domain.SessionRescheduled)

	for _, sess := range []*domain.Session{scheduled, rescheduled} {
		got, err := f.sessionSvc.Start(ctx, trainer.ID, sess.ID)
		if err != nil {
			t.Fatalf("Start from %q: %v", sess.Status, err)
		}
		if got.Status != domain.SessionInProgress {
			t.Errorf("status = %q, want in_progress", got.Status)
		}
		if got.ActualStartTime == nil {
			t.Error("actualStartTime not stamped")
		}
	}

	// Already in progress now.
	if _, err := f.sessionSvc.Start(ctx, trainer.ID, scheduled.ID); !errors.Is(err, ErrSessionNotStartable) {
		t.Errorf("restart: err = %v, want ErrSessionNotStartable", err)
	}

	other := f.seedTrainer(domain.TrainerActive)
	third := f.seedSession(booking, 3, domain.SessionScheduled)
	_, err := f.sessionSvc.Start(ctx, other.ID, third.ID)
	if !errors.Is(err, ErrNotSessionTrainer) {
		t.Fatalf("foreign trainer: err = %v, want ErrNotSessionTrainer", err)
	}
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("err should carry the forbidden kind, got %v", err)
	}
}

func TestCompleteSessionAdvancesProgress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	trainee, trainer, plan, booking := confirmedBookingFixture(f, 2)

	sessions, err := f.sessionSvc.BulkCreate(ctx, booking.ID, slots(2))
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	for i := range sessions {
		if _, err := f.sessionSvc.Start(ctx, trainer.ID, sessions[i].ID); err != nil {
			t.Fatalf("Start %d: %v", i, err)
		}
		if _, err := f.sessionSvc.Complete(ctx, trainer.ID, sessions[i].ID, "good progress"); err != nil {
			t.Fatalf("Complete %d: %v", i, err)
		}
	}

	te, _ := f.trainees.GetByID(ctx, trainee.ID)
	entry := te.ActivePlans[0]
	if entry.PlanID != plan.ID || entry.CompletedSessions != 2 {
		t.Errorf("ledger = %+v, want 2 completed for plan %v", entry, plan.ID)
	}
	if entry.Status != domain.PlanProgressCompleted {
		t.Errorf("ledger status = %q, want completed once total reached", entry.Status)
	}
	if entry.EndDate == nil {
		t.Error("endDate not stamped on completion")
	}

	// With every session done the booking can now close.
	if _, err := f.bookingSvc.Complete(ctx, booking.ID); err != nil {
		t.Errorf("booking Complete: %v", err)
	}
}

func TestCompleteSessionGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, trainer, _, booking := confirmedBookingFixture(f, 2)

	scheduled := f.seedSession(booking, 1, domain.SessionScheduled)
	if _, err := f.sessionSvc.Complete(ctx, trainer.ID, scheduled.ID, ""); !errors.Is(err, ErrSessionNotInProgress) {
		t.Errorf("complete scheduled: err = %v, want ErrSessionNotInProgress", err)
	}

	inProgress := f.seedSession(booking, 2, domain.SessionInProgress)
	other := f.seedTrainer(domain.TrainerActive)
	if _, err := f.sessionSvc.Complete(ctx, other.ID, inProgress.ID, ""); !errors.Is(err, ErrNotSessionTrainer) {
		t.Errorf("foreign trainer: err = %v, want ErrNotSessionTrainer", err)
	}
}

func TestCompleteSessionWithoutLedgerEntryStillCompletes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, trainer, _, booking := confirmedBookingFixture(f, 2)

	// Seeded directly, so the trainee has no activePlans entry.
	sess := f.seedSession(booking, 1, domain.SessionInProgress)

	got, err := f.sessionSvc.Complete(ctx, trainer.ID, sess.ID, "")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Status != domain.SessionCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
}

func TestRescheduleSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, trainer, _, booking := confirmedBookingFixture(f, 2)
	sess := f.seedSession(booking, 1, domain.SessionScheduled)
	origDate := sess.ScheduledDate

	newDate := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	got, err := f.sessionSvc.Reschedule(ctx, trainer.ID, sess.ID, RescheduleInput{
		ScheduledDate: newDate,
		StartTime:     "14:00",
		EndTime:       "14:50",
	})
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if got.Status != domain.SessionRescheduled || !got.IsRescheduled {
		t.Errorf("status = %q isRescheduled = %v, want rescheduled/true", got.Status, got.IsRescheduled)
	}
	if !got.ScheduledDate.Equal(newDate) || got.StartTime != "14:00" {
		t.Errorf("new slot = %v %s, want %v 14:00", got.ScheduledDate, got.StartTime, newDate)
	}
	if got.PreviousSchedule == nil || !got.PreviousSchedule.Date.Equal(origDate) || got.PreviousSchedule.StartTime != "10:00" {
		t.Errorf("previousSchedule = %+v, want the original slot", got.PreviousSchedule)
	}

	// Rescheduling is allowed from any status, including in_progress.
	busy := f.seedSession(booking, 2, domain.SessionInProgress)
	if _, err := f.sessionSvc.Reschedule(ctx, trainer.ID, busy.ID, RescheduleInput{ScheduledDate: newDate, StartTime: "16:00"}); err != nil {
		t.Errorf("reschedule in_progress: %v", err)
	}

	if _, err := f.sessionSvc.Reschedule(ctx, trainer.ID, sess.ID, RescheduleInput{}); !errors.Is(err, ErrScheduleRequired) {
		t.Errorf("empty input: err = %v, want ErrScheduleRequired", err)
	}

	// Only the session's own trainer may reschedule it.
	other := f.seedTrainer(domain.TrainerActive)
	if _, err := f.sessionSvc.Reschedule(ctx, other.ID, sess.ID, RescheduleInput{ScheduledDate: newDate, StartTime: "09:00"}); !errors.Is(err, ErrNotSessionTrainer) {
		t.Errorf("foreign trainer: err = %v, want ErrNotSessionTrainer", err)
	}
}

func TestDeleteSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, _, _, booking := confirmedBookingFixture(f, 2)

	sess := f.seedSession(booking, 1, domain.SessionScheduled)
	done := f.seedSession(booking, 2, domain.SessionCompleted)

	if err := f.sessionSvc.Delete(ctx, done.ID); !errors.Is(err, ErrSessionNotDeletable) {
		t.Errorf("delete completed: err = %v, want ErrSessionNotDeletable", err)
	}

	if err := f.sessionSvc.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.sessionSvc.Get(ctx, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("deleted session still readable: %v", err)
	}

	b, _ := f.bookings.GetByID(ctx, booking.ID)
	for _, id := range b.SessionIDs {
		if id == sess.ID {
			t.Error("deleted session id still on booking")
		}
	}
	if len(b.SessionIDs) != 1 {
		t.Errorf("booking sessionIds = %d entries, want 1", len(b.SessionIDs))
	}
}

func TestSubmitFeedback(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	trainee, trainer, _, booking := confirmedBookingFixture(f, 2)

	first := f.seedSession(booking, 1, domain.SessionCompleted)
	second := f.seedSession(booking, 2, domain.SessionCompleted)

	if _, err := f.sessionSvc.SubmitFeedback(ctx, trainee.ID, first.ID, 6, ""); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("rating 6: err = %v, want ErrInvalidRating", err)
	}

	other := f.seedTrainee()
	if _, err := f.sessionSvc.SubmitFeedback(ctx, other.ID, first.ID, 4, ""); !errors.Is(err, ErrNotSessionTrainee) {
		t.Errorf("foreign trainee: err = %v, want ErrNotSessionTrainee", err)
	}

	// Ratings 4 then 5 must land the trainer on a 4.5 running mean.
	if _, err := f.sessionSvc.SubmitFeedback(ctx, trainee.ID, first.ID, 4, "solid"); err != nil {
		t.Fatalf("first feedback: %v", err)
	}
	tr, _ := f.trainers.GetByID(ctx, trainer.ID)
	if tr.Rating != 4.0 || tr.TotalReviews != 1 {
		t.Errorf("after first review rating = %v reviews = %d, want 4.0 and 1", tr.Rating, tr.TotalReviews)
	}

	got, err := f.sessionSvc.SubmitFeedback(ctx, trainee.ID, second.ID, 5, "great")
	if err != nil {
		t.Fatalf("second feedback: %v", err)
	}
	if got.Feedback == nil || got.Feedback.Rating != 5 || got.Feedback.Comment != "great" {
		t.Errorf("feedback = %+v, want rating 5 comment %q", got.Feedback, "great")
	}
	tr, _ = f.trainers.GetByID(ctx, trainer.ID)
	if tr.Rating != 4.5 || tr.TotalReviews != 2 {
		t.Errorf("after second review rating = %v reviews = %d, want 4.5 and 2", tr.Rating, tr.TotalReviews)
	}

	// Resubmitting overwrites the session's feedback record.
	got, err = f.sessionSvc.SubmitFeedback(ctx, trainee.ID, second.ID, 3, "on reflection")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if got.Feedback.Rating != 3 {
		t.Errorf("feedback rating = %d, want the overwrite", got.Feedback.Rating)
	}

	// Feedback is not gated on session status; a session still waiting
	// to run can already be rated.
	open := f.seedSession(booking, 3, domain.SessionScheduled)
	if _, err := f.sessionSvc.SubmitFeedback(ctx, trainee.ID, open.ID, 4, ""); err != nil {
		t.Errorf("feedback on scheduled session: %v", err)
	}
}

func TestUpdateSessionStatusOverride(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, _, _, booking := confirmedBookingFixture(f, 1)
	sess := f.seedSession(booking, 1, domain.SessionCompleted)

	// The admin override skips lifecycle guards entirely.
	got, err := f.sessionSvc.UpdateStatus(ctx, sess.ID, domain.SessionScheduled)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != domain.SessionScheduled {
		t.Errorf("status = %q, want scheduled", got.Status)
	}

	if _, err := f.sessionSvc.UpdateStatus(ctx, sess.ID, "paused"); !errors.Is(err, ErrInvalidSessionStatus) {
		t.Errorf("unknown status: err = %v, want ErrInvalidSessionStatus", err)
	}
}

func TestUpdateSessionStatusStampsTimesAndProgress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	trainee, _, _, booking := confirmedBookingFixture(f, 2)

	// Created through BulkCreate so the trainee has a ledger entry.
	sessions, err := f.sessionSvc.BulkCreate(ctx, booking.ID, slots(2))
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	got, err := f.sessionSvc.UpdateStatus(ctx, sessions[0].ID, domain.SessionInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus in_progress: %v", err)
	}
	if got.ActualStartTime == nil {
		t.Error("actualStartTime not stamped on in_progress")
	}

	got, err = f.sessionSvc.UpdateStatus(ctx, sessions[0].ID, domain.SessionCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus completed: %v", err)
	}
	if got.ActualEndTime == nil {
		t.Error("actualEndTime not stamped on completed")
	}

	te, _ := f.trainees.GetByID(ctx, trainee.ID)
	if len(te.ActivePlans) != 1 || te.ActivePlans[0].CompletedSessions != 1 {
		t.Errorf("ledger = %+v, want 1 completed session recorded", te.ActivePlans)
	}

	// Every other target status leaves the actual times alone.
	fresh, err := f.sessionSvc.UpdateStatus(ctx, sessions[1].ID, domain.SessionCancelled)
	if err != nil {
		t.Fatalf("UpdateStatus cancelled: %v", err)
	}
	if fresh.ActualStartTime != nil || fresh.ActualEndTime != nil {
		t.Errorf("cancel stamped actual times: %+v / %+v", fresh.ActualStartTime, fresh.ActualEndTime)
	}
}
