package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanProgressStatus is the state of one activePlans ledger entry.
type PlanProgressStatus string

const (
	PlanProgressActive    PlanProgressStatus = "active"
	PlanProgressCompleted PlanProgressStatus = "completed"
	PlanProgressCancelled PlanProgressStatus = "cancelled"
)

// PlanProgress tracks completed vs. total sessions for one plan the
// trainee has booked. TotalSessions accumulates across bookings of the
// same plan; CompletedSessions never exceeds it.
type PlanProgress struct {
	PlanID            primitive.ObjectID `bson:"plan" json:"planId"`
	CompletedSessions int                `bson:"completedSessions" json:"completedSessions"`
	TotalSessions     int                `bson:"totalSessions" json:"totalSessions"`
	StartDate         time.Time          `bson:"startDate" json:"startDate"`
	EndDate           *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Status            PlanProgressStatus `bson:"status" json:"status"`
}

// TrainerHistoryEntry records a past trainer assignment. Appended when
// an approved trainer-change request reassigns the trainee.
type TrainerHistoryEntry struct {
	TrainerID primitive.ObjectID `bson:"trainer" json:"trainerId"`
	Reason    string             `bson:"reason" json:"reason"`
	Date      time.Time          `bson:"date" json:"date"`
}

// Trainee is the profile owned by a user with role=trainee.
type Trainee struct {
	ID                primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID    `bson:"user" json:"userId"`
	AssignedTrainerID *primitive.ObjectID   `bson:"assignedTrainer,omitempty" json:"assignedTrainerId,omitempty"`
	ActivePlans       []PlanProgress        `bson:"activePlans" json:"activePlans"`
	PreviousTrainers  []TrainerHistoryEntry `bson:"previousTrainers" json:"previousTrainers"`
	PreferredLanguage Language              `bson:"preferredLanguage" json:"preferredLanguage"`
	Notes             string                `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// UpsertPlanProgress adds a new activePlans entry for planID, or tops up
// the existing one with additional sessions when the trainee books the
// same plan again.
func (t *Trainee) UpsertPlanProgress(planID primitive.ObjectID, sessions int, now time.Time) {
	for i := range t.ActivePlans {
		if t.ActivePlans[i].PlanID == planID {
			t.ActivePlans[i].TotalSessions += sessions
			return
		}
	}
	t.ActivePlans = append(t.ActivePlans, PlanProgress{
		PlanID:            planID,
		CompletedSessions: 0,
		TotalSessions:     sessions,
		StartDate:         now,
		Status:            PlanProgressActive,
	})
}

// RecordCompletedSession increments the completed count for planID and
// promotes the entry to completed once the total is reached. Returns
// false when no ledger entry matches the plan; the caller decides how
// loudly to flag that.
func (t *Trainee) RecordCompletedSession(planID primitive.ObjectID, now time.Time) bool {
	for i := range t.ActivePlans {
		if t.ActivePlans[i].PlanID != planID {
			continue
		}
		t.ActivePlans[i].CompletedSessions++
		if t.ActivePlans[i].CompletedSessions >= t.ActivePlans[i].TotalSessions {
			t.ActivePlans[i].Status = PlanProgressCompleted
			t.ActivePlans[i].EndDate = &now
		}
		return true
	}
	return false
}

// RecordTrainerChange appends the outgoing trainer to the history log
// and points the trainee at the new one.
func (t *Trainee) RecordTrainerChange(oldTrainerID *primitive.ObjectID, newTrainerID primitive.ObjectID, reason string, now time.Time) {
	if oldTrainerID != nil && *oldTrainerID != primitive.NilObjectID {
		t.PreviousTrainers = append(t.PreviousTrainers, TrainerHistoryEntry{
			TrainerID: *oldTrainerID,
			Reason:    reason,
			Date:      now,
		})
	}
	t.AssignedTrainerID = &newTrainerID
}
