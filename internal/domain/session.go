package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for the session lifecycle
type SessionStatus string

const (
	SessionScheduled   SessionStatus = "scheduled"
	SessionInProgress  SessionStatus = "in_progress"
	SessionCompleted   SessionStatus = "completed"
	SessionCancelled   SessionStatus = "cancelled"
	SessionRescheduled SessionStatus = "rescheduled"
)

// ValidSessionStatus reports whether s is one of the known statuses.
func ValidSessionStatus(s SessionStatus) bool {
	switch s {
	case SessionScheduled, SessionInProgress, SessionCompleted, SessionCancelled, SessionRescheduled:
		return true
	}
	return false
}

// SessionFeedback is the trainee's rating of a session. Providing
// feedback again overwrites the previous record; no history is kept.
type SessionFeedback struct {
	Rating  int       `bson:"rating" json:"rating"` // 1-5
	Comment string    `bson:"comment,omitempty" json:"comment,omitempty"`
	Date    time.Time `bson:"date" json:"date"`
}

// PreviousSchedule snapshots the slot a session occupied before it was
// rescheduled.
type PreviousSchedule struct {
	Date      time.Time `bson:"date" json:"date"`
	StartTime string    `bson:"startTime" json:"startTime"`
	EndTime   string    `bson:"endTime" json:"endTime"`
}

// Session is one scheduled lesson generated from a confirmed booking.
//
// SessionOrder is the 1-based position within the booking's bulk-created
// set. It is never reused: deleting a session leaves a gap.
type Session struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookingID        primitive.ObjectID `bson:"booking" json:"bookingId"`
	TraineeID        primitive.ObjectID `bson:"trainee" json:"traineeId"`
	TrainerID        primitive.ObjectID `bson:"trainer" json:"trainerId"`
	PlanID           primitive.ObjectID `bson:"plan" json:"planId"`
	ScheduledDate    time.Time          `bson:"scheduledDate" json:"scheduledDate"`
	StartTime        string             `bson:"startTime" json:"startTime"`
	EndTime          string             `bson:"endTime" json:"endTime"`
	Duration         int                `bson:"duration" json:"duration"` // Minutes, copied from plan
	Status           SessionStatus      `bson:"status" json:"status"`
	ActualStartTime  *time.Time         `bson:"actualStartTime,omitempty" json:"actualStartTime,omitempty"`
	ActualEndTime    *time.Time         `bson:"actualEndTime,omitempty" json:"actualEndTime,omitempty"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Feedback         *SessionFeedback   `bson:"feedback,omitempty" json:"feedback,omitempty"`
	IsRescheduled    bool               `bson:"isRescheduled" json:"isRescheduled"`
	PreviousSchedule *PreviousSchedule  `bson:"previousSchedule,omitempty" json:"previousSchedule,omitempty"`
	SessionOrder     int                `bson:"sessionOrder" json:"sessionOrder"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Startable reports whether a trainer may start the session. A
// rescheduled session re-enters the schedule, so it is startable too.
func (s *Session) Startable() bool {
	return s.Status == SessionScheduled || s.Status == SessionRescheduled
}
