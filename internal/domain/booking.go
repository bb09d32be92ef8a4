package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus type for the booking lifecycle
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// ValidBookingStatus reports whether s is one of the known statuses.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// ChangeRequestStatus is the state of a trainer-change request.
type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "pending"
	ChangeRequestApproved ChangeRequestStatus = "approved"
	ChangeRequestRejected ChangeRequestStatus = "rejected"
)

// TrainerChangeRequest is the trainee's pending request to be
// reassigned. Re-requesting overwrites it; there is no queue.
type TrainerChangeRequest struct {
	Requested bool                `bson:"requested" json:"requested"`
	Reason    string              `bson:"reason" json:"reason"`
	Date      time.Time           `bson:"date" json:"date"`
	Status    ChangeRequestStatus `bson:"status" json:"status"`
}

// PreferredTime is one weekday/time preference the trainee supplied at
// booking time. Advisory input for the admin doing the scheduling.
type PreferredTime struct {
	Day  string `bson:"day" json:"day"`
	Time string `bson:"time" json:"time"`
}

// Booking is a trainee's request for a plan's sessions.
//
// TotalPrice is snapshotted from the plan at creation and never
// recalculated, so later plan price changes do not affect it.
type Booking struct {
	ID                 primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	TraineeID          primitive.ObjectID    `bson:"trainee" json:"traineeId"`
	TrainerID          *primitive.ObjectID   `bson:"trainer,omitempty" json:"trainerId,omitempty"`
	PlanID             primitive.ObjectID    `bson:"plan" json:"planId"`
	PreferredStartDate time.Time             `bson:"preferredStartDate" json:"preferredStartDate"`
	PreferredTimes     []PreferredTime       `bson:"preferredTimes" json:"preferredTimes"`
	Status             BookingStatus         `bson:"status" json:"status"`
	TotalPrice         float64               `bson:"totalPrice" json:"totalPrice"`
	Notes              string                `bson:"notes,omitempty" json:"notes,omitempty"`
	ChangeRequest      *TrainerChangeRequest `bson:"trainerChangeRequest,omitempty" json:"trainerChangeRequest,omitempty"`
	SessionIDs         []primitive.ObjectID  `bson:"sessions" json:"sessionIds"`
	CreatedAt          time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// Cancellable reports whether the booking may still be cancelled.
func (b *Booking) Cancellable() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}
