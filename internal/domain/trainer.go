package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerStatus is the trainer account lifecycle. Only active trainers
// can be assigned to bookings.
type TrainerStatus string

const (
	TrainerPending  TrainerStatus = "pending"
	TrainerActive   TrainerStatus = "active"
	TrainerRejected TrainerStatus = "rejected"
)

// AvailabilitySlot is one bookable window in a trainer's day.
// The IsBooked flag is advisory only; session scheduling does not
// check or update it.
type AvailabilitySlot struct {
	StartTime string `bson:"startTime" json:"startTime"`
	EndTime   string `bson:"endTime" json:"endTime"`
	IsBooked  bool   `bson:"isBooked" json:"isBooked"`
}

// DayAvailability lists a trainer's slots for one weekday.
type DayAvailability struct {
	Day   string             `bson:"day" json:"day"`
	Slots []AvailabilitySlot `bson:"slots" json:"slots"`
}

// Trainer is the profile owned by a user with role=trainer.
type Trainer struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID   `bson:"user" json:"userId"`
	Status           TrainerStatus        `bson:"status" json:"status"`
	HasVehicle       bool                 `bson:"hasVehicle" json:"hasVehicle"`
	VehicleType      string               `bson:"vehicleType,omitempty" json:"vehicleType,omitempty"`
	VehicleModel     string               `bson:"vehicleModel,omitempty" json:"vehicleModel,omitempty"`
	VehicleYear      int                  `bson:"vehicleYear,omitempty" json:"vehicleYear,omitempty"`
	AssignedTrainees []primitive.ObjectID `bson:"assignedTrainees" json:"assignedTrainees"`
	Rating           float64              `bson:"rating" json:"rating"` // Running mean, 0-5
	TotalReviews     int                  `bson:"totalReviews" json:"totalReviews"`
	Specializations  []string             `bson:"specializations,omitempty" json:"specializations,omitempty"`
	Availability     []DayAvailability    `bson:"availability" json:"availability"`
	ProfileImage     string               `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	VehicleImage     string               `bson:"vehicleImage,omitempty" json:"vehicleImage,omitempty"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsActive reports whether the trainer can take on trainees.
func (t *Trainer) IsActive() bool {
	return t.Status == TrainerActive
}

// ApplyReview folds one new rating into the running mean and bumps the
// review counter: (rating*totalReviews + new) / (totalReviews+1).
func (t *Trainer) ApplyReview(rating int) {
	total := t.Rating * float64(t.TotalReviews)
	t.TotalReviews++
	t.Rating = (total + float64(rating)) / float64(t.TotalReviews)
}
