package repository

import (
	"context"
	"time"

	"masar/driving-school/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UnitOfWork runs fn so that every repository write issued through ctx
// commits atomically or not at all. Implementations back this with a
// storage transaction; the in-memory test double just calls fn.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TrainerRepository defines the interface for trainer profiles.
type TrainerRepository interface {
	Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainer, error)
	List(ctx context.Context, status *domain.TrainerStatus) ([]domain.Trainer, error)
	Update(ctx context.Context, trainer *domain.Trainer) error
	// AddAssignedTrainee inserts without duplicating ($addToSet semantics).
	AddAssignedTrainee(ctx context.Context, trainerID, traineeID primitive.ObjectID) error
	RemoveAssignedTrainee(ctx context.Context, trainerID, traineeID primitive.ObjectID) error
	// DeleteByUserID removes the profile owned by the given user account.
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// TraineeRepository defines the interface for trainee profiles.
type TraineeRepository interface {
	Create(ctx context.Context, trainee *domain.Trainee) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainee, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainee, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Trainee, error)
	Update(ctx context.Context, trainee *domain.Trainee) error
	// DeleteByUserID removes the profile owned by the given user account.
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// PlanRepository defines the interface for the plan catalog.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	// GetActiveByID resolves a plan only when it is active.
	GetActiveByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	// List returns plans sorted by price; active filters on IsActive when set.
	List(ctx context.Context, active *bool) ([]domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	Status    *domain.BookingStatus
	TraineeID *primitive.ObjectID
}

// BookingRepository defines the interface for bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	// List returns bookings newest first.
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	TrainerID *primitive.ObjectID
	TraineeID *primitive.ObjectID
	Status    *domain.SessionStatus
	// Date restricts to sessions scheduled on that calendar day.
	Date *time.Time
}

// SessionRepository defines the interface for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]domain.Session, error)
	// List returns sessions ordered by scheduled date then start time.
	List(ctx context.Context, filter SessionFilter) ([]domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// UpdateStatusByBooking force-transitions every session on the booking
	// currently in one of the from statuses.
	UpdateStatusByBooking(ctx context.Context, bookingID primitive.ObjectID, from []domain.SessionStatus, to domain.SessionStatus) error
	// ReassignTrainerByBooking retargets every session on the booking in one
	// of the given statuses to a new trainer.
	ReassignTrainerByBooking(ctx context.Context, bookingID primitive.ObjectID, statuses []domain.SessionStatus, trainerID primitive.ObjectID) error
}
