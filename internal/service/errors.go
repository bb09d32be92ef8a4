package service

import (
	"errors"
	"fmt"
)

// The five error kinds every lifecycle operation can surface. Specific
// condition errors below wrap one of these, so handlers classify with
// errors.Is against the kind and still get a precise message.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrForbidden          = errors.New("forbidden")
)

var (
	// Lookup failures
	ErrUserNotFound           = fmt.Errorf("%w: user", ErrNotFound)
	ErrTrainerNotFound        = fmt.Errorf("%w: trainer", ErrNotFound)
	ErrTraineeNotFound        = fmt.Errorf("%w: trainee profile", ErrNotFound)
	ErrPlanNotFound           = fmt.Errorf("%w: plan", ErrNotFound)
	ErrBookingNotFound        = fmt.Errorf("%w: booking", ErrNotFound)
	ErrSessionNotFound        = fmt.Errorf("%w: session", ErrNotFound)
	ErrNoChangeRequest        = fmt.Errorf("%w: no trainer change request on this booking", ErrNotFound)

	// State machine violations
	ErrBookingNotPending     = fmt.Errorf("%w: booking is not pending", ErrInvalidState)
	ErrBookingNotConfirmed   = fmt.Errorf("%w: booking is not confirmed", ErrInvalidState)
	ErrBookingNotCancellable = fmt.Errorf("%w: only pending or confirmed bookings can be cancelled", ErrInvalidState)
	ErrSessionNotStartable   = fmt.Errorf("%w: session cannot be started from its current status", ErrInvalidState)
	ErrSessionNotInProgress  = fmt.Errorf("%w: only in-progress sessions can be completed", ErrInvalidState)
	ErrSessionNotDeletable   = fmt.Errorf("%w: only scheduled sessions can be deleted", ErrInvalidState)

	// Side-constraint failures
	ErrTrainerNotActive     = fmt.Errorf("%w: selected trainer is not active", ErrPreconditionFailed)
	ErrSessionsNotCompleted = fmt.Errorf("%w: all sessions must be completed first", ErrPreconditionFailed)

	// Input validation
	ErrPlanNameRequired     = fmt.Errorf("%w: plan name missing in both languages", ErrInvalidArgument)
	ErrPlanSessionsRequired = fmt.Errorf("%w: plan needs a positive session count", ErrInvalidArgument)
	ErrInvalidBookingStatus = fmt.Errorf("%w: unrecognized booking status", ErrInvalidArgument)
	ErrInvalidSessionStatus = fmt.Errorf("%w: unrecognized session status", ErrInvalidArgument)
	ErrInvalidTrainerStatus = fmt.Errorf("%w: unrecognized trainer status", ErrInvalidArgument)
	ErrInvalidImageKind     = fmt.Errorf("%w: image kind must be profile or vehicle", ErrInvalidArgument)
	ErrUnsupportedImageType = fmt.Errorf("%w: only image content types can be uploaded", ErrInvalidArgument)
	ErrObjectKeyRequired    = fmt.Errorf("%w: object key is required", ErrInvalidArgument)
	ErrObjectKeyMismatch    = fmt.Errorf("%w: object key does not belong to this trainer", ErrForbidden)
	ErrImageNotSet          = fmt.Errorf("%w: image", ErrNotFound)
	ErrInvalidDecision      = fmt.Errorf("%w: decision must be approved or rejected", ErrInvalidArgument)
	ErrReasonRequired       = fmt.Errorf("%w: a reason is required", ErrInvalidArgument)
	ErrInvalidRating        = fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidArgument)
	ErrScheduleRequired     = fmt.Errorf("%w: scheduled date, start time and end time are required", ErrInvalidArgument)
	ErrTrainerIDRequired    = fmt.Errorf("%w: a trainer ID is required", ErrInvalidArgument)

	// Ownership/role violations
	ErrNotSessionTrainer = fmt.Errorf("%w: session belongs to another trainer", ErrForbidden)
	ErrNotSessionTrainee = fmt.Errorf("%w: session belongs to another trainee", ErrForbidden)
	ErrNotBookingOwner   = fmt.Errorf("%w: booking belongs to another trainee", ErrForbidden)
)
