package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// PermissionError is returned when the actor is not allowed to act on a departure.
type PermissionError struct {
	Action string
	Msg    string
}

func (e PermissionError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Action != "":
		return fmt.Sprintf("not allowed to %s", e.Action)
	default:
		return "permission denied"
	}
}

// InvalidStateError reports an illegal lifecycle transition.
type InvalidStateError struct {
	Resource string
	From     string
	To       string
	Msg      string
}

func (e InvalidStateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.From != "" && e.To != "" {
		return fmt.Sprintf("%s cannot move from %s to %s", e.resource(), e.From, e.To)
	}
	return fmt.Sprintf("%s is in an invalid state", e.resource())
}

func (e InvalidStateError) resource() string {
	if e.Resource == "" {
		return "resource"
	}
	return e.Resource
}

type SeatTakenError struct {
	DepartureID ID
	Seat        int
	Err         error
}

func (e SeatTakenError) Error() string {
	return fmt.Sprintf("seat %d is already taken", e.Seat)
}

func (e SeatTakenError) Unwrap() error { return e.Err }

type InvalidSeatError struct {
	Seat     int
	Capacity int
}

func (e InvalidSeatError) Error() string {
	return fmt.Sprintf("invalid seat %d: must be between 1 and %d", e.Seat, e.Capacity)
}

type NoCapacityError struct {
	DepartureID ID
}

func (e NoCapacityError) Error() string {
	return "no seats left on this departure"
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsPermission(err error) bool {
	var target PermissionError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target InvalidStateError
	return errors.As(err, &target)
}

func IsSeatTaken(err error) bool {
	var target SeatTakenError
	return errors.As(err, &target)
}

func IsInvalidSeat(err error) bool {
	var target InvalidSeatError
	return errors.As(err, &target)
}

func IsNoCapacity(err error) bool {
	var target NoCapacityError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
