package booking

import (
	"errors"
	"fmt"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

// ErrSlotTaken is returned by BookingStore.Insert when the storage layer's
// overlap constraint rejects the interval. The service translates it into a
// ConflictError for the caller.
var ErrSlotTaken = errors.New("time slot already booked")

// ValidationError means the request itself is malformed or violates a guard;
// the caller should fix the input rather than retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError covers both a missing resource and a caller that lacks the
// relationship required to act on it.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ConflictError means the requested interval is unavailable; the caller
// should pick a different slot.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StateTransitionError reports an invalid lifecycle transition.
type StateTransitionError struct {
	Current   model.BookingStatus
	Requested model.BookingStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %s to %s", e.Current, e.Requested)
}

// ExternalDependencyError means a collaborator call failed and the operation
// was aborted with no state change; the caller may retry later.
type ExternalDependencyError struct {
	Dependency string
	Err        error
}

func (e *ExternalDependencyError) Error() string {
	return e.Dependency + " unavailable: " + e.Err.Error()
}

func (e *ExternalDependencyError) Unwrap() error {
	return e.Err
}
