package service

import (
	"errors"
	"fmt"

	"github.com/costumerent/costume-market/internal/repository"
)

// Sentinel errors returned by every service.  Callers test them with
// errors.Is; ValidationError also matches ErrValidation.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError reports a rejected input field.  Err carries the
// underlying cause when there is one, such as a blob store rejection.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

// storeErr translates repository errors into service errors.  Anything
// unrecognised is a persistence failure.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrCostumeNotFound), errors.Is(err, repository.ErrReservationNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: reservation dates overlap an existing reservation", ErrConflict)
	case errors.Is(err, repository.ErrForbidden):
		return ErrForbidden
	default:
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
}
