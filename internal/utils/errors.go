package utils

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by services and handlers. Services wrap these
// sentinels with context; handlers map them to HTTP status codes with
// errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)

func NotFoundError(resource string) error {
	return fmt.Errorf("%s: %w", resource, ErrNotFound)
}

func ForbiddenError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrForbidden)
}

func ValidationError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}

func ConflictError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrConflict)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
