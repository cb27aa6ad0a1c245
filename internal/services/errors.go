package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("invalid request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSignatureMismatch = errors.New("payment signature verification failed")
	ErrConflict          = errors.New("payment already recorded with different booking details")
	ErrSerialAllocation  = errors.New("could not allocate a unique serial number")
	ErrNotFound          = errors.New("not found")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
