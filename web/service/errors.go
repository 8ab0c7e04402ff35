package service

import (
	"errors"
	"fmt"

	"github.com/allblack/allblack-panel/database"
)

// Failure classes returned by the services. Callers classify with errors.Is;
// the wrapped message carries the detail.
var (
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrUnauthorizedRegistration = errors.New("unauthorized registration")
	ErrDuplicateUsername        = errors.New("username already exists")
	ErrItemInUse                = errors.New("menu item is referenced by orders")
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrValidation               = errors.New("validation failed")
	ErrStore                    = errors.New("store error")
	ErrNotFound                 = errors.New("not found")
	ErrForbidden                = errors.New("forbidden")
)

func validationError(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, a...))
}

// storeError wraps a database failure. Record-not-found maps to ErrNotFound
// and errors that are already classified pass through.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if database.IsNotFound(err) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	for _, known := range []error{
		ErrInvalidCredentials, ErrUnauthorizedRegistration, ErrDuplicateUsername,
		ErrItemInUse, ErrInvalidTransition, ErrValidation, ErrStore, ErrNotFound, ErrForbidden,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}
