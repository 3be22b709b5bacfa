package services

import (
	"errors"

	"github.com/CUknot/social_backend/database"
)

// Failure kinds. Match with errors.Is; the message of an *Error is safe to
// show to clients.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
)

type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// conflictOnDuplicate translates a unique constraint violation into a
// Conflict carrying message. Other errors are returned unchanged.
func conflictOnDuplicate(err error, message string) error {
	if database.IsDuplicate(err) {
		return newError(ErrConflict, message)
	}
	return err
}
