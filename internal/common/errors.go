package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrDuplicateVersion = errors.New("duplicate procedure version")

	// ErrConstraintViolation is returned when a value is outside its closed
	// enumeration, either at construction or by a database check constraint.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrValidation marks structural validation failures (empty procedure or page).
	ErrValidation = errors.New("validation error")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
