package application

import (
	"errors"

	"github.com/example/talk-scheduler/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the caller is not an authenticated admin.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when the admin password does not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
)

// ValidationError captures field level validation issues that callers can
// surface to users. No write is performed when one is returned.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ConflictError reports a room/time collision. It carries the bookings that
// overlap the requested interval; no write is performed when one is returned.
type ConflictError struct {
	Conflicts []persistence.ScheduledTalk
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	return "scheduling conflict detected"
}
