package domain

import (
	"errors"
	"fmt"
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
// confirmed and cancelled are terminal.
var validTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending: {StatusConfirmed, StatusCancelled},
}

var (
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrForbidden            = errors.New("access forbidden")
	ErrVersionConflict      = errors.New("appointment was modified concurrently")
	ErrMissingRequiredField = errors.New("missing required field")
)

// MissingField wraps ErrMissingRequiredField with the offending field name.
func MissingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingRequiredField, name)
}

// ParseStatus converts a raw value into an AppointmentStatus.
func ParseStatus(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(s); st {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s AppointmentStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Appointment is a booking request made by a client.
// Version increases by one on every status write and guards concurrent updates.
type Appointment struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Service   string            `json:"service"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	Status    AppointmentStatus `json:"status"`
	Version   int64             `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// AuthorizeTransition applies the booking access rules before any state change:
//
//	a client only sees its own appointments (others are reported as not found);
//	only an admin may confirm; client and admin may cancel;
//	nobody may move an appointment back to pending.
//
// Re-applying the current status is allowed and is a no-op for the caller.
func AuthorizeTransition(actor Actor, a *Appointment, next AppointmentStatus) error {
	if !actor.IsAdmin() && a.UserID != actor.UserID {
		return ErrAppointmentNotFound
	}
	switch next {
	case StatusPending:
		return fmt.Errorf("%w: cannot reopen appointment", ErrInvalidTransition)
	case StatusConfirmed:
		if !actor.IsAdmin() {
			return ErrForbidden
		}
	case StatusCancelled:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if a.Status == next {
		return nil
	}
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, a.Status, next)
	}
	return nil
}
