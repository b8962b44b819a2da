package ports

import (
	"context"

	"github.com/estetica/salon-booking/internal/core/domain"
)

// CreateAppointmentInput carries a client's booking request.
type CreateAppointmentInput struct {
	UserID  string
	Service string
	Date    string
	Time    string
}

// AppointmentService defines the booking use cases.
type AppointmentService interface {
	Create(ctx context.Context, input CreateAppointmentInput) (*domain.Appointment, error)
	// List is role scoped: admins see every appointment, clients only their own.
	List(ctx context.Context, actor domain.Actor) ([]*domain.Appointment, error)
	// SetStatus applies a transition and returns the actor's updated listing.
	SetStatus(ctx context.Context, actor domain.Actor, id string, status domain.AppointmentStatus) ([]*domain.Appointment, error)
	History(ctx context.Context, actor domain.Actor, id string) ([]*domain.StatusChange, error)
}
