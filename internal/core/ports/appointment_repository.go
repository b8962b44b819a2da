package ports

import (
	"context"
	"time"

	"github.com/estetica/salon-booking/internal/core/domain"
)

// AppointmentFilter scopes a listing.
type AppointmentFilter struct {
	UserID string // empty = every user (admin)
}

// AppointmentRepository defines per-record persistence for appointments.
type AppointmentRepository interface {
	Insert(ctx context.Context, a *domain.Appointment) error
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	// List returns matching appointments in insertion order, oldest first.
	List(ctx context.Context, filter AppointmentFilter) ([]*domain.Appointment, error)
	// UpdateStatus sets the status only if the stored version equals
	// expectedVersion, bumping the version by one. It returns
	// domain.ErrVersionConflict on mismatch and domain.ErrAppointmentNotFound
	// when id does not exist.
	UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.AppointmentStatus, at time.Time) (*domain.Appointment, error)
}
