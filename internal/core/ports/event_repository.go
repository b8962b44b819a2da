package ports

import (
	"context"

	"github.com/estetica/salon-booking/internal/core/domain"
)

// EventRepository persists the appointment status audit trail.
type EventRepository interface {
	InsertStatusChange(ctx context.Context, change *domain.StatusChange) error
	// ListByAppointment returns the changes of one appointment, oldest first.
	ListByAppointment(ctx context.Context, appointmentID string) ([]*domain.StatusChange, error)
}
