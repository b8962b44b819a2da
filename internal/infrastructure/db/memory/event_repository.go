package memory

import (
	"context"
	"sync"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

type EventRepository struct {
	mu     sync.RWMutex
	events []*domain.StatusChange
}

var _ ports.EventRepository = (*EventRepository)(nil)

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

func (r *EventRepository) InsertStatusChange(_ context.Context, change *domain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *change
	r.events = append(r.events, &clone)
	return nil
}

func (r *EventRepository) ListByAppointment(_ context.Context, appointmentID string) ([]*domain.StatusChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.StatusChange{}
	for _, e := range r.events {
		if e.AppointmentID == appointmentID {
			clone := *e
			out = append(out, &clone)
		}
	}
	return out, nil
}
