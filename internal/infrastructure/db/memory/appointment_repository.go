package memory

import (
	"context"
	"sync"
	"time"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

type AppointmentRepository struct {
	mu    sync.RWMutex
	items []*domain.Appointment
}

var _ ports.AppointmentRepository = (*AppointmentRepository)(nil)

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{}
}

func cloneAppointment(a *domain.Appointment) *domain.Appointment {
	clone := *a
	return &clone
}

func (r *AppointmentRepository) Insert(_ context.Context, a *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, cloneAppointment(a))
	return nil
}

func (r *AppointmentRepository) FindByID(_ context.Context, id string) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a := r.find(id); a != nil {
		return cloneAppointment(a), nil
	}
	return nil, domain.ErrAppointmentNotFound
}

func (r *AppointmentRepository) List(_ context.Context, filter ports.AppointmentFilter) ([]*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Appointment, 0, len(r.items))
	for _, a := range r.items {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		out = append(out, cloneAppointment(a))
	}
	return out, nil
}

func (r *AppointmentRepository) UpdateStatus(_ context.Context, id string, expectedVersion int64, status domain.AppointmentStatus, at time.Time) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.find(id)
	if a == nil {
		return nil, domain.ErrAppointmentNotFound
	}
	if a.Version != expectedVersion {
		return nil, domain.ErrVersionConflict
	}
	a.Status = status
	a.Version++
	a.UpdatedAt = at
	return cloneAppointment(a), nil
}

// find must be called with r.mu held.
func (r *AppointmentRepository) find(id string) *domain.Appointment {
	for _, a := range r.items {
		if a.ID == id {
			return a
		}
	}
	return nil
}
