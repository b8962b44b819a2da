package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

// appointmentRecord is the flat JSON shape kept in the app_appointments
// array. Records written before versioning decode with version 0.
type appointmentRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Service   string    `json:"service"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

func toAppointmentRecord(a *domain.Appointment) appointmentRecord {
	return appointmentRecord{
		ID:        a.ID,
		UserID:    a.UserID,
		Service:   a.Service,
		Date:      a.Date,
		Time:      a.Time,
		Status:    string(a.Status),
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (r appointmentRecord) toDomain() *domain.Appointment {
	return &domain.Appointment{
		ID:        r.ID,
		UserID:    r.UserID,
		Service:   r.Service,
		Date:      r.Date,
		Time:      r.Time,
		Status:    domain.AppointmentStatus(r.Status),
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// AppointmentRepository stores every appointment as one JSON array under
// app_appointments. Array order is insertion order.
type AppointmentRepository struct {
	client *redis.Client
}

var _ ports.AppointmentRepository = (*AppointmentRepository)(nil)

func NewAppointmentRepository(client *redis.Client) *AppointmentRepository {
	return &AppointmentRepository{client: client}
}

func (r *AppointmentRepository) Insert(ctx context.Context, a *domain.Appointment) error {
	rec := toAppointmentRecord(a)
	return updateCollection(ctx, r.client, keyAppointments, func(items []appointmentRecord) ([]appointmentRecord, error) {
		return append(items, rec), nil
	})
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	items, err := loadCollection[appointmentRecord](ctx, r.client, keyAppointments)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.ID == id {
			return it.toDomain(), nil
		}
	}
	return nil, domain.ErrAppointmentNotFound
}

func (r *AppointmentRepository) List(ctx context.Context, filter ports.AppointmentFilter) ([]*domain.Appointment, error) {
	items, err := loadCollection[appointmentRecord](ctx, r.client, keyAppointments)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Appointment, 0, len(items))
	for _, it := range items {
		if filter.UserID != "" && it.UserID != filter.UserID {
			continue
		}
		out = append(out, it.toDomain())
	}
	return out, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.AppointmentStatus, at time.Time) (*domain.Appointment, error) {
	var updated *domain.Appointment
	err := updateCollection(ctx, r.client, keyAppointments, func(items []appointmentRecord) ([]appointmentRecord, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if items[i].Version != expectedVersion {
				return nil, domain.ErrVersionConflict
			}
			items[i].Status = string(status)
			items[i].Version++
			items[i].UpdatedAt = at
			updated = items[i].toDomain()
			return items, nil
		}
		return nil, domain.ErrAppointmentNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
