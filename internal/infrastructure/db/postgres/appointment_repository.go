package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

const appointmentColumns = `id, user_id, service, date, time, status, version, created_at, updated_at`

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

var _ ports.AppointmentRepository = (*AppointmentRepository)(nil)

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Insert(ctx context.Context, a *domain.Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO app_appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.ID, a.UserID, a.Service, a.Date, a.Time, string(a.Status), a.Version, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM app_appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return a, nil
}

// List orders by the insertion sequence.
func (r *AppointmentRepository) List(ctx context.Context, filter ports.AppointmentFilter) ([]*domain.Appointment, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filter.UserID != "" {
		rows, err = r.pool.Query(ctx, `SELECT `+appointmentColumns+` FROM app_appointments WHERE user_id = $1 ORDER BY seq`, filter.UserID)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+appointmentColumns+` FROM app_appointments ORDER BY seq`)
	}
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	out := []*domain.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateStatus is a compare-and-set on (id, version).
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.AppointmentStatus, at time.Time) (*domain.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE app_appointments
		SET status = $3, version = version + 1, updated_at = $4
		WHERE id = $1 AND version = $2
		RETURNING `+appointmentColumns, id, expectedVersion, string(status), at)

	a, err := scanAppointment(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM app_appointments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	if !exists {
		return nil, domain.ErrAppointmentNotFound
	}
	return nil, domain.ErrVersionConflict
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var (
		a      domain.Appointment
		status string
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Service, &a.Date, &a.Time, &status, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Status = domain.AppointmentStatus(status)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}
