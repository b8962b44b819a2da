package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

var _ ports.EventRepository = (*EventRepository)(nil)

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) InsertStatusChange(ctx context.Context, c *domain.StatusChange) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment_events (id, appointment_id, owner_id, from_status, to_status, actor_id, actor_role, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.AppointmentID, c.OwnerID, string(c.From), string(c.To), c.ActorID, string(c.ActorRole), c.At)
	if err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}

func (r *EventRepository) ListByAppointment(ctx context.Context, appointmentID string) ([]*domain.StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, appointment_id, owner_id, from_status, to_status, actor_id, actor_role, at
		FROM appointment_events
		WHERE appointment_id = $1
		ORDER BY seq
	`, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	defer rows.Close()

	out := []*domain.StatusChange{}
	for rows.Next() {
		var (
			c              domain.StatusChange
			from, to, role string
		)
		if err := rows.Scan(&c.ID, &c.AppointmentID, &c.OwnerID, &from, &to, &c.ActorID, &role, &c.At); err != nil {
			return nil, fmt.Errorf("scan status change: %w", err)
		}
		c.From = domain.AppointmentStatus(from)
		c.To = domain.AppointmentStatus(to)
		c.ActorRole = domain.Role(role)
		c.At = c.At.UTC()
		out = append(out, &c)
	}
	return out, rows.Err()
}
