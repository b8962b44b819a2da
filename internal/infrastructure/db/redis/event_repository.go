package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

// EventRepository appends audit records to one list per appointment.
type EventRepository struct {
	client *redis.Client
}

var _ ports.EventRepository = (*EventRepository)(nil)

func NewEventRepository(client *redis.Client) *EventRepository {
	return &EventRepository{client: client}
}

func (r *EventRepository) InsertStatusChange(ctx context.Context, change *domain.StatusChange) error {
	raw, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode status change: %w", err)
	}
	if err := r.client.RPush(ctx, keyEventsPrefix+change.AppointmentID, raw).Err(); err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}

func (r *EventRepository) ListByAppointment(ctx context.Context, appointmentID string) ([]*domain.StatusChange, error) {
	raws, err := r.client.LRange(ctx, keyEventsPrefix+appointmentID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	out := make([]*domain.StatusChange, 0, len(raws))
	for _, raw := range raws {
		var c domain.StatusChange
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode status change: %w", err)
		}
		out = append(out, &c)
	}
	return out, nil
}
