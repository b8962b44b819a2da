package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

const defaultDedupTTL = 24 * time.Hour

// DedupChecker provides idempotency checks backed by Redis.
// Key format: dedup:<appointment_id>:<status>
type DedupChecker struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.DedupChecker = (*DedupChecker)(nil)

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client, ttl time.Duration) *DedupChecker {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &DedupChecker{client: client, ttl: ttl}
}

// IsDuplicate reports whether this transition has already been recorded.
func (d *DedupChecker) IsDuplicate(ctx context.Context, appointmentID string, status domain.AppointmentStatus) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(appointmentID, status)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this transition has been processed (expires after ttl).
func (d *DedupChecker) Mark(ctx context.Context, appointmentID string, status domain.AppointmentStatus) error {
	return d.client.Set(ctx, d.key(appointmentID, status), "1", d.ttl).Err()
}

func (d *DedupChecker) key(appointmentID string, status domain.AppointmentStatus) string {
	return fmt.Sprintf("dedup:%s:%s", appointmentID, status)
}
