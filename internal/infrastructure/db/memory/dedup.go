package memory

import (
	"context"
	"sync"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

// DedupChecker is the in-process idempotency set. Keys never expire; there
// are at most two effective transitions per appointment.
type DedupChecker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

var _ ports.DedupChecker = (*DedupChecker)(nil)

func NewDedupChecker() *DedupChecker {
	return &DedupChecker{seen: make(map[string]struct{})}
}

func (d *DedupChecker) IsDuplicate(_ context.Context, appointmentID string, status domain.AppointmentStatus) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[appointmentID+":"+string(status)]
	return ok, nil
}

func (d *DedupChecker) Mark(_ context.Context, appointmentID string, status domain.AppointmentStatus) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[appointmentID+":"+string(status)] = struct{}{}
	return nil
}
