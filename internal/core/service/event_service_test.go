package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubEventRepo struct {
	mu        sync.Mutex
	insertErr error
	inserted  []*domain.StatusChange
}

func (r *stubEventRepo) InsertStatusChange(_ context.Context, c *domain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, c)
	return nil
}

func (r *stubEventRepo) ListByAppointment(_ context.Context, id string) ([]*domain.StatusChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.StatusChange
	for _, c := range r.inserted {
		if c.AppointmentID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubDedup struct {
	dupResult bool
	dupErr    error
	markErr   error
	marked    []string
}

func (d *stubDedup) IsDuplicate(_ context.Context, _ string, _ domain.AppointmentStatus) (bool, error) {
	return d.dupResult, d.dupErr
}

func (d *stubDedup) Mark(_ context.Context, id string, status domain.AppointmentStatus) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked = append(d.marked, id+":"+string(status))
	return nil
}

type stubPublisher struct {
	err       error
	published []*domain.StatusChange
}

func (p *stubPublisher) PublishStatusChange(_ context.Context, c *domain.StatusChange) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, c)
	return nil
}

func confirmInput() ports.StatusChangeInput {
	return ports.StatusChangeInput{
		AppointmentID: "appt-1",
		OwnerID:       "alice",
		From:          domain.StatusPending,
		To:            domain.StatusConfirmed,
		ActorID:       "admin",
		ActorRole:     domain.RoleAdmin,
		At:            time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestEventService_Process_HappyPath(t *testing.T) {
	repo := &stubEventRepo{}
	dedup := &stubDedup{}
	pub := &stubPublisher{}

	svc := NewEventService(repo, dedup, pub, zerolog.Nop())
	if err := svc.Process(context.Background(), confirmInput()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(repo.inserted) != 1 {
		t.Fatalf("expected audit record inserted, got %d", len(repo.inserted))
	}
	got := repo.inserted[0]
	if got.ID == "" || got.From != domain.StatusPending || got.To != domain.StatusConfirmed || got.ActorRole != domain.RoleAdmin {
		t.Errorf("unexpected audit record: %+v", got)
	}
	if len(dedup.marked) != 1 || dedup.marked[0] != "appt-1:confirmed" {
		t.Errorf("expected dedup key marked, got %v", dedup.marked)
	}
	if len(pub.published) != 1 {
		t.Errorf("expected status change published")
	}
}

func TestEventService_Process_DuplicateSkipped(t *testing.T) {
	repo := &stubEventRepo{}
	pub := &stubPublisher{}

	svc := NewEventService(repo, &stubDedup{dupResult: true}, pub, zerolog.Nop())
	if err := svc.Process(context.Background(), confirmInput()); err != nil {
		t.Fatalf("expected no error for duplicate, got: %v", err)
	}
	if len(repo.inserted) != 0 || len(pub.published) != 0 {
		t.Errorf("expected duplicate to be skipped entirely")
	}
}

func TestEventService_Process_DedupErrorProcessesAnyway(t *testing.T) {
	repo := &stubEventRepo{}

	svc := NewEventService(repo, &stubDedup{dupErr: errors.New("redis down")}, nil, zerolog.Nop())
	if err := svc.Process(context.Background(), confirmInput()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Errorf("expected audit record despite dedup failure")
	}
}

func TestEventService_Process_AuditFailure(t *testing.T) {
	storeErr := errors.New("insert failed")
	dedup := &stubDedup{}

	svc := NewEventService(&stubEventRepo{insertErr: storeErr}, dedup, nil, zerolog.Nop())
	err := svc.Process(context.Background(), confirmInput())
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected audit failure to be returned, got: %v", err)
	}
	if len(dedup.marked) != 0 {
		t.Errorf("dedup key must not be set when the audit write fails")
	}
}

func TestEventService_Process_PublishFailureIsNonFatal(t *testing.T) {
	repo := &stubEventRepo{}

	svc := NewEventService(repo, nil, &stubPublisher{err: errors.New("broker unreachable")}, zerolog.Nop())
	if err := svc.Process(context.Background(), confirmInput()); err != nil {
		t.Fatalf("expected publish failure to be swallowed, got: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Errorf("expected audit record inserted")
	}
}

func TestEventService_Process_DefaultsTimestamp(t *testing.T) {
	repo := &stubEventRepo{}
	in := confirmInput()
	in.At = time.Time{}

	svc := NewEventService(repo, nil, nil, zerolog.Nop())
	if err := svc.Process(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.inserted[0].At.IsZero() {
		t.Error("expected timestamp to be filled in")
	}
}
