package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

func TestUserRepository_CreateIsAtomic(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, &domain.User{ID: fmt.Sprintf("u%d", i), Email: "same@example.com"})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrDuplicateEmail) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created != 1 {
		t.Fatalf("expected exactly one registration to win, got %d", created)
	}
}

func TestUserRepository_Find(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	_, _ = repo.Create(ctx, &domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleClient})

	if u, err := repo.FindByEmail(ctx, "a@example.com"); err != nil || u.ID != "u1" {
		t.Fatalf("FindByEmail: %+v %v", u, err)
	}
	if u, err := repo.FindByID(ctx, "u1"); err != nil || u.Email != "a@example.com" {
		t.Fatalf("FindByID: %+v %v", u, err)
	}
	if _, err := repo.FindByEmail(ctx, "b@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAppointmentRepository_UpdateStatusVersioning(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()
	_ = repo.Insert(ctx, &domain.Appointment{ID: "a1", UserID: "alice", Status: domain.StatusPending, Version: 1})

	at := time.Now().UTC()
	updated, err := repo.UpdateStatus(ctx, "a1", 1, domain.StatusConfirmed, at)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Version != 2 || updated.Status != domain.StatusConfirmed || !updated.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected appointment: %+v", updated)
	}

	if _, err := repo.UpdateStatus(ctx, "a1", 1, domain.StatusCancelled, at); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, "zz", 1, domain.StatusCancelled, at); !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestAppointmentRepository_ListOrderAndFilter(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()
	for i, owner := range []string{"alice", "bob", "alice"} {
		_ = repo.Insert(ctx, &domain.Appointment{ID: fmt.Sprintf("a%d", i), UserID: owner})
	}

	all, _ := repo.List(ctx, ports.AppointmentFilter{})
	if len(all) != 3 || all[0].ID != "a0" || all[2].ID != "a2" {
		t.Fatalf("unexpected listing: %+v", all)
	}

	own, _ := repo.List(ctx, ports.AppointmentFilter{UserID: "alice"})
	if len(own) != 2 || own[1].ID != "a2" {
		t.Fatalf("unexpected filtered listing: %+v", own)
	}

	// returned values are copies
	own[0].Status = domain.StatusCancelled
	if got, _ := repo.FindByID(ctx, "a0"); got.Status == domain.StatusCancelled {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestEventRepository_ListByAppointment(t *testing.T) {
	repo := NewEventRepository()
	ctx := context.Background()
	_ = repo.InsertStatusChange(ctx, &domain.StatusChange{ID: "e1", AppointmentID: "a1"})
	_ = repo.InsertStatusChange(ctx, &domain.StatusChange{ID: "e2", AppointmentID: "a2"})

	got, _ := repo.ListByAppointment(ctx, "a1")
	if len(got) != 1 || got[0].ID != "e1" {
		t.Fatalf("unexpected events: %+v", got)
	}
	if none, _ := repo.ListByAppointment(ctx, "a3"); none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", none)
	}
}

func TestDedupChecker(t *testing.T) {
	d := NewDedupChecker()
	ctx := context.Background()

	if dup, _ := d.IsDuplicate(ctx, "a1", domain.StatusConfirmed); dup {
		t.Fatal("fresh key reported as duplicate")
	}
	_ = d.Mark(ctx, "a1", domain.StatusConfirmed)
	if dup, _ := d.IsDuplicate(ctx, "a1", domain.StatusConfirmed); !dup {
		t.Fatal("marked key not reported as duplicate")
	}
	if dup, _ := d.IsDuplicate(ctx, "a1", domain.StatusCancelled); dup {
		t.Fatal("status is part of the key")
	}
}
