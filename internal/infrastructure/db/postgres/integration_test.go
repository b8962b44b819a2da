package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL not set")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, Config{URL: url})
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// twice, to prove the schema is re-runnable
	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	return pool
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	repo := NewUserRepository(testPool(t))
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	u := &domain.User{ID: uuid.NewString(), Name: "Alice", Email: email, PasswordHash: "h", Role: domain.RoleClient, CreatedAt: time.Now()}
	if _, err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, &domain.User{ID: uuid.NewString(), Email: email, Role: domain.RoleClient, CreatedAt: time.Now()}); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err := repo.FindByEmail(ctx, email)
	if err != nil || got.ID != u.ID {
		t.Fatalf("FindByEmail: %+v %v", got, err)
	}
	if _, err := repo.FindByID(ctx, uuid.NewString()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAppointmentRepository_CompareAndSet(t *testing.T) {
	repo := NewAppointmentRepository(testPool(t))
	ctx := context.Background()
	owner := uuid.NewString()
	now := time.Now().UTC()

	var ids []string
	for i := 0; i < 2; i++ {
		id := uuid.NewString()
		ids = append(ids, id)
		a := &domain.Appointment{ID: id, UserID: owner, Service: "Barba & Bigode", Date: "2024-05-01", Time: "10:00", Status: domain.StatusPending, Version: 1, CreatedAt: now, UpdatedAt: now}
		if err := repo.Insert(ctx, a); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	own, err := repo.List(ctx, ports.AppointmentFilter{UserID: owner})
	if err != nil || len(own) != 2 || own[0].ID != ids[0] {
		t.Fatalf("unexpected listing: %+v %v", own, err)
	}

	updated, err := repo.UpdateStatus(ctx, ids[0], 1, domain.StatusCancelled, now)
	if err != nil || updated.Version != 2 || updated.Status != domain.StatusCancelled {
		t.Fatalf("update: %+v %v", updated, err)
	}
	if _, err := repo.UpdateStatus(ctx, ids[0], 1, domain.StatusConfirmed, now); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, uuid.NewString(), 1, domain.StatusConfirmed, now); !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestEventRepository_History(t *testing.T) {
	repo := NewEventRepository(testPool(t))
	ctx := context.Background()
	appt := uuid.NewString()

	for _, to := range []domain.AppointmentStatus{domain.StatusConfirmed, domain.StatusCancelled} {
		c := &domain.StatusChange{ID: uuid.NewString(), AppointmentID: appt, OwnerID: "o", From: domain.StatusPending, To: to, ActorID: "admin", ActorRole: domain.RoleAdmin, At: time.Now()}
		if err := repo.InsertStatusChange(ctx, c); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := repo.ListByAppointment(ctx, appt)
	if err != nil || len(got) != 2 || got[0].To != domain.StatusConfirmed || got[1].To != domain.StatusCancelled {
		t.Fatalf("unexpected history: %+v %v", got, err)
	}
}
