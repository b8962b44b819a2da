package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

// testDatabase connects to MONGO_URI and returns a throwaway database.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx := context.Background()
	client, db, err := Connect(ctx, Config{URI: uri, Database: "salon_test_" + uuid.NewString()[:8]})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return db
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	db := testDatabase(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &domain.User{ID: uuid.NewString(), Name: "Alice", Email: "alice@example.com", PasswordHash: "h", Role: domain.RoleClient, CreatedAt: time.Now()}
	if _, err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := &domain.User{ID: uuid.NewString(), Email: "alice@example.com", Role: domain.RoleClient}
	if _, err := repo.Create(ctx, dup); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil || got.ID != u.ID || got.Role != domain.RoleClient {
		t.Fatalf("FindByEmail: %+v %v", got, err)
	}
	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAppointmentRepository_CompareAndSet(t *testing.T) {
	db := testDatabase(t)
	repo := NewAppointmentRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	ids := []string{}
	for _, owner := range []string{"alice", "bob", "alice"} {
		id, _ := uuid.NewV7()
		ids = append(ids, id.String())
		a := &domain.Appointment{ID: id.String(), UserID: owner, Service: "Corte de Cabelo", Date: "2024-05-01", Time: "10:00", Status: domain.StatusPending, Version: 1, CreatedAt: now, UpdatedAt: now}
		if err := repo.Insert(ctx, a); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	own, err := repo.List(ctx, ports.AppointmentFilter{UserID: "alice"})
	if err != nil || len(own) != 2 || own[0].ID != ids[0] || own[1].ID != ids[2] {
		t.Fatalf("unexpected listing: %+v %v", own, err)
	}

	updated, err := repo.UpdateStatus(ctx, ids[1], 1, domain.StatusConfirmed, now)
	if err != nil || updated.Version != 2 || updated.Status != domain.StatusConfirmed {
		t.Fatalf("update: %+v %v", updated, err)
	}
	if _, err := repo.UpdateStatus(ctx, ids[1], 1, domain.StatusCancelled, now); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, "missing", 1, domain.StatusCancelled, now); !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestEventRepository_History(t *testing.T) {
	db := testDatabase(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	first, _ := uuid.NewV7()
	second, _ := uuid.NewV7()
	_ = repo.InsertStatusChange(ctx, &domain.StatusChange{ID: first.String(), AppointmentID: "a1", From: domain.StatusPending, To: domain.StatusConfirmed, At: time.Now()})
	_ = repo.InsertStatusChange(ctx, &domain.StatusChange{ID: second.String(), AppointmentID: "a2", From: domain.StatusPending, To: domain.StatusCancelled, At: time.Now()})

	got, err := repo.ListByAppointment(ctx, "a1")
	if err != nil || len(got) != 1 || got[0].To != domain.StatusConfirmed {
		t.Fatalf("unexpected history: %+v %v", got, err)
	}
}
