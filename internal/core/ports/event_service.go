package ports

import (
	"context"
	"time"

	"github.com/estetica/salon-booking/internal/core/domain"
)

// StatusChangeInput is the DTO passed from the appointment service to the
// event pipeline after a transition was persisted.
type StatusChangeInput struct {
	AppointmentID string
	OwnerID       string
	From          domain.AppointmentStatus
	To            domain.AppointmentStatus
	ActorID       string
	ActorRole     domain.Role
	At            time.Time
}

// EventService processes persisted status changes.
type EventService interface {
	Process(ctx context.Context, in StatusChangeInput) error
}

// StatusChangeSink accepts status changes for asynchronous processing.
type StatusChangeSink interface {
	Enqueue(in StatusChangeInput)
}

// DedupChecker abstracts the idempotency store.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, appointmentID string, status domain.AppointmentStatus) (bool, error)
	Mark(ctx context.Context, appointmentID string, status domain.AppointmentStatus) error
}

// EventPublisher forwards status changes to external consumers.
type EventPublisher interface {
	PublishStatusChange(ctx context.Context, change *domain.StatusChange) error
}
