package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/estetica/salon-booking/internal/api/metrics"
	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

// maxStatusAttempts bounds the read-check-write loop of SetStatus when
// another writer bumps the version in between.
const maxStatusAttempts = 3

type appointmentService struct {
	repo    ports.AppointmentRepository
	users   ports.UserRepository
	events  ports.EventRepository
	sink    ports.StatusChangeSink
	catalog domain.Catalog
	log     zerolog.Logger
	now     func() time.Time
}

// NewAppointmentService returns an AppointmentService implementation.
// sink may be nil, in which case transitions are not forwarded.
func NewAppointmentService(
	repo ports.AppointmentRepository,
	users ports.UserRepository,
	events ports.EventRepository,
	sink ports.StatusChangeSink,
	catalog domain.Catalog,
	log zerolog.Logger,
) ports.AppointmentService {
	return &appointmentService{
		repo:    repo,
		users:   users,
		events:  events,
		sink:    sink,
		catalog: catalog,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create books a new pending appointment for input.UserID.
func (s *appointmentService) Create(ctx context.Context, input ports.CreateAppointmentInput) (*domain.Appointment, error) {
	switch {
	case input.UserID == "":
		return nil, domain.MissingField("user_id")
	case input.Service == "":
		return nil, domain.MissingField("service")
	case input.Date == "":
		return nil, domain.MissingField("date")
	case input.Time == "":
		return nil, domain.MissingField("time")
	}

	// a valid token may outlive its account
	if _, err := s.users.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	now := s.now()
	a := &domain.Appointment{
		ID:        newID(),
		UserID:    input.UserID,
		Service:   input.Service,
		Date:      input.Date,
		Time:      input.Time,
		Status:    domain.StatusPending,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	metrics.AppointmentsCreatedTotal.WithLabelValues(s.serviceLabel(a.Service)).Inc()
	s.log.Info().
		Str("appointment_id", a.ID).
		Str("user_id", a.UserID).
		Str("service", a.Service).
		Msg("appointment created")

	return a, nil
}

// List returns every appointment for an admin and the caller's own otherwise.
func (s *appointmentService) List(ctx context.Context, actor domain.Actor) ([]*domain.Appointment, error) {
	filter := ports.AppointmentFilter{}
	if !actor.IsAdmin() {
		if actor.UserID == "" {
			return []*domain.Appointment{}, nil
		}
		filter.UserID = actor.UserID
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if items == nil {
		items = []*domain.Appointment{}
	}
	return items, nil
}

// SetStatus applies a transition on behalf of actor and returns the actor's
// listing afterwards. Re-applying the current status changes nothing.
func (s *appointmentService) SetStatus(ctx context.Context, actor domain.Actor, id string, status domain.AppointmentStatus) ([]*domain.Appointment, error) {
	if id == "" {
		return nil, domain.MissingField("id")
	}
	if status == "" {
		return nil, domain.MissingField("status")
	}

	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("set status: %w", err)
		}

		if err := domain.AuthorizeTransition(actor, current, status); err != nil {
			metrics.StatusChangeRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
			return nil, err
		}

		if current.Status == status {
			s.log.Debug().Str("appointment_id", id).Str("status", string(status)).Msg("status unchanged")
			return s.List(ctx, actor)
		}

		updated, err := s.repo.UpdateStatus(ctx, id, current.Version, status, s.now())
		if errors.Is(err, domain.ErrVersionConflict) {
			s.log.Debug().Str("appointment_id", id).Int("attempt", attempt).Msg("version conflict, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("set status: %w", err)
		}

		metrics.StatusTransitionsTotal.WithLabelValues(string(current.Status), string(status), string(actor.Role)).Inc()
		s.log.Info().
			Str("appointment_id", id).
			Str("from", string(current.Status)).
			Str("to", string(status)).
			Str("actor", actor.UserID).
			Msg("appointment status changed")

		if s.sink != nil {
			s.sink.Enqueue(ports.StatusChangeInput{
				AppointmentID: updated.ID,
				OwnerID:       updated.UserID,
				From:          current.Status,
				To:            updated.Status,
				ActorID:       actor.UserID,
				ActorRole:     actor.Role,
				At:            updated.UpdatedAt,
			})
		}

		return s.List(ctx, actor)
	}

	metrics.StatusChangeRejectedTotal.WithLabelValues("conflict").Inc()
	return nil, fmt.Errorf("set status: %w", domain.ErrVersionConflict)
}

// History returns the audit trail of one appointment, scoped like List.
func (s *appointmentService) History(ctx context.Context, actor domain.Actor, id string) ([]*domain.StatusChange, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if !actor.IsAdmin() && a.UserID != actor.UserID {
		return nil, domain.ErrAppointmentNotFound
	}

	changes, err := s.events.ListByAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if changes == nil {
		changes = []*domain.StatusChange{}
	}
	return changes, nil
}

func (s *appointmentService) serviceLabel(name string) string {
	if svc, ok := s.catalog.Find(name); ok {
		return svc.Name
	}
	return "other"
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAppointmentNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrInvalidStatus):
		return "invalid_status"
	default:
		return "invalid_transition"
	}
}
