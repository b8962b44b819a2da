package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/estetica/salon-booking/internal/api/metrics"
	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

type eventService struct {
	repo      ports.EventRepository
	dedup     ports.DedupChecker
	publisher ports.EventPublisher
	log       zerolog.Logger
}

// NewEventService returns an EventService implementation. dedup and
// publisher are optional.
func NewEventService(
	repo ports.EventRepository,
	dedup ports.DedupChecker,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) ports.EventService {
	return &eventService{
		repo:      repo,
		dedup:     dedup,
		publisher: publisher,
		log:       log,
	}
}

// Process deduplicates, records and publishes a single status change.
func (s *eventService) Process(ctx context.Context, in ports.StatusChangeInput) error {
	start := time.Now()

	if s.dedup != nil {
		isDup, err := s.dedup.IsDuplicate(ctx, in.AppointmentID, in.To)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("appointment_id", in.AppointmentID).Msg("dedup check failed, processing anyway")
		case isDup:
			metrics.EventsDedupTotal.WithLabelValues("hit").Inc()
			s.log.Debug().Str("appointment_id", in.AppointmentID).Str("status", string(in.To)).Msg("duplicate status change skipped")
			return nil
		default:
			metrics.EventsDedupTotal.WithLabelValues("miss").Inc()
		}
	}

	change := &domain.StatusChange{
		ID:            newID(),
		AppointmentID: in.AppointmentID,
		OwnerID:       in.OwnerID,
		From:          in.From,
		To:            in.To,
		ActorID:       in.ActorID,
		ActorRole:     in.ActorRole,
		At:            in.At,
	}
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	if err := s.repo.InsertStatusChange(ctx, change); err != nil {
		metrics.EventsErrorsTotal.WithLabelValues("audit_failed").Inc()
		metrics.EventProcessingDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("process status change: %w", err)
	}

	// marked only once the audit row exists, so a failed insert can be retried
	if s.dedup != nil {
		if err := s.dedup.Mark(ctx, in.AppointmentID, in.To); err != nil {
			s.log.Warn().Err(err).Str("appointment_id", in.AppointmentID).Msg("failed to set dedup key")
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishStatusChange(ctx, change); err != nil {
			metrics.EventsErrorsTotal.WithLabelValues("publish_failed").Inc()
			s.log.Warn().Err(err).Str("appointment_id", in.AppointmentID).Msg("failed to publish status change")
		}
	}

	metrics.EventsProcessedTotal.WithLabelValues(string(in.To), string(in.ActorRole)).Inc()
	metrics.EventProcessingDuration.WithLabelValues(string(in.To)).Observe(time.Since(start).Seconds())

	s.log.Info().
		Str("appointment_id", in.AppointmentID).
		Str("from", string(in.From)).
		Str("to", string(in.To)).
		Str("actor_role", string(in.ActorRole)).
		Msg("status change recorded")

	return nil
}
