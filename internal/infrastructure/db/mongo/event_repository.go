package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

var _ ports.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(collectionEvents)}
}

type mongoStatusChange struct {
	ID            string    `bson:"_id"`
	AppointmentID string    `bson:"appointment_id"`
	OwnerID       string    `bson:"owner_id"`
	From          string    `bson:"from"`
	To            string    `bson:"to"`
	ActorID       string    `bson:"actor_id"`
	ActorRole     string    `bson:"actor_role"`
	At            time.Time `bson:"at"`
	ProcessedAt   time.Time `bson:"processed_at"`
}

func eventIndexes() mongo.IndexModel {
	return mongo.IndexModel{Keys: bson.D{{Key: "appointment_id", Value: 1}, {Key: "_id", Value: 1}}}
}

// InsertStatusChange persists a status change to the audit collection.
func (r *EventRepository) InsertStatusChange(ctx context.Context, c *domain.StatusChange) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoStatusChange{
		ID:            c.ID,
		AppointmentID: c.AppointmentID,
		OwnerID:       c.OwnerID,
		From:          string(c.From),
		To:            string(c.To),
		ActorID:       c.ActorID,
		ActorRole:     string(c.ActorRole),
		At:            c.At.UTC(),
		ProcessedAt:   time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}

func (r *EventRepository) ListByAppointment(ctx context.Context, appointmentID string) ([]*domain.StatusChange, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"appointment_id": appointmentID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoStatusChange
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode status changes: %w", err)
	}

	out := make([]*domain.StatusChange, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.StatusChange{
			ID:            d.ID,
			AppointmentID: d.AppointmentID,
			OwnerID:       d.OwnerID,
			From:          domain.AppointmentStatus(d.From),
			To:            domain.AppointmentStatus(d.To),
			ActorID:       d.ActorID,
			ActorRole:     domain.Role(d.ActorRole),
			At:            d.At.UTC(),
		})
	}
	return out, nil
}
