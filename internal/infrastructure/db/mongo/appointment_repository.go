package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

type AppointmentRepository struct {
	col *mongo.Collection
}

var _ ports.AppointmentRepository = (*AppointmentRepository)(nil)

func NewAppointmentRepository(db *mongo.Database) *AppointmentRepository {
	return &AppointmentRepository{col: db.Collection(collectionAppointments)}
}

type mongoAppointment struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Service   string    `bson:"service"`
	Date      string    `bson:"date"`
	Time      string    `bson:"time"`
	Status    string    `bson:"status"`
	Version   int64     `bson:"version"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func appointmentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
}

func toMongoAppointment(a *domain.Appointment) mongoAppointment {
	return mongoAppointment{
		ID:        a.ID,
		UserID:    a.UserID,
		Service:   a.Service,
		Date:      a.Date,
		Time:      a.Time,
		Status:    string(a.Status),
		Version:   a.Version,
		CreatedAt: a.CreatedAt.UTC(),
		UpdatedAt: a.UpdatedAt.UTC(),
	}
}

func (m mongoAppointment) toDomain() *domain.Appointment {
	return &domain.Appointment{
		ID:        m.ID,
		UserID:    m.UserID,
		Service:   m.Service,
		Date:      m.Date,
		Time:      m.Time,
		Status:    domain.AppointmentStatus(m.Status),
		Version:   m.Version,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// Insert inserts a new appointment document.
func (r *AppointmentRepository) Insert(ctx context.Context, a *domain.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toMongoAppointment(a)); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoAppointment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return m.toDomain(), nil
}

// List returns the matching appointments sorted by _id.
func (r *AppointmentRepository) List(ctx context.Context, filter ports.AppointmentFilter) ([]*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAppointment
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}

	out := make([]*domain.Appointment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// UpdateStatus is a compare-and-set on (_id, version).
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.AppointmentStatus, at time.Time) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{"status": string(status), "updated_at": at.UTC()},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m mongoAppointment
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&m)
	if err == nil {
		return m.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	// no match: either the id is unknown or the version moved on
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrAppointmentNotFound
	}
	return nil, domain.ErrVersionConflict
}
