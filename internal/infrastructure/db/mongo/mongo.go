// Package mongo stores users, appointments and the status audit trail in
// MongoDB. Documents use the application's string ids as _id; ids are
// time ordered, so sorting on _id gives insertion order.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers        = "app_users"
	collectionAppointments = "app_appointments"
	collectionEvents       = "appointment_events"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Pinger reports MongoDB reachability for the readiness probe.
type Pinger struct {
	Client *mongo.Client
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the indexes every repository relies on. The unique
// email index is what makes concurrent registrations safe.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := db.Collection(collectionUsers).Indexes().CreateOne(ctx, userIndexes()); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	if _, err := db.Collection(collectionAppointments).Indexes().CreateMany(ctx, appointmentIndexes()); err != nil {
		return fmt.Errorf("ensure appointment indexes: %w", err)
	}
	if _, err := db.Collection(collectionEvents).Indexes().CreateOne(ctx, eventIndexes()); err != nil {
		return fmt.Errorf("ensure event indexes: %w", err)
	}
	return nil
}
