// Package storage opens the repositories selected by STORAGE_DRIVER.
package storage

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/estetica/salon-booking/internal/core/ports"
	"github.com/estetica/salon-booking/internal/infrastructure/db/memory"
	"github.com/estetica/salon-booking/internal/infrastructure/db/mongo"
	"github.com/estetica/salon-booking/internal/infrastructure/db/postgres"
	"github.com/estetica/salon-booking/internal/infrastructure/db/redis"
	"github.com/estetica/salon-booking/internal/pkg/config"
)

// Pinger is implemented by every backend that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend bundles the repositories of one storage driver.
type Backend struct {
	Driver       string
	Users        ports.UserRepository
	Appointments ports.AppointmentRepository
	Events       ports.EventRepository
	Dedup        ports.DedupChecker
	// Pingers maps a dependency name to its readiness check.
	Pingers map[string]Pinger

	closers []func(context.Context) error
}

// Close releases every connection opened by Open, in reverse order.
func (b *Backend) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// OpenMemory returns the in-process backend.
func OpenMemory() *Backend {
	return &Backend{
		Driver:       config.DriverMemory,
		Users:        memory.NewUserRepository(),
		Appointments: memory.NewAppointmentRepository(),
		Events:       memory.NewEventRepository(),
		Dedup:        memory.NewDedupChecker(),
		Pingers:      map[string]Pinger{},
	}
}

// Open connects the configured driver. On error every connection opened so
// far is closed again.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *Backend, err error) {
	b := OpenMemory()
	b.Driver = cfg.StorageDriver
	defer func() {
		if err != nil {
			_ = b.Close(ctx)
		}
	}()

	var rdb *goredis.Client
	if cfg.StorageDriver == config.DriverRedis || cfg.DedupDriver == config.DriverRedis {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { return rdb.Close() })
		b.Pingers["redis"] = redis.Pinger{Client: rdb}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}

	switch cfg.StorageDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Disconnect)
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		b.Users = mongo.NewUserRepository(db)
		b.Appointments = mongo.NewAppointmentRepository(db)
		b.Events = mongo.NewEventRepository(db)
		b.Pingers["mongo"] = mongo.Pinger{Client: client}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { pool.Close(); return nil })
		if err := postgres.Migrate(ctx, pool); err != nil {
			return nil, err
		}
		b.Users = postgres.NewUserRepository(pool)
		b.Appointments = postgres.NewAppointmentRepository(pool)
		b.Events = postgres.NewEventRepository(pool)
		b.Pingers["postgres"] = pool
		log.Info().Msg("connected to postgres")

	case config.DriverRedis:
		b.Users = redis.NewUserRepository(rdb)
		b.Appointments = redis.NewAppointmentRepository(rdb)
		b.Events = redis.NewEventRepository(rdb)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.DedupDriver == config.DriverRedis {
		b.Dedup = redis.NewDedupChecker(rdb, cfg.Redis.DedupTTL)
	}

	return b, nil
}
