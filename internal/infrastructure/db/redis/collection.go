package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	keyUsers        = "app_users"
	keyAppointments = "app_appointments"
	keyEventsPrefix = "app_appointment_events:"

	maxWatchRetries = 10
)

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// loadCollection reads a JSON array stored under key. A missing key is an
// empty collection.
func loadCollection[T any](ctx context.Context, c getter, key string) ([]T, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// updateCollection runs a read-modify-write of the array under key inside
// WATCH/MULTI and retries when another writer touched the key. fn returns
// the new contents; an error from fn aborts without writing.
func updateCollection[T any](ctx context.Context, client *redis.Client, key string, fn func([]T) ([]T, error)) error {
	txf := func(tx *redis.Tx) error {
		items, err := loadCollection[T](ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(items)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: %w", key, redis.TxFailedErr)
}
