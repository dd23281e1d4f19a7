package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

const (
	recordKeyPrefix = "barbershop:records:"
	maxCASRetries   = 10
)

var emptyCollection = []byte("[]")

// RecordStore keeps each collection as a single Redis string and makes
// Mutate atomic with WATCH/MULTI.
type RecordStore struct {
	client *redis.Client
}

func NewRecordStore(client *redis.Client) *RecordStore {
	return &RecordStore{client: client}
}

func (s *RecordStore) Read(ctx context.Context, kind ports.RecordKind) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		if err := s.client.SetNX(ctx, s.key(kind), emptyCollection, 0).Err(); err != nil {
			return nil, fmt.Errorf("redis store: init %s: %w", kind, err)
		}
		return s.client.Get(ctx, s.key(kind)).Bytes()
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: read %s: %w", kind, err)
	}
	return data, nil
}

func (s *RecordStore) Write(ctx context.Context, kind ports.RecordKind, data []byte) error {
	if err := s.client.Set(ctx, s.key(kind), data, 0).Err(); err != nil {
		return fmt.Errorf("redis store: write %s: %w", kind, err)
	}
	return nil
}

func (s *RecordStore) Mutate(ctx context.Context, kind ports.RecordKind, fn ports.MutateFunc) error {
	key := s.key(kind)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			current = emptyCollection
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxCASRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis store: mutate %s: %w", kind, domain.ErrStoreConflict)
}

func (s *RecordStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RecordStore) key(kind ports.RecordKind) string {
	return recordKeyPrefix + string(kind)
}
