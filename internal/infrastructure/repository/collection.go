// Package repository provides typed repositories over a ports.RecordStore.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/api/metrics"
	"github.com/zetas/barbershop/internal/core/ports"
)

// collection decodes a whole JSON array of T. Unreadable data degrades to an
// empty collection; the failure is logged and counted.
type collection[T any] struct {
	store ports.RecordStore
	kind  ports.RecordKind
	log   zerolog.Logger
}

func (c collection[T]) list(ctx context.Context) ([]T, error) {
	data, err := c.store.Read(ctx, c.kind)
	if err != nil {
		c.degraded(err, "read")
		return []T{}, nil
	}
	return c.decode(data), nil
}

func (c collection[T]) mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	start := time.Now()
	defer func() {
		metrics.StoreMutationDuration.WithLabelValues(string(c.kind)).Observe(time.Since(start).Seconds())
	}()

	return c.store.Mutate(ctx, c.kind, func(current []byte) ([]byte, error) {
		next, err := fn(c.decode(current))
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(next, "", "  ")
	})
}

func (c collection[T]) decode(data []byte) []T {
	items := []T{}
	if len(data) == 0 {
		return items
	}
	if err := json.Unmarshal(data, &items); err != nil {
		c.degraded(err, "decode")
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func (c collection[T]) degraded(err error, op string) {
	metrics.StoreDecodeFailuresTotal.WithLabelValues(string(c.kind)).Inc()
	c.log.Warn().Err(err).
		Str("kind", string(c.kind)).
		Str("op", op).
		Msg("collection unreadable, treating as empty")
}
