// Package reconcile keeps a local appointment cache consistent with the
// remote collection. A successful remote call always wins; when the remote
// call fails the cache answers instead, so the desk keeps working offline.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/api/metrics"
	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
	"github.com/zetas/barbershop/internal/core/schedule"
)

// LocalIDPrefix marks records created while the remote was unreachable.
const LocalIDPrefix = "local-"

const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Client is the two-tier appointment store used by the desk CLI.
type Client struct {
	remote   ports.RemoteStore
	cache    ports.LocalCache
	duration time.Duration
	now      func() time.Time
	logger   zerolog.Logger

	// mu orders cache read-modify-write cycles issued by this client.
	mu sync.Mutex
}

// New builds a client. duration is used to fill endTime on local-only
// creates and defaults to 30 minutes.
func New(remote ports.RemoteStore, cache ports.LocalCache, duration time.Duration, logger zerolog.Logger) *Client {
	if duration <= 0 {
		duration = 30 * time.Minute
	}
	return &Client{remote: remote, cache: cache, duration: duration, now: time.Now, logger: logger}
}

// Fetch returns the remote collection and overwrites the cache with it. When
// the remote is unreachable the cached collection is returned unchanged.
func (c *Client) Fetch(ctx context.Context) ([]domain.Appointment, error) {
	appts, err := c.remote.List(ctx)
	if err != nil {
		c.fallback("fetch", err)
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.load(ctx), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.save(ctx, appts)
	return appts, nil
}

// Create books remotely, or appends a local-only record when the remote call
// fails. The returned record is the one the cache now holds.
func (c *Client) Create(ctx context.Context, draft domain.Appointment) (*domain.Appointment, error) {
	created, err := c.remote.Create(ctx, draft)
	if err == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.save(ctx, upsert(c.load(ctx), *created))
		return created, nil
	}
	if !fallsBack(err) {
		return nil, err
	}
	c.fallback("create", err)

	local := draft
	local.ID = LocalIDPrefix + uuid.NewString()
	local.CreatedAt = c.now().UTC().Format(createdAtLayout)
	if local.Status == "" {
		local.Status = domain.StatusPending
	}
	if local.EndTime == "" && local.StartTime != "" {
		if end, endErr := schedule.EndTime(local.StartTime, c.duration); endErr == nil {
			local.EndTime = end
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.save(ctx, upsert(c.load(ctx), local))
	return &local, nil
}

// Update patches remotely and mirrors the result into the cache. On failure
// the patch is applied to the cached record directly.
func (c *Client) Update(ctx context.Context, id string, patch ports.AppointmentPatch) (*domain.Appointment, error) {
	if patch.Status != nil && !domain.AppointmentStatus(*patch.Status).Valid() {
		return nil, domain.ErrInvalidStatus
	}
	updated, err := c.remote.Update(ctx, id, patch)
	if err == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.save(ctx, upsert(c.load(ctx), *updated))
		return updated, nil
	}
	if !fallsBack(err) {
		return nil, err
	}
	c.fallback("update", err)

	c.mu.Lock()
	defer c.mu.Unlock()
	appts := c.load(ctx)
	i := indexOf(appts, id)
	if i < 0 {
		return nil, domain.ErrAppointmentNotFound
	}
	patch.ApplyTo(&appts[i])
	c.save(ctx, appts)
	out := appts[i]
	return &out, nil
}

// Delete removes the record remotely and locally. The local removal happens
// whether or not the remote call succeeded.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.remote.Delete(ctx, id); err != nil {
		if !fallsBack(err) {
			return err
		}
		c.fallback("delete", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	appts := c.load(ctx)
	if i := indexOf(appts, id); i >= 0 {
		c.save(ctx, append(appts[:i], appts[i+1:]...))
	}
	return nil
}

// ChangeStatus applies the new status to the cache first, then confirms it
// remotely. A failed confirmation restores the previous status and returns
// ErrStatusChangeFailed.
func (c *Client) ChangeStatus(ctx context.Context, id string, status domain.AppointmentStatus) (*domain.Appointment, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	c.mu.Lock()
	appts := c.load(ctx)
	i := indexOf(appts, id)
	if i < 0 {
		c.mu.Unlock()
		return nil, domain.ErrAppointmentNotFound
	}
	previous := appts[i].Status
	appts[i].Status = status
	c.save(ctx, appts)
	c.mu.Unlock()

	s := string(status)
	updated, err := c.remote.Update(ctx, id, ports.AppointmentPatch{Status: &s})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		metrics.CacheFallbackTotal.WithLabelValues("status").Inc()
		c.logger.Warn().Err(err).Str("appointment_id", id).Msg("status change rejected, reverting")
		appts = c.load(ctx)
		if j := indexOf(appts, id); j >= 0 {
			appts[j].Status = previous
			c.save(ctx, appts)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStatusChangeFailed, err)
	}
	c.save(ctx, upsert(c.load(ctx), *updated))
	return updated, nil
}

func (c *Client) load(ctx context.Context) []domain.Appointment {
	appts, err := c.cache.Load(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("local cache unreadable, using empty collection")
		return []domain.Appointment{}
	}
	return appts
}

func (c *Client) save(ctx context.Context, appts []domain.Appointment) {
	if err := c.cache.Save(ctx, appts); err != nil {
		c.logger.Warn().Err(err).Msg("local cache write failed")
	}
}

func (c *Client) fallback(op string, err error) {
	metrics.CacheFallbackTotal.WithLabelValues(op).Inc()
	c.logger.Warn().Err(err).Str("operation", op).Msg("remote unavailable, using local cache")
}

// fallsBack reports whether a failed remote call should be answered from the
// cache. Any unsuccessful response qualifies, including a 404 for a record
// that so far only exists locally. Cancellation by the caller does not.
func fallsBack(err error) bool {
	return !errors.Is(err, context.Canceled)
}

func indexOf(appts []domain.Appointment, id string) int {
	for i := range appts {
		if appts[i].ID == id {
			return i
		}
	}
	return -1
}

// upsert replaces the record with the same id or appends it.
func upsert(appts []domain.Appointment, a domain.Appointment) []domain.Appointment {
	if i := indexOf(appts, a.ID); i >= 0 {
		appts[i] = a
		return appts
	}
	return append(appts, a)
}
