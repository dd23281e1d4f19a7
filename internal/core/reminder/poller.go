// Package reminder raises a one-time reminder for appointments that are about
// to start.
package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

type Config struct {
	// Interval between polls. Defaults to 30s.
	Interval time.Duration
	// Lead is how far ahead of the start time a reminder may fire. Defaults to 15m.
	Lead time.Duration
	// Grace is how long after the start time a reminder may still fire. Defaults to 5m.
	Grace time.Duration
	// NotifiedTTL bounds how long a persistent notified set remembers an id.
	NotifiedTTL time.Duration
	Location    *time.Location
}

// Poller refetches the collection on every tick and notifies once per
// appointment id.
type Poller struct {
	fetcher   ports.AppointmentFetcher
	notified  ports.NotifiedSet
	notifiers []ports.Notifier
	cfg       Config
	now       func() time.Time
	logger    zerolog.Logger
}

func NewPoller(fetcher ports.AppointmentFetcher, notified ports.NotifiedSet, notifiers []ports.Notifier, cfg Config, logger zerolog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Lead <= 0 {
		cfg.Lead = 15 * time.Minute
	}
	if cfg.Grace <= 0 {
		cfg.Grace = 5 * time.Minute
	}
	if cfg.NotifiedTTL <= 0 {
		cfg.NotifiedTTL = 24 * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if notified == nil {
		notified = NewMemorySet()
	}
	return &Poller{
		fetcher:   fetcher,
		notified:  notified,
		notifiers: notifiers,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// Run polls immediately and then on every interval until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs a single poll and returns the reminders it raised.
func (p *Poller) Tick(ctx context.Context) []domain.Reminder {
	appts, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("reminder poll failed")
		return nil
	}

	now := p.now()
	var raised []domain.Reminder
	for _, a := range appts {
		minutes, ok := p.due(a, now)
		if !ok {
			continue
		}
		fresh, err := p.notified.MarkIfNew(ctx, a.ID, p.cfg.NotifiedTTL)
		if err != nil {
			p.logger.Warn().Err(err).Str("appointment_id", a.ID).Msg("notified set unavailable")
			continue
		}
		if !fresh {
			continue
		}

		r := domain.Reminder{Appointment: a, MinutesUntil: minutes, RaisedAt: now}
		for _, n := range p.notifiers {
			if err := n.Notify(ctx, r); err != nil {
				p.logger.Warn().Err(err).Str("appointment_id", a.ID).Msg("reminder delivery failed")
			}
		}
		raised = append(raised, r)
	}
	return raised
}

// due reports whether a falls inside the reminder window and how many whole
// minutes remain until it starts (negative once started).
func (p *Poller) due(a domain.Appointment, now time.Time) (int, bool) {
	if !a.Status.Occupying() {
		return 0, false
	}
	start, err := a.StartsAt(p.cfg.Location)
	if err != nil {
		return 0, false
	}
	until := start.Sub(now)
	if until > p.cfg.Lead || until < -p.cfg.Grace {
		return 0, false
	}
	return int(until.Round(time.Minute) / time.Minute), true
}

// MemorySet is a notified set that lives as long as the process.
type MemorySet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewMemorySet() *MemorySet {
	return &MemorySet{ids: make(map[string]struct{})}
}

func (s *MemorySet) MarkIfNew(_ context.Context, id string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.ids[id]; seen {
		return false, nil
	}
	s.ids[id] = struct{}{}
	return true, nil
}
