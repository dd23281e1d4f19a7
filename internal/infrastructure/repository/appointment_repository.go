package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

type AppointmentRepository struct {
	items collection[domain.Appointment]
}

func NewAppointmentRepository(store ports.RecordStore, log zerolog.Logger) *AppointmentRepository {
	return &AppointmentRepository{items: collection[domain.Appointment]{
		store: store,
		kind:  ports.KindAppointments,
		log:   log,
	}}
}

func (r *AppointmentRepository) List(ctx context.Context) ([]domain.Appointment, error) {
	return r.items.list(ctx)
}

func (r *AppointmentRepository) Insert(ctx context.Context, a domain.Appointment, guard ports.AppointmentGuard) error {
	return r.items.mutate(ctx, func(items []domain.Appointment) ([]domain.Appointment, error) {
		if guard != nil {
			if err := guard(items); err != nil {
				return nil, err
			}
		}
		return append(items, a), nil
	})
}

func (r *AppointmentRepository) Update(ctx context.Context, id string, fn func(*domain.Appointment) error) (*domain.Appointment, error) {
	var updated domain.Appointment
	err := r.items.mutate(ctx, func(items []domain.Appointment) ([]domain.Appointment, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if err := fn(&items[i]); err != nil {
				return nil, err
			}
			updated = items[i]
			return items, nil
		}
		return nil, domain.ErrAppointmentNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	return r.items.mutate(ctx, func(items []domain.Appointment) ([]domain.Appointment, error) {
		out := items[:0]
		for _, a := range items {
			if a.ID != id {
				out = append(out, a)
			}
		}
		return out, nil
	})
}

// Replace overwrites the whole collection.
func (r *AppointmentRepository) Replace(ctx context.Context, appts []domain.Appointment) error {
	return r.items.mutate(ctx, func([]domain.Appointment) ([]domain.Appointment, error) {
		if appts == nil {
			return []domain.Appointment{}, nil
		}
		return appts, nil
	})
}
