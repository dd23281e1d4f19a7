package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

type ServiceRepository struct {
	items collection[domain.Service]
}

func NewServiceRepository(store ports.RecordStore, log zerolog.Logger) *ServiceRepository {
	return &ServiceRepository{items: collection[domain.Service]{
		store: store,
		kind:  ports.KindServices,
		log:   log,
	}}
}

func (r *ServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	return r.items.list(ctx)
}

func (r *ServiceRepository) Insert(ctx context.Context, s domain.Service) error {
	return r.items.mutate(ctx, func(items []domain.Service) ([]domain.Service, error) {
		return append(items, s), nil
	})
}

func (r *ServiceRepository) Update(ctx context.Context, id string, fn func(domain.Service) (domain.Service, error)) (*domain.Service, error) {
	var updated domain.Service
	err := r.items.mutate(ctx, func(items []domain.Service) ([]domain.Service, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			next, err := fn(items[i])
			if err != nil {
				return nil, err
			}
			next.ID = id
			items[i] = next
			updated = next
			return items, nil
		}
		return nil, domain.ErrServiceNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id string) (*domain.Service, error) {
	var removed *domain.Service
	err := r.items.mutate(ctx, func(items []domain.Service) ([]domain.Service, error) {
		removed = nil
		out := items[:0]
		for _, s := range items {
			if s.ID == id {
				s := s
				removed = &s
				continue
			}
			out = append(out, s)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
