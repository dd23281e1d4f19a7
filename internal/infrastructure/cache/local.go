// Package cache keeps the desk's copy of the appointment collection on local
// disk.
package cache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/infrastructure/db/filestore"
	"github.com/zetas/barbershop/internal/infrastructure/repository"
)

// Local is a ports.LocalCache backed by a JSON file in dir.
type Local struct {
	repo *repository.AppointmentRepository
}

func NewLocal(dir string, logger zerolog.Logger) *Local {
	return &Local{repo: repository.NewAppointmentRepository(filestore.New(dir), logger)}
}

func (l *Local) Load(ctx context.Context) ([]domain.Appointment, error) {
	return l.repo.List(ctx)
}

func (l *Local) Save(ctx context.Context, appts []domain.Appointment) error {
	return l.repo.Replace(ctx, appts)
}
