package ports

import (
	"context"

	"github.com/zetas/barbershop/internal/core/domain"
)

// RemoteStore is the authoritative appointment collection reached over the
// network.
type RemoteStore interface {
	List(ctx context.Context) ([]domain.Appointment, error)
	Create(ctx context.Context, draft domain.Appointment) (*domain.Appointment, error)
	Update(ctx context.Context, id string, patch AppointmentPatch) (*domain.Appointment, error)
	Delete(ctx context.Context, id string) error
}

// LocalCache keeps the last known appointment collection on this machine.
type LocalCache interface {
	Load(ctx context.Context) ([]domain.Appointment, error)
	Save(ctx context.Context, appts []domain.Appointment) error
}
