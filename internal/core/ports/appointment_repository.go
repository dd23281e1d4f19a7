package ports

import (
	"context"

	"github.com/zetas/barbershop/internal/core/domain"
)

// AppointmentGuard inspects the current collection before an insert and may
// veto it by returning an error.
type AppointmentGuard func(existing []domain.Appointment) error

// AppointmentRepository defines persistence operations for appointments.
type AppointmentRepository interface {
	// List returns every appointment in insertion order.
	List(ctx context.Context) ([]domain.Appointment, error)
	// Insert appends a to the collection. guard may be nil.
	Insert(ctx context.Context, a domain.Appointment, guard AppointmentGuard) error
	// Update applies fn to the record with the given id and persists the
	// result. Returns domain.ErrAppointmentNotFound when absent.
	Update(ctx context.Context, id string, fn func(*domain.Appointment) error) (*domain.Appointment, error)
	// Delete removes the record if present. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
}
