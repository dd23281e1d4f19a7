package ports

import (
	"context"
	"time"

	"github.com/zetas/barbershop/internal/core/domain"
)

// AppointmentFetcher returns the current appointment collection.
type AppointmentFetcher interface {
	Fetch(ctx context.Context) ([]domain.Appointment, error)
}

// NotifiedSet remembers which appointments already produced a reminder.
type NotifiedSet interface {
	// MarkIfNew records id and reports whether it was not yet present.
	MarkIfNew(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

// Notifier delivers a reminder to the operator.
type Notifier interface {
	Notify(ctx context.Context, r domain.Reminder) error
}
