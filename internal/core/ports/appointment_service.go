package ports

import (
	"context"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/schedule"
)

// CreateAppointmentInput carries the fields accepted on create. ID and
// CreatedAt are always assigned by the service.
type CreateAppointmentInput struct {
	ClientName  string
	ClientPhone string
	Date        string
	StartTime   string
	EndTime     string
	Service     string
	Status      string
	Notes       string
	// Admin callers may choose the initial status; everyone else gets pending.
	Admin bool
}

// AppointmentPatch is a shallow partial update. Nil fields are left unchanged.
type AppointmentPatch struct {
	ClientName  *string
	ClientPhone *string
	Date        *string
	StartTime   *string
	EndTime     *string
	Service     *string
	Status      *string
	Notes       *string
}

// ApplyTo overlays the non-nil fields onto a.
func (p AppointmentPatch) ApplyTo(a *domain.Appointment) {
	if p.ClientName != nil {
		a.ClientName = *p.ClientName
	}
	if p.ClientPhone != nil {
		a.ClientPhone = *p.ClientPhone
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.StartTime != nil {
		a.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		a.EndTime = *p.EndTime
	}
	if p.Service != nil {
		a.Service = *p.Service
	}
	if p.Status != nil {
		a.Status = domain.AppointmentStatus(*p.Status)
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
}

// BookSlotInput requests a specific slot through the availability model.
type BookSlotInput struct {
	ClientName  string
	ClientPhone string
	Date        string
	StartTime   string
	Service     string
	Notes       string
	Admin       bool
}

// AvailabilityInput selects the window of days to render.
type AvailabilityInput struct {
	From  string
	Days  int
	Admin bool
}

// AppointmentService defines use-case operations for appointments.
type AppointmentService interface {
	List(ctx context.Context) ([]domain.Appointment, error)
	Create(ctx context.Context, input CreateAppointmentInput) (*domain.Appointment, error)
	Update(ctx context.Context, id string, patch AppointmentPatch) (*domain.Appointment, error)
	Delete(ctx context.Context, id string) error
	Book(ctx context.Context, input BookSlotInput) (*domain.Appointment, error)
	Availability(ctx context.Context, input AvailabilityInput) ([]schedule.Day, error)
}
