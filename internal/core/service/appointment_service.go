package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/api/metrics"
	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
	"github.com/zetas/barbershop/internal/core/schedule"
)

const (
	defaultAvailabilityDays = 7
	maxAvailabilityDays     = 31
	defaultDuration         = 30 * time.Minute

	// createdAtLayout matches JavaScript's Date.toISOString.
	createdAtLayout = "2006-01-02T15:04:05.000Z07:00"
)

// AppointmentConfig carries scheduling policy for the appointment service.
type AppointmentConfig struct {
	Public   schedule.Policy
	Admin    schedule.Policy
	Duration time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type AppointmentService struct {
	repo   ports.AppointmentRepository
	cfg    AppointmentConfig
	logger zerolog.Logger
}

func NewAppointmentService(repo ports.AppointmentRepository, cfg AppointmentConfig, logger zerolog.Logger) *AppointmentService {
	if cfg.Duration <= 0 {
		cfg.Duration = defaultDuration
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AppointmentService{repo: repo, cfg: cfg, logger: logger}
}

func (s *AppointmentService) List(ctx context.Context) ([]domain.Appointment, error) {
	return s.repo.List(ctx)
}

// Create stores an appointment as given. Only admins may pick the initial
// status; endTime is derived from startTime when omitted.
func (s *AppointmentService) Create(ctx context.Context, input ports.CreateAppointmentInput) (*domain.Appointment, error) {
	status := domain.StatusPending
	if input.Admin && input.Status != "" {
		status = domain.AppointmentStatus(input.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, input.Status)
		}
	}

	endTime := input.EndTime
	if endTime == "" && input.StartTime != "" {
		computed, err := schedule.EndTime(input.StartTime, s.cfg.Duration)
		if err != nil {
			return nil, err
		}
		endTime = computed
	}

	appt := domain.Appointment{
		ID:          uuid.NewString(),
		ClientName:  input.ClientName,
		ClientPhone: input.ClientPhone,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     endTime,
		Service:     input.Service,
		Status:      status,
		Notes:       input.Notes,
		CreatedAt:   s.cfg.Now().UTC().Format(createdAtLayout),
	}

	if err := s.repo.Insert(ctx, appt, nil); err != nil {
		s.logger.Error().Err(err).Msg("failed to create appointment")
		return nil, err
	}

	metrics.AppointmentsCreatedTotal.WithLabelValues("api", string(appt.Status)).Inc()
	s.logger.Info().Str("appointment_id", appt.ID).Str("date", appt.Date).Str("start", appt.StartTime).Msg("appointment created")
	return &appt, nil
}

// Update overlays the present patch fields onto the stored record.
func (s *AppointmentService) Update(ctx context.Context, id string, patch ports.AppointmentPatch) (*domain.Appointment, error) {
	if patch.Status != nil && !domain.AppointmentStatus(*patch.Status).Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *patch.Status)
	}

	updated, err := s.repo.Update(ctx, id, func(a *domain.Appointment) error {
		patch.ApplyTo(a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("appointment_id", id).Str("status", string(updated.Status)).Msg("appointment updated")
	return updated, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("appointment_id", id).Msg("appointment deleted")
	return nil
}

// Book creates an appointment for a schedule slot. The occupancy check runs
// inside the store mutation, so two bookings for the same slot cannot both
// succeed.
func (s *AppointmentService) Book(ctx context.Context, input ports.BookSlotInput) (*domain.Appointment, error) {
	policy, status := s.cfg.Public, domain.StatusPending
	if input.Admin {
		policy, status = s.cfg.Admin, domain.StatusConfirmed
	}
	loc := policy.Loc()

	day, err := schedule.ParseDate(input.Date, loc)
	if err != nil {
		return nil, err
	}
	if !policy.IsLabel(day, input.StartTime) {
		metrics.BookingsRejectedTotal.WithLabelValues("closed").Inc()
		return nil, fmt.Errorf("%w: %s %s", domain.ErrSlotOutsideSchedule, input.Date, input.StartTime)
	}
	endTime, err := schedule.EndTime(input.StartTime, s.cfg.Duration)
	if err != nil {
		return nil, err
	}

	now := s.cfg.Now()
	appt := domain.Appointment{
		ID:          uuid.NewString(),
		ClientName:  input.ClientName,
		ClientPhone: input.ClientPhone,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     endTime,
		Service:     input.Service,
		Status:      status,
		Notes:       input.Notes,
		CreatedAt:   now.UTC().Format(createdAtLayout),
	}

	err = s.repo.Insert(ctx, appt, func(existing []domain.Appointment) error {
		state, _, err := schedule.SlotState(input.Date, input.StartTime, existing, now, loc)
		if err != nil {
			return err
		}
		switch state {
		case schedule.Past:
			metrics.BookingsRejectedTotal.WithLabelValues("past").Inc()
			return fmt.Errorf("%w: slot already started", domain.ErrSlotUnavailable)
		case schedule.Occupied:
			metrics.BookingsRejectedTotal.WithLabelValues("occupied").Inc()
			return fmt.Errorf("%w: slot already booked", domain.ErrSlotUnavailable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AppointmentsCreatedTotal.WithLabelValues("booking", string(appt.Status)).Inc()
	s.logger.Info().Str("appointment_id", appt.ID).Str("date", appt.Date).Str("start", appt.StartTime).Bool("admin", input.Admin).Msg("slot booked")
	return &appt, nil
}

// Availability renders the slot grid for the requested window.
func (s *AppointmentService) Availability(ctx context.Context, input ports.AvailabilityInput) ([]schedule.Day, error) {
	policy, view := s.cfg.Public, schedule.PublicView
	if input.Admin {
		policy, view = s.cfg.Admin, schedule.AdminView
	}
	loc := policy.Loc()
	now := s.cfg.Now()

	// Without an explicit day the grid opens on the current calendar week.
	from := schedule.WeekStart(now.In(loc), view)
	if input.From != "" {
		parsed, err := schedule.ParseDate(input.From, loc)
		if err != nil {
			return nil, err
		}
		from = parsed
	}

	days := input.Days
	if days <= 0 {
		days = defaultAvailabilityDays
	}
	if days > maxAvailabilityDays {
		days = maxAvailabilityDays
	}

	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return policy.Grid(from, days, view, appts, now)
}
