// Package notify delivers appointment reminders to the desk operator and,
// optionally, to the client.
package notify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/api/metrics"
	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

// Message renders the human-readable reminder text.
func Message(r domain.Reminder) string {
	a := r.Appointment
	var when string
	switch {
	case r.MinutesUntil > 0:
		when = fmt.Sprintf("in %d min", r.MinutesUntil)
	case r.MinutesUntil == 0:
		when = "now"
	default:
		when = fmt.Sprintf("%d min ago", -r.MinutesUntil)
	}
	return fmt.Sprintf("%s %s (%s) starts %s", a.StartTime, a.ClientName, a.Service, when)
}

// LogNotifier writes each reminder as a structured log line.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, r domain.Reminder) error {
	n.logger.Info().
		Str("appointment_id", r.Appointment.ID).
		Str("client", r.Appointment.ClientName).
		Str("date", r.Appointment.Date).
		Str("start_time", r.Appointment.StartTime).
		Int("minutes_until", r.MinutesUntil).
		Msg(Message(r))
	metrics.RemindersSentTotal.WithLabelValues("log").Inc()
	return nil
}

// BellNotifier prints the reminder to a terminal together with the BEL
// character, which most terminals turn into an audible cue.
type BellNotifier struct {
	out io.Writer
}

func NewBellNotifier(out io.Writer) *BellNotifier {
	return &BellNotifier{out: out}
}

func (n *BellNotifier) Notify(_ context.Context, r domain.Reminder) error {
	if _, err := fmt.Fprintf(n.out, "\a>> %s\n", Message(r)); err != nil {
		return err
	}
	metrics.RemindersSentTotal.WithLabelValues("bell").Inc()
	return nil
}

// SMSNotifier texts the client through the SMS gateway.
type SMSNotifier struct {
	gateway ports.SMSGateway
}

func NewSMSNotifier(gateway ports.SMSGateway) *SMSNotifier {
	return &SMSNotifier{gateway: gateway}
}

func (n *SMSNotifier) Notify(ctx context.Context, r domain.Reminder) error {
	phone := strings.TrimSpace(r.Appointment.ClientPhone)
	if phone == "" || !n.gateway.Configured() {
		return nil
	}
	body := fmt.Sprintf("Reminder: your %s appointment is at %s today.", r.Appointment.Service, r.Appointment.StartTime)
	if _, err := n.gateway.Send(ctx, phone, body); err != nil {
		return fmt.Errorf("sms reminder: %w", err)
	}
	metrics.RemindersSentTotal.WithLabelValues("sms").Inc()
	return nil
}
