package domain

import "time"

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentStatuses lists every accepted status value.
var AppointmentStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
}

// Valid reports whether s is one of the four known statuses.
func (s AppointmentStatus) Valid() bool {
	for _, known := range AppointmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Occupying reports whether an appointment in this status blocks its slot.
func (s AppointmentStatus) Occupying() bool {
	return s == StatusPending || s == StatusConfirmed
}

// DateLayout and ClockLayout are the wire formats of Appointment.Date and
// Appointment.StartTime / EndTime.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Appointment is a single booking. JSON field names are the persisted format.
type Appointment struct {
	ID          string            `json:"id"`
	ClientName  string            `json:"clientName"`
	ClientPhone string            `json:"clientPhone"`
	Date        string            `json:"date"`
	StartTime   string            `json:"startTime"`
	EndTime     string            `json:"endTime"`
	Service     string            `json:"service"`
	Status      AppointmentStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   string            `json:"createdAt"`
}

// StartsAt resolves the appointment's date and start time as a wall-clock
// instant in loc.
func (a Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+ClockLayout, a.Date+" "+a.StartTime, loc)
}
