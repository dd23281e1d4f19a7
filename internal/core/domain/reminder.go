package domain

import "time"

// Reminder is raised once for an appointment that is about to start.
type Reminder struct {
	Appointment  Appointment
	MinutesUntil int
	RaisedAt     time.Time
}
