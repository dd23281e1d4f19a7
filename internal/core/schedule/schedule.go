// Package schedule derives bookable slots from the shop's opening hours and
// the existing appointments.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zetas/barbershop/internal/core/domain"
)

const minutesPerDay = 24 * 60

var (
	ErrInvalidDate   = errors.New("invalid date format")
	ErrInvalidTime   = errors.New("invalid time format")
	ErrInvalidWindow = errors.New("invalid opening window")
	ErrInvalidDay    = errors.New("invalid weekday")
	ErrInvalidStep   = errors.New("invalid slot step")
)

// View selects which calendar is asking: the public booking page or the
// admin calendar.
type View int

const (
	PublicView View = iota
	AdminView
)

type State string

const (
	Available State = "available"
	Occupied  State = "occupied"
	Past      State = "past"
)

// Action is what a click on a slot does.
type Action string

const (
	OpenBookingForm Action = "open_booking_form"
	OpenEditForm    Action = "open_edit_form"
	NoOp            Action = "none"
)

// Window is an opening interval in minutes since midnight. End is inclusive:
// a slot label equal to End is still generated.
type Window struct {
	Start int
	End   int
}

type Policy struct {
	ClosedDays []time.Weekday
	Windows    []Window
	Step       time.Duration
	Location   *time.Location
}

type Slot struct {
	Time          string `json:"time"`
	State         State  `json:"state"`
	Action        Action `json:"action"`
	AppointmentID string `json:"appointmentId,omitempty"`
}

type Day struct {
	Date   string `json:"date"`
	Closed bool   `json:"closed"`
	Slots  []Slot `json:"slots"`
}

func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(domain.DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

func ParseDateTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if _, err := ParseClockToMinutes(timeStr); err != nil {
		return time.Time{}, err
	}
	if _, err := ParseDate(dateStr, loc); err != nil {
		return time.Time{}, err
	}
	parsed, err := time.ParseInLocation(domain.DateLayout+" "+domain.ClockLayout, dateStr+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return parsed, nil
}

func ParseClockToMinutes(timeStr string) (int, error) {
	tm, err := time.Parse(domain.ClockLayout, timeStr)
	if err != nil {
		return 0, ErrInvalidTime
	}
	return tm.Hour()*60 + tm.Minute(), nil
}

func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseWindows parses "09:00-12:30,15:00-20:30".
func ParseWindows(list string) ([]Window, error) {
	var windows []Window
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWindow, part)
		}
		start, err := ParseClockToMinutes(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWindow, part)
		}
		end, err := ParseClockToMinutes(strings.TrimSpace(bounds[1]))
		if err != nil || end < start {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWindow, part)
		}
		windows = append(windows, Window{Start: start, End: end})
	}
	if len(windows) == 0 {
		return nil, ErrInvalidWindow
	}
	return windows, nil
}

// ParseWeekdays parses a comma separated list of English weekday names.
func ParseWeekdays(list string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			if strings.ToLower(d.String()) == name || strings.ToLower(d.String()[:3]) == name {
				days = append(days, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDay, part)
		}
	}
	return days, nil
}

// Open reports whether the shop works on day.
func (p Policy) Open(day time.Time) bool {
	for _, closed := range p.ClosedDays {
		if day.Weekday() == closed {
			return false
		}
	}
	return len(p.Windows) > 0
}

// Labels returns the slot start times for day in ascending order.
func (p Policy) Labels(day time.Time) []string {
	if !p.Open(day) {
		return []string{}
	}
	step := int(p.Step / time.Minute)
	if step <= 0 {
		return []string{}
	}
	labels := make([]string, 0)
	for _, w := range p.Windows {
		for cursor := w.Start; cursor <= w.End; cursor += step {
			labels = append(labels, MinutesToClock(cursor))
		}
	}
	return labels
}

// IsLabel reports whether clock is one of the generated labels for day.
func (p Policy) IsLabel(day time.Time, clock string) bool {
	for _, l := range p.Labels(day) {
		if l == clock {
			return true
		}
	}
	return false
}

// Occupant returns the pending or confirmed appointment holding exactly
// (date, clock), or nil.
func Occupant(date, clock string, appts []domain.Appointment) *domain.Appointment {
	for i := range appts {
		a := appts[i]
		if a.Date == date && a.StartTime == clock && a.Status.Occupying() {
			return &appts[i]
		}
	}
	return nil
}

// SlotState classifies a single slot. Past wins over Occupied so an elapsed
// booking never opens a form.
func SlotState(date, clock string, appts []domain.Appointment, now time.Time, loc *time.Location) (State, *domain.Appointment, error) {
	at, err := ParseDateTime(date, clock, loc)
	if err != nil {
		return "", nil, err
	}
	if at.Before(now) {
		return Past, nil, nil
	}
	if occ := Occupant(date, clock, appts); occ != nil {
		return Occupied, occ, nil
	}
	return Available, nil, nil
}

func ActionFor(view View, state State) Action {
	switch state {
	case Available:
		return OpenBookingForm
	case Occupied:
		if view == AdminView {
			return OpenEditForm
		}
	}
	return NoOp
}

// Grid renders days consecutive days starting at from.
func (p Policy) Grid(from time.Time, days int, view View, appts []domain.Appointment, now time.Time) ([]Day, error) {
	loc := p.Loc()
	out := make([]Day, 0, days)
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		date := day.Format(domain.DateLayout)
		d := Day{Date: date, Closed: !p.Open(day), Slots: []Slot{}}
		for _, label := range p.Labels(day) {
			state, occ, err := SlotState(date, label, appts, now, loc)
			if err != nil {
				return nil, err
			}
			slot := Slot{Time: label, State: state, Action: ActionFor(view, state)}
			if occ != nil && view == AdminView {
				slot.AppointmentID = occ.ID
			}
			d.Slots = append(d.Slots, slot)
		}
		out = append(out, d)
	}
	return out, nil
}

// EndTime adds d to a wall-clock start time, carrying minute overflow into
// the hour and wrapping past midnight. The date is not advanced.
func EndTime(start string, d time.Duration) (string, error) {
	startMin, err := ParseClockToMinutes(start)
	if err != nil {
		return "", err
	}
	total := startMin + int(d/time.Minute)
	return MinutesToClock(total % minutesPerDay), nil
}

// WeekStart returns the first day of the calendar week containing day.
// Public calendars start on Monday, the admin calendar on Tuesday.
func WeekStart(day time.Time, view View) time.Time {
	first := time.Monday
	if view == AdminView {
		first = time.Tuesday
	}
	offset := (int(day.Weekday()) - int(first) + 7) % 7
	d := day.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, day.Location())
}

// Loc returns the policy's location, defaulting to the local zone.
func (p Policy) Loc() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}
