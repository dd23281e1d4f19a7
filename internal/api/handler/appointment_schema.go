package handler

import (
	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
	"github.com/zetas/barbershop/internal/core/schedule"
)

type createAppointmentRequest struct {
	ClientName  string `json:"clientName"  validate:"required,max=120"`
	ClientPhone string `json:"clientPhone" validate:"max=40"`
	Date        string `json:"date"        validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime"   validate:"required,datetime=15:04"`
	EndTime     string `json:"endTime"     validate:"omitempty,datetime=15:04"`
	Service     string `json:"service"     validate:"max=120"`
	Status      string `json:"status"      validate:"omitempty,oneof=pending confirmed completed cancelled"`
	Notes       string `json:"notes"       validate:"max=2000"`
}

type updateAppointmentRequest struct {
	ClientName  *string `json:"clientName"  validate:"omitempty,max=120"`
	ClientPhone *string `json:"clientPhone" validate:"omitempty,max=40"`
	Date        *string `json:"date"        validate:"omitempty,datetime=2006-01-02"`
	StartTime   *string `json:"startTime"   validate:"omitempty,datetime=15:04"`
	EndTime     *string `json:"endTime"     validate:"omitempty,datetime=15:04"`
	Service     *string `json:"service"     validate:"omitempty,max=120"`
	Status      *string `json:"status"      validate:"omitempty,oneof=pending confirmed completed cancelled"`
	Notes       *string `json:"notes"       validate:"omitempty,max=2000"`
}

type bookSlotRequest struct {
	ClientName  string `json:"clientName"  validate:"required,max=120"`
	ClientPhone string `json:"clientPhone" validate:"required,max=40"`
	Date        string `json:"date"        validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime"   validate:"required,datetime=15:04"`
	Service     string `json:"service"     validate:"max=120"`
	Notes       string `json:"notes"       validate:"max=2000"`
}

type availabilityQuery struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	Days int    `query:"days" validate:"omitempty,min=1,max=31"`
}

func toCreateAppointmentInput(r createAppointmentRequest, admin bool) ports.CreateAppointmentInput {
	return ports.CreateAppointmentInput{
		ClientName:  r.ClientName,
		ClientPhone: r.ClientPhone,
		Date:        r.Date,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Service:     r.Service,
		Status:      r.Status,
		Notes:       r.Notes,
		Admin:       admin,
	}
}

func toAppointmentPatch(r updateAppointmentRequest) ports.AppointmentPatch {
	return ports.AppointmentPatch{
		ClientName:  r.ClientName,
		ClientPhone: r.ClientPhone,
		Date:        r.Date,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Service:     r.Service,
		Status:      r.Status,
		Notes:       r.Notes,
	}
}

// appointmentListResponse documents GET /api/appointments for swagger.
type appointmentListResponse []domain.Appointment

type availabilityResponse []schedule.Day
