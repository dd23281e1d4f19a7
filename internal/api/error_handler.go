package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/schedule"
)

type errorResponse struct {
	Error string `json:"error"`
}

// errorRule maps a sentinel to a status. An empty message means the wrapped
// error text is safe to show the caller.
type errorRule struct {
	target  error
	status  int
	message string
}

var errorRules = []errorRule{
	{domain.ErrAppointmentNotFound, http.StatusNotFound, "appointment not found"},
	{domain.ErrServiceNotFound, http.StatusNotFound, "service not found"},
	{domain.ErrInvalidStatus, http.StatusUnprocessableEntity, ""},
	{domain.ErrSlotUnavailable, http.StatusConflict, "slot unavailable"},
	{domain.ErrSlotOutsideSchedule, http.StatusConflict, "slot outside opening hours"},
	{schedule.ErrInvalidDate, http.StatusUnprocessableEntity, ""},
	{schedule.ErrInvalidTime, http.StatusUnprocessableEntity, ""},
	{schedule.ErrInvalidDay, http.StatusUnprocessableEntity, ""},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{domain.ErrAdminNotConfigured, http.StatusServiceUnavailable, "admin access not configured"},
	{domain.ErrSMSNotConfigured, http.StatusNotImplemented, "sms gateway not configured; set TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER"},
	{domain.ErrSMSUpstream, http.StatusBadGateway, "sms gateway error"},
	{domain.ErrStoreConflict, http.StatusConflict, "concurrent update, please retry"},
}

// NewHTTPErrorHandler renders every error as {"error": "..."}. Known domain
// errors get their own status; anything else is logged and reported as a
// bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := statusFor(err)
		switch {
		case status == http.StatusInternalServerError:
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		case errors.Is(err, domain.ErrStoreConflict):
			log.Warn().Err(err).Str("path", c.Path()).Msg("store contention")
		}
		_ = c.JSON(status, errorResponse{Error: msg})
	}
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}
	for _, r := range errorRules {
		if !errors.Is(err, r.target) {
			continue
		}
		if r.message == "" {
			return r.status, err.Error()
		}
		return r.status, r.message
	}
	return http.StatusInternalServerError, "internal server error"
}
