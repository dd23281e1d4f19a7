package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/schedule"
)

func renderError(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid envelope %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body.Error
}

// ---------------------------------------------------------------------------
// Status mapping
// ---------------------------------------------------------------------------

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("update: %w", domain.ErrAppointmentNotFound), http.StatusNotFound},
		{domain.ErrServiceNotFound, http.StatusNotFound},
		{domain.ErrInvalidStatus, http.StatusUnprocessableEntity},
		{domain.ErrSlotUnavailable, http.StatusConflict},
		{domain.ErrSlotOutsideSchedule, http.StatusConflict},
		{fmt.Errorf("%w: 2025-13-01", schedule.ErrInvalidDate), http.StatusUnprocessableEntity},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrAdminNotConfigured, http.StatusServiceUnavailable},
		{domain.ErrSMSNotConfigured, http.StatusNotImplemented},
		{&domain.UpstreamError{StatusCode: 400}, http.StatusBadGateway},
		{domain.ErrStoreConflict, http.StatusConflict},
	}
	for _, tc := range cases {
		if got, _ := renderError(t, tc.err); got != tc.want {
			t.Errorf("%v: got %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestHTTPErrorHandler_ValidationMessagePassesThrough(t *testing.T) {
	code, msg := renderError(t, fmt.Errorf("%w: 25:00", schedule.ErrInvalidTime))
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	if msg != fmt.Errorf("%w: 25:00", schedule.ErrInvalidTime).Error() {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestHTTPErrorHandler_EchoHTTPError(t *testing.T) {
	code, msg := renderError(t, echo.NewHTTPError(http.StatusBadRequest, "invalid payload"))
	if code != http.StatusBadRequest || msg != "invalid payload" {
		t.Fatalf("got %d %q", code, msg)
	}
}

func TestHTTPErrorHandler_UnknownErrorIsHidden(t *testing.T) {
	code, msg := renderError(t, errors.New("disk on fire"))
	if code != http.StatusInternalServerError || msg != "internal server error" {
		t.Fatalf("got %d %q", code, msg)
	}
}
