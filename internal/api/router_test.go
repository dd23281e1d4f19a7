package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/api/handler"
	"github.com/zetas/barbershop/internal/core/schedule"
	"github.com/zetas/barbershop/internal/core/service"
	"github.com/zetas/barbershop/internal/infrastructure/db/filestore"
	"github.com/zetas/barbershop/internal/infrastructure/repository"
	"github.com/zetas/barbershop/internal/infrastructure/sms"
	"github.com/zetas/barbershop/internal/infrastructure/uploads"
)

// Monday 2025-01-06 08:00 UTC; the shop is closed on Sundays and Mondays.
var routerNow = time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	store := filestore.New(t.TempDir())

	policy := func(step time.Duration) schedule.Policy {
		return schedule.Policy{
			ClosedDays: []time.Weekday{time.Sunday, time.Monday},
			Windows:    []schedule.Window{{Start: 9 * 60, End: 12*60 + 30}, {Start: 15 * 60, End: 20*60 + 30}},
			Step:       step,
			Location:   time.UTC,
		}
	}
	appointments := service.NewAppointmentService(repository.NewAppointmentRepository(store, log), service.AppointmentConfig{
		Public:   policy(30 * time.Minute),
		Admin:    policy(15 * time.Minute),
		Duration: 30 * time.Minute,
		Now:      func() time.Time { return routerNow },
	}, log)

	images, err := uploads.New(t.TempDir(), "uploads/services")
	if err != nil {
		t.Fatalf("uploads: %v", err)
	}
	catalog := service.NewCatalogService(repository.NewServiceRepository(store, log), images, nil, log)
	auth := service.NewAuthService(service.AdminCredentials{Password: "s3cret"}, "test-secret", time.Hour)

	e := NewRouter(Deps{
		Appointments:     appointments,
		Catalog:          catalog,
		Auth:             auth,
		Sessions:         auth,
		SMS:              sms.NewTwilioGateway("", "", "", "", log),
		Checks:           map[string]handler.DependencyCheck{"store": store.Ping},
		UploadsURLPrefix: images.URLPrefix(),
		UploadsDir:       images.Root(),
		BodyLimit:        "12M",
		Logger:           log,
		Registerer:       prometheus.NewRegistry(),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

func (s *testServer) do(method, path, token, body string) (int, map[string]any) {
	s.t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, s.URL+path, strings.NewReader(body))
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client().Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (s *testServer) login() string {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/admin/login", "", `{"password":"s3cret"}`)
	if code != http.StatusOK {
		s.t.Fatalf("login: expected 200, got %d %v", code, body)
	}
	return body["token"].(string)
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestRouter_AdminRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodDelete, "/api/appointments/a1", "", "")
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if body["error"] == nil {
		t.Fatalf("expected error envelope, got %v", body)
	}

	code, _ = s.do(http.MethodPost, "/api/sms", "forged", `{"to":"+1","message":"x"}`)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", code)
	}
}

func TestRouter_LoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(http.MethodPost, "/api/admin/login", "", `{"password":"nope"}`)
	if code != http.StatusUnauthorized || body["error"] != "invalid credentials" {
		t.Fatalf("unexpected response: %d %v", code, body)
	}
}

// ---------------------------------------------------------------------------
// Appointments
// ---------------------------------------------------------------------------

func TestRouter_AppointmentLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	code, created := s.do(http.MethodPost, "/api/appointments", "", `{"clientName":"Ana","date":"2025-01-07","startTime":"10:10","status":"confirmed"}`)
	if code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %v", code, created)
	}
	if created["status"] != "pending" || created["endTime"] != "10:40" {
		t.Fatalf("unexpected record: %v", created)
	}
	id := created["id"].(string)

	code, updated := s.do(http.MethodPatch, "/api/appointments/"+id, token, `{"status":"confirmed","notes":"beard"}`)
	if code != http.StatusOK || updated["status"] != "confirmed" || updated["clientName"] != "Ana" {
		t.Fatalf("update: unexpected response %d %v", code, updated)
	}

	code, body := s.do(http.MethodPatch, "/api/appointments/ghost", token, `{"notes":"x"}`)
	if code != http.StatusNotFound || body["error"] != "appointment not found" {
		t.Fatalf("expected 404 envelope, got %d %v", code, body)
	}

	for i := 0; i < 2; i++ {
		code, body = s.do(http.MethodDelete, "/api/appointments/"+id, token, "")
		if code != http.StatusOK || body["success"] != true {
			t.Fatalf("delete #%d: unexpected response %d %v", i+1, code, body)
		}
	}
}

func TestRouter_BookingConflicts(t *testing.T) {
	s := newTestServer(t)
	booking := `{"clientName":"Ana","clientPhone":"+1555","date":"2025-01-07","startTime":"10:00"}`

	if code, body := s.do(http.MethodPost, "/api/bookings", "", booking); code != http.StatusCreated {
		t.Fatalf("first booking: expected 201, got %d %v", code, body)
	}
	if code, _ := s.do(http.MethodPost, "/api/bookings", "", booking); code != http.StatusConflict {
		t.Fatalf("second booking: expected 409, got %d", code)
	}

	closed := `{"clientName":"Ana","clientPhone":"+1555","date":"2025-01-12","startTime":"10:00"}`
	if code, _ := s.do(http.MethodPost, "/api/bookings", "", closed); code != http.StatusConflict {
		t.Fatalf("sunday booking: expected 409, got %d", code)
	}
}

func TestRouter_Availability(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, s.URL+"/api/availability?from=2025-01-07&days=1", nil)
	resp, err := s.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var days []schedule.Day
	if err := json.NewDecoder(resp.Body).Decode(&days); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(days) != 1 || days[0].Closed || len(days[0].Slots) != 20 {
		t.Fatalf("unexpected grid: %+v", days)
	}
}

// ---------------------------------------------------------------------------
// Services, SMS and health
// ---------------------------------------------------------------------------

func TestRouter_ServiceImageIsServed(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	code, created := s.do(http.MethodPost, "/api/services", token, `{"name":"Fade","img":"data:image/png;base64,iVBORw0KGgo="}`)
	if code != http.StatusCreated {
		t.Fatalf("create service: expected 201, got %d %v", code, created)
	}
	img, _ := created["img"].(string)
	if !strings.HasPrefix(img, "/uploads/services/svc-") {
		t.Fatalf("expected managed image path, got %q", img)
	}

	resp, err := s.Client().Get(s.URL + img)
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected image to be served, got %d", resp.StatusCode)
	}

	code, updated := s.do(http.MethodPatch, "/api/services/"+created["id"].(string), token, `{"img":null}`)
	if code != http.StatusOK || updated["img"] != nil {
		t.Fatalf("expected img cleared, got %d %v", code, updated)
	}
}

func TestRouter_SMSNotConfigured(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(http.MethodPost, "/api/sms", s.login(), `{"to":"+1555","message":"hi"}`)
	if code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d %v", code, body)
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	if code, body := s.do(http.MethodGet, "/health/ready", "", ""); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected readiness: %d %v", code, body)
	}
}
