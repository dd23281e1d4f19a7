package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

// fakeAPI serves the subset of the booking API the client uses.
type fakeAPI struct {
	logins   int
	lastAuth string
	lastBody map[string]any
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		f.logins++
		_ = json.NewEncoder(w).Encode(domain.AdminSession{Token: "tkn", ExpiresAt: time.Now().Add(time.Hour)})
	})
	mux.HandleFunc("GET /api/appointments", func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]domain.Appointment{{ID: "a1", Status: domain.StatusPending}})
	})
	mux.HandleFunc("POST /api/appointments", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&f.lastBody)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Appointment{ID: "new", ClientName: "Ana", Status: domain.StatusConfirmed})
	})
	mux.HandleFunc("PATCH /api/appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "a1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"appointment not found"}`))
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&f.lastBody)
		_ = json.NewEncoder(w).Encode(domain.Appointment{ID: "a1", Status: domain.StatusCancelled})
	})
	mux.HandleFunc("DELETE /api/appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	return mux
}

func newTestClient(t *testing.T, password string) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", password), api
}

func TestClient_ListLogsInOnce(t *testing.T) {
	c, api := newTestClient(t, "s3cret")

	for i := 0; i < 2; i++ {
		got, err := c.List(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "a1" {
			t.Fatalf("unexpected list: %+v", got)
		}
	}
	if api.logins != 1 {
		t.Errorf("expected a single login, got %d", api.logins)
	}
	if api.lastAuth != "Bearer tkn" {
		t.Errorf("unexpected auth header: %q", api.lastAuth)
	}
}

func TestClient_AnonymousSendsNoToken(t *testing.T) {
	c, api := newTestClient(t, "")
	if _, err := c.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.lastAuth != "" || api.logins != 0 {
		t.Errorf("expected anonymous call, got auth=%q logins=%d", api.lastAuth, api.logins)
	}
}

func TestClient_WrongPassword(t *testing.T) {
	c, _ := newTestClient(t, "nope")
	if _, err := c.List(context.Background()); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestClient_CreateSendsFields(t *testing.T) {
	c, api := newTestClient(t, "s3cret")
	created, err := c.Create(context.Background(), domain.Appointment{
		ClientName: "Ana", Date: "2025-01-07", StartTime: "10:00", Status: domain.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "new" {
		t.Errorf("unexpected record: %+v", created)
	}
	if api.lastBody["clientName"] != "Ana" || api.lastBody["status"] != "confirmed" {
		t.Errorf("unexpected body: %v", api.lastBody)
	}
	if _, ok := api.lastBody["endTime"]; ok {
		t.Error("empty endTime must be omitted")
	}
}

func TestClient_UpdateAndNotFound(t *testing.T) {
	c, api := newTestClient(t, "s3cret")
	status := "cancelled"

	got, err := c.Update(context.Background(), "a1", ports.AppointmentPatch{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.StatusCancelled || len(api.lastBody) != 1 {
		t.Errorf("unexpected result: %+v body=%v", got, api.lastBody)
	}

	_, err = c.Update(context.Background(), "ghost", ports.AppointmentPatch{Status: &status})
	if !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "appointment not found" {
		t.Errorf("unexpected status error: %v", err)
	}
}

func TestClient_Delete(t *testing.T) {
	c, _ := newTestClient(t, "s3cret")
	if err := c.Delete(context.Background(), "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", "")
	if _, err := c.List(context.Background()); err == nil {
		t.Fatal("expected transport error")
	}
}
