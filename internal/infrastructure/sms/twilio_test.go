package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/core/domain"
)

func TestTwilioGateway_Send(t *testing.T) {
	var gotPath, gotUser, gotPass, gotTo, gotFrom, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		_ = r.ParseForm()
		gotTo, gotFrom, gotBody = r.PostForm.Get("To"), r.PostForm.Get("From"), r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	gw := NewTwilioGateway("AC123", "tok", "+15550000", srv.URL, zerolog.Nop())
	details, err := gw.Send(context.Background(), "+15551111", "see you at 10:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details != `{"sid":"SM1"}` {
		t.Errorf("unexpected details: %s", details)
	}
	if gotPath != "/2010-04-01/Accounts/AC123/Messages.json" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotUser != "AC123" || gotPass != "tok" {
		t.Errorf("unexpected basic auth: %s:%s", gotUser, gotPass)
	}
	if gotTo != "+15551111" || gotFrom != "+15550000" || gotBody != "see you at 10:00" {
		t.Errorf("unexpected form: to=%s from=%s body=%s", gotTo, gotFrom, gotBody)
	}
}

func TestTwilioGateway_NotConfigured(t *testing.T) {
	gw := NewTwilioGateway("AC123", "", "+15550000", "", zerolog.Nop())
	if gw.Configured() {
		t.Fatal("expected unconfigured gateway")
	}
	if _, err := gw.Send(context.Background(), "+1", "x"); !errors.Is(err, domain.ErrSMSNotConfigured) {
		t.Fatalf("expected ErrSMSNotConfigured, got %v", err)
	}
}

func TestTwilioGateway_Upstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211}`))
	}))
	defer srv.Close()

	gw := NewTwilioGateway("AC123", "tok", "+15550000", srv.URL, zerolog.Nop())
	_, err := gw.Send(context.Background(), "bogus", "x")
	if !errors.Is(err, domain.ErrSMSUpstream) {
		t.Fatalf("expected ErrSMSUpstream, got %v", err)
	}
	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %T", err)
	}
	if upstream.StatusCode != http.StatusBadRequest || upstream.Details != `{"code":21211}` {
		t.Errorf("unexpected upstream error: %+v", upstream)
	}
}
