package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zetas/barbershop/internal/core/domain"
)

func reminder(minutes int, phone string) domain.Reminder {
	return domain.Reminder{
		Appointment: domain.Appointment{
			ID: "a1", ClientName: "Ana", ClientPhone: phone, Service: "Fade",
			Date: "2025-01-07", StartTime: "10:00", Status: domain.StatusConfirmed,
		},
		MinutesUntil: minutes,
		RaisedAt:     time.Date(2025, 1, 7, 9, 50, 0, 0, time.UTC),
	}
}

func TestMessage(t *testing.T) {
	cases := map[int]string{
		10: "10:00 Ana (Fade) starts in 10 min",
		0:  "10:00 Ana (Fade) starts now",
		-3: "10:00 Ana (Fade) starts 3 min ago",
	}
	for minutes, want := range cases {
		if got := Message(reminder(minutes, "")); got != want {
			t.Errorf("%d: expected %q, got %q", minutes, want, got)
		}
	}
}

func TestBellNotifier(t *testing.T) {
	var buf bytes.Buffer
	if err := NewBellNotifier(&buf).Notify(context.Background(), reminder(5, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "\a") || !strings.Contains(buf.String(), "in 5 min") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

type stubGateway struct {
	configured bool
	err        error
	to, body   string
	calls      int
}

func (g *stubGateway) Configured() bool { return g.configured }

func (g *stubGateway) Send(_ context.Context, to, message string) (string, error) {
	g.calls++
	g.to, g.body = to, message
	return "", g.err
}

func TestSMSNotifier(t *testing.T) {
	gw := &stubGateway{configured: true}
	if err := NewSMSNotifier(gw).Notify(context.Background(), reminder(10, "+15551111")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.to != "+15551111" || !strings.Contains(gw.body, "10:00") {
		t.Errorf("unexpected message: to=%s body=%s", gw.to, gw.body)
	}
}

func TestSMSNotifier_SkipsWithoutPhoneOrCredentials(t *testing.T) {
	gw := &stubGateway{configured: true}
	_ = NewSMSNotifier(gw).Notify(context.Background(), reminder(10, ""))
	unconfigured := &stubGateway{}
	_ = NewSMSNotifier(unconfigured).Notify(context.Background(), reminder(10, "+1"))
	if gw.calls != 0 || unconfigured.calls != 0 {
		t.Fatal("expected no sends")
	}
}

func TestSMSNotifier_PropagatesFailure(t *testing.T) {
	gw := &stubGateway{configured: true, err: domain.ErrSMSUpstream}
	err := NewSMSNotifier(gw).Notify(context.Background(), reminder(10, "+1"))
	if !errors.Is(err, domain.ErrSMSUpstream) {
		t.Fatalf("expected ErrSMSUpstream, got %v", err)
	}
}
