// Package apiclient talks to the booking API over HTTP. It is the remote
// half of the desk's reconciliation client.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Code, e.Message)
}

// Unwrap maps well-known statuses onto domain errors.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return domain.ErrAppointmentNotFound
	case http.StatusUnprocessableEntity:
		return domain.ErrInvalidStatus
	case http.StatusUnauthorized:
		return domain.ErrInvalidCredentials
	}
	return nil
}

// Client is a ports.RemoteStore. When a password is set it logs in as admin
// before the first call and again once the session expires.
type Client struct {
	baseURL  string
	password string
	http     *http.Client
	now      func() time.Time

	mu      sync.Mutex
	session *domain.AdminSession
}

func New(baseURL, adminPassword string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		password: adminPassword,
		http:     &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

type appointmentBody struct {
	ClientName  *string `json:"clientName,omitempty"`
	ClientPhone *string `json:"clientPhone,omitempty"`
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	Service     *string `json:"service,omitempty"`
	Status      *string `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (c *Client) List(ctx context.Context) ([]domain.Appointment, error) {
	var out []domain.Appointment
	if err := c.do(ctx, http.MethodGet, "/api/appointments", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Appointment{}
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, draft domain.Appointment) (*domain.Appointment, error) {
	status := string(draft.Status)
	body := appointmentBody{
		ClientName:  &draft.ClientName,
		ClientPhone: &draft.ClientPhone,
		Date:        &draft.Date,
		StartTime:   &draft.StartTime,
		Service:     &draft.Service,
	}
	if draft.EndTime != "" {
		body.EndTime = &draft.EndTime
	}
	if status != "" {
		body.Status = &status
	}
	if draft.Notes != "" {
		body.Notes = &draft.Notes
	}

	var out domain.Appointment
	if err := c.do(ctx, http.MethodPost, "/api/appointments", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id string, patch ports.AppointmentPatch) (*domain.Appointment, error) {
	body := appointmentBody{
		ClientName:  patch.ClientName,
		ClientPhone: patch.ClientPhone,
		Date:        patch.Date,
		StartTime:   patch.StartTime,
		EndTime:     patch.EndTime,
		Service:     patch.Service,
		Status:      patch.Status,
		Notes:       patch.Notes,
	}
	var out domain.Appointment
	if err := c.do(ctx, http.MethodPatch, "/api/appointments/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/appointments/"+url.PathEscape(id), nil, nil)
}

// Login exchanges the admin password for a session token.
func (c *Client) Login(ctx context.Context) (*domain.AdminSession, error) {
	var out domain.AdminSession
	body := map[string]string{"password": c.password}
	if err := c.send(ctx, http.MethodPost, "/api/admin/login", "", body, &out); err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}
	return &out, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.password == "" {
		return "", nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && c.now().Add(time.Minute).Before(c.session.ExpiresAt) {
		return c.session.Token, nil
	}
	session, err := c.Login(ctx)
	if err != nil {
		return "", err
	}
	c.session = session
	return session.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, token, in, out)
}

func (c *Client) send(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &envelope) != nil || envelope.Error == "" {
			envelope.Error = strings.TrimSpace(string(raw))
		}
		return &StatusError{Code: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
