// Package sms relays text messages through the Twilio Messages API.
package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/api/metrics"
	"github.com/zetas/barbershop/internal/core/domain"
)

const (
	defaultBaseURL = "https://api.twilio.com"
	maxDetailBytes = 64 << 10
)

// TwilioGateway posts form-encoded messages with basic auth.
type TwilioGateway struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	http       *http.Client
	logger     zerolog.Logger
}

func NewTwilioGateway(accountSID, authToken, from, baseURL string, logger zerolog.Logger) *TwilioGateway {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &TwilioGateway{
		accountSID: strings.TrimSpace(accountSID),
		authToken:  strings.TrimSpace(authToken),
		from:       strings.TrimSpace(from),
		baseURL:    baseURL,
		http:       &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Configured reports whether all three credentials are set.
func (g *TwilioGateway) Configured() bool {
	return g.accountSID != "" && g.authToken != "" && g.from != ""
}

func (g *TwilioGateway) Send(ctx context.Context, to, message string) (string, error) {
	if !g.Configured() {
		metrics.SMSRelayTotal.WithLabelValues("unconfigured").Inc()
		return "", domain.ErrSMSNotConfigured
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", g.from)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", g.baseURL, url.PathEscape(g.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(g.accountSID, g.authToken)

	resp, err := g.http.Do(req)
	if err != nil {
		metrics.SMSRelayTotal.WithLabelValues("upstream_error").Inc()
		g.logger.Error().Err(err).Msg("sms gateway unreachable")
		return "", &domain.UpstreamError{StatusCode: http.StatusBadGateway, Details: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.SMSRelayTotal.WithLabelValues("upstream_error").Inc()
		g.logger.Warn().Int("status", resp.StatusCode).Msg("sms gateway rejected message")
		return "", &domain.UpstreamError{StatusCode: resp.StatusCode, Details: string(body)}
	}

	metrics.SMSRelayTotal.WithLabelValues("sent").Inc()
	g.logger.Info().Msg("sms relayed")
	return string(body), nil
}
