package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kjannette/tariff-monitor/internal/httputil"
	"github.com/kjannette/tariff-monitor/internal/models"
)

// Alert is one live/fallback transition of an endpoint.
type Alert struct {
	Endpoint string        `json:"endpoint"`
	Status   models.Status `json:"status"`
	Message  string        `json:"message"`
	At       time.Time     `json:"at"`
}

func (a Alert) summary() string {
	return fmt.Sprintf("%s is now %s: %s", a.Endpoint, a.Status, a.Message)
}

// Sender logs every alert and, when a webhook is configured, posts it.
// Discord and Slack URLs get their native payloads; any other URL receives
// the alert as JSON.
type Sender struct {
	webhookURL string
	botName    string
	httpClient *http.Client
	retry      httputil.RetryConfig
	log        zerolog.Logger
}

func NewSender(webhookURL, botName string, log zerolog.Logger) *Sender {
	if botName == "" {
		botName = "TariffMonitor"
	}
	l := log.With().Str("component", "alerts").Logger()
	return &Sender{
		webhookURL: webhookURL,
		botName:    botName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
			Logger:      &l,
		},
		log: l,
	}
}

func (s *Sender) Send(a Alert) {
	ev := s.log.Warn()
	if a.Status == models.StatusSuccess {
		ev = s.log.Info()
	}
	ev.Str("endpoint", a.Endpoint).Str("status", string(a.Status)).Msg(a.Message)

	if s.webhookURL == "" {
		return
	}

	body, err := json.Marshal(s.payload(a))
	if err != nil {
		s.log.Error().Err(err).Msg("marshal webhook payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := httputil.Do(ctx, s.httpClient, s.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", httputil.UserAgent)
		return req, nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("endpoint", a.Endpoint).Msg("webhook delivery failed")
		return
	}
	resp.Body.Close()
	if !httputil.OK(resp) {
		s.log.Error().Int("status", resp.StatusCode).Str("endpoint", a.Endpoint).Msg("webhook rejected alert")
	}
}

func (s *Sender) payload(a Alert) any {
	text := fmt.Sprintf("[%s] %s", s.botName, a.summary())
	switch {
	case strings.Contains(s.webhookURL, "discord"):
		return map[string]string{"content": text, "username": s.botName}
	case strings.Contains(s.webhookURL, "slack"):
		return map[string]string{"text": text, "username": s.botName}
	default:
		return struct {
			Bot string `json:"bot"`
			Alert
		}{s.botName, a}
	}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}
