package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultWebhookTimeout = 30 * time.Second
	defaultMaxRetries     = 3
	maxBackoff            = 30 * time.Second

	userAgent = "replwatch/1.0"
)

// WebhookTransport posts alert events as JSON to an HTTP endpoint. Retry
// with exponential backoff is this transport's policy; a non-retryable
// 4xx response fails immediately.
type WebhookTransport struct {
	url        string
	headers    map[string]string
	maxRetries int
	httpClient *http.Client

	sleepFn func(time.Duration)
}

// NewWebhookTransport creates a transport posting to url. Extra headers
// (e.g. authentication) are applied to every request.
func NewWebhookTransport(url string, headers map[string]string) *WebhookTransport {
	return &WebhookTransport{
		url:        url,
		headers:    headers,
		maxRetries: defaultMaxRetries,
		httpClient: &http.Client{Timeout: defaultWebhookTimeout},
		sleepFn:    time.Sleep,
	}
}

// Emit delivers one event, retrying transient failures.
func (t *WebhookTransport) Emit(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Check, err)
	}

	var lastErr error
	backoff := time.Second

	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			log.Debug().
				Str("check", event.Check).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying event delivery after backoff")
			t.sleepFn(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("event %s delivery canceled: %w", event.Check, err)
		}

		retryable, err := t.emitOnce(ctx, payload)
		if err == nil {
			if attempt > 0 {
				log.Info().
					Str("check", event.Check).
					Int("attempt", attempt).
					Msg("Event delivered after retry")
			}
			return nil
		}
		lastErr = err
		log.Warn().
			Err(err).
			Str("check", event.Check).
			Int("attempt", attempt).
			Msg("Event delivery attempt failed")
		if !retryable {
			return err
		}
	}

	return fmt.Errorf("event %s failed after %d attempts: %w", event.Check, t.maxRetries+1, lastErr)
}

// emitOnce performs a single POST. The bool result reports whether the
// failure is worth retrying.
func (t *WebhookTransport) emitOnce(ctx context.Context, payload []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return true, fmt.Errorf("transport returned status %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("transport returned status %d", resp.StatusCode)
	}
}
