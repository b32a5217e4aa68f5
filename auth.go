package rettiwt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

const guestActivateURL = "https://api.x.com/1.1/guest/activate.json"

var guestBackoff = stealth.BackoffConfig{
	InitialWait: 2 * time.Second,
	MaxWait:     60 * time.Second,
	Multiplier:  2.0,
	JitterPct:   0.3,
}

// getGuestToken fetches a guest token.
func (t *StealthTransport) getGuestToken(ctx context.Context) (string, error) {
	headers := map[string]string{
		"authorization": "Bearer " + BearerToken,
		"content-type":  "application/json",
		"user-agent":    t.userAgent,
	}
	body, _, status, err := t.send(ctx, http.MethodPost, t.guestURL, headers, nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("guest token: HTTP %d", status)
	}
	var resp struct {
		GuestToken string `json:"guest_token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if resp.GuestToken == "" {
		return "", fmt.Errorf("empty guest token in response")
	}
	return resp.GuestToken, nil
}

// acquireGuestToken fetches a fresh guest token with exponential backoff.
func (t *StealthTransport) acquireGuestToken(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, t.guestBackoff(attempt)); err != nil {
				return "", err
			}
		}
		token, err := t.getGuestToken(ctx)
		if err == nil {
			return token, nil
		}
		lastErr = err
		t.log.Warn("guest token acquisition failed", slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
	return "", fmt.Errorf("acquire guest token after 3 attempts: %w", lastErr)
}

// guestToken returns the cached guest token, acquiring one when none is usable.
func (t *StealthTransport) guestToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	if t.guest != "" {
		token := t.guest
		limited := time.Now().Before(t.guestLimitedUntil)
		until := t.guestLimitedUntil
		t.mu.Unlock()
		if limited {
			return "", fmt.Errorf("guest token rate-limited until %s", until.Format(time.RFC3339))
		}
		return token, nil
	}
	t.mu.Unlock()

	token, err := t.acquireGuestToken(ctx)
	if err != nil {
		return "", err
	}
	t.setGuestToken(token)
	t.log.Debug("guest token acquired")
	return token, nil
}

// setGuestToken stores a fresh guest token. An empty token forces re-acquisition.
func (t *StealthTransport) setGuestToken(token string) {
	t.mu.Lock()
	t.guest = token
	t.guestLimitedUntil = time.Time{}
	t.mu.Unlock()
}

// markGuestTokenRateLimited marks the guest token as rate-limited.
func (t *StealthTransport) markGuestTokenRateLimited(until time.Time) {
	t.mu.Lock()
	t.guestLimitedUntil = until
	t.mu.Unlock()
}
