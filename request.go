package rettiwt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

const maxRetries = 3

// StealthConfig configures the default transport.
type StealthConfig struct {
	// Proxy is an optional proxy URL.
	Proxy string
	// Timeout bounds a single round trip. Default: 30s.
	Timeout time.Duration
	// RateLimit configures client-side limiting, keyed by resource.
	RateLimit ratelimit.Config
	// Profile selects one of the built-in browser profiles. Default: 0.
	Profile int
	// NoJitter disables the anti-fingerprint delay before each request.
	NoJitter bool
	Logger   *slog.Logger
}

// StealthTransport is the default Transport. It impersonates a browser TLS
// fingerprint, acquires guest tokens for credential-less requests and keeps ct0 in
// sync with the server for credentialed ones.
type StealthTransport struct {
	bc        *stealth.BrowserClient
	limiter   *ratelimit.Limiter
	log       *slog.Logger
	timeout   time.Duration
	userAgent string
	jitter    bool

	// backoff and guestBackoff space retries of Do and of guest activation.
	backoff      func(attempt int) time.Duration
	guestBackoff func(attempt int) time.Duration
	guestURL     string

	mu                sync.Mutex
	guest             string
	guestLimitedUntil time.Time
	sessions          map[string]*session
}

// NewStealthTransport creates the default transport.
func NewStealthTransport(cfg StealthConfig) (*StealthTransport, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	profile := stealth.BuiltinProfiles[cfg.Profile%len(stealth.BuiltinProfiles)]
	opts := []stealth.ClientOption{
		stealth.WithProfile(profile.TLSProfile),
		stealth.WithHeaderOrder(headerOrder),
	}
	if cfg.Proxy != "" {
		opts = append(opts, stealth.WithProxy(cfg.Proxy))
		cfg.Logger.Debug("using proxy", slog.String("proxy", stealth.MaskProxy(cfg.Proxy)))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}

	return &StealthTransport{
		bc:        bc,
		limiter:   ratelimit.NewLimiter(cfg.RateLimit),
		log:       cfg.Logger,
		timeout:   cfg.Timeout,
		userAgent: profile.UserAgent,
		jitter:    !cfg.NoJitter,

		backoff:      stealth.DefaultBackoff.Duration,
		guestBackoff: guestBackoff.Duration,
		guestURL:     guestActivateURL,

		sessions: make(map[string]*session),
	}, nil
}

// Do sends req. Network failures of idempotent requests are retried with backoff; any
// HTTP response, successful or not, is returned as is.
func (t *StealthTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	key := req.Resource.String()
	if !t.limiter.Allow(key) {
		return nil, fmt.Errorf("%s rate-limited until %s", key, t.limiter.AvailableAt(key).Format(time.RFC3339))
	}
	if t.jitter {
		if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			if err := sleepContext(ctx, t.backoff(attempt)); err != nil {
				return nil, err
			}
		}

		headers, sess, err := t.headers(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}

		body, respHdrs, status, err := t.send(ctx, req.Method, req.URL, headers, req.Body)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if isProxyError(err) {
				t.log.Warn("proxy error", slog.String("resource", key), slog.Any("error", err))
			}
			if req.Method != http.MethodGet {
				break
			}
			t.log.Debug("request failed, retrying", slog.String("resource", key), slog.Int("attempt", attempt+1), slog.Any("error", err))
			continue
		}

		switch {
		case status == http.StatusTooManyRequests:
			until := parseRateLimitReset(respHdrs["x-rate-limit-reset"])
			t.limiter.MarkRateLimited(key, until)
			if sess == nil {
				t.markGuestTokenRateLimited(until)
			}
			t.log.Warn("rate limited", slog.String("resource", key), slog.Time("until", until))

		case sess == nil && (status == http.StatusUnauthorized || status == http.StatusForbidden):
			t.log.Warn("guest token rejected, reacquiring", slog.String("resource", key), slog.Int("status", status))
			t.setGuestToken("")
			lastErr = fmt.Errorf("%s (guest) HTTP %d", key, status)
			continue

		case sess != nil && codeClass(body) == ClassCSRF:
			if t.rotateGenerated(sess) {
				t.log.Warn("CSRF error 353, rotating ct0", slog.String("resource", key))
				lastErr = fmt.Errorf("%s csrf mismatch", key)
				continue
			}
		}

		if sess != nil {
			if ct0 := extractCT0FromHeaders(respHdrs); ct0 != "" {
				t.mu.Lock()
				if ct0 != sess.ct0 {
					sess.setCT0(ct0)
					sess.generated = false
				}
				t.mu.Unlock()
			}
		}
		return &Response{Status: status, Headers: respHdrs, Body: body}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%s failed after retries: %w", key, lastErr)
	}
	return nil, fmt.Errorf("%s failed", key)
}

// rotateGenerated replaces a locally generated ct0. It reports false when the
// current ct0 came from the server and must be kept.
func (t *StealthTransport) rotateGenerated(sess *session) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !sess.generated {
		return false
	}
	sess.rotate()
	return true
}

// headers builds the per-request headers. The returned session is nil for guest access.
func (t *StealthTransport) headers(ctx context.Context, req *Request) (map[string]string, *session, error) {
	var h map[string]string
	var sess *session
	if req.Credential == "" {
		token, err := t.guestToken(ctx)
		if err != nil {
			return nil, nil, err
		}
		h = guestHeaders(token, t.userAgent)
	} else {
		t.mu.Lock()
		sess = t.sessions[req.Credential]
		if sess == nil {
			sess = parseCredential(req.Credential)
			t.sessions[req.Credential] = sess
		}
		h = userHeaders(sess.cookie, sess.ct0, t.userAgent)
		t.mu.Unlock()
	}
	if req.ContentType != "" {
		h["content-type"] = req.ContentType
	}
	return h, sess, nil
}

// send runs one round trip, bounded by the transport timeout and ctx.
func (t *StealthTransport) send(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, map[string]string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		body    []byte
		headers map[string]string
		status  int
		err     error
	}
	done := make(chan result, 1)
	go func() {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		b, h, s, err := t.bc.DoWithHeaderOrder(method, url, headers, r, headerOrder)
		done <- result{b, h, s, err}
	}()

	select {
	case res := <-done:
		return res.body, res.headers, res.status, res.err
	case <-ctx.Done():
		return nil, nil, 0, ctx.Err()
	}
}

// codeClass classifies the first upstream error code in body.
func codeClass(body []byte) ErrorClass {
	if ue, ok := firstUpstreamError(body); ok {
		return classifyCode(ue.Code)
	}
	return ClassNone
}

// parseRateLimitReset parses the X-Rate-Limit-Reset unix timestamp header.
// Falls back to 15 minutes from now if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(15 * time.Minute)
}

// isProxyError returns true if the error looks like a proxy connectivity failure.
func isProxyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "proxy") ||
		strings.Contains(msg, "SOCKS") ||
		strings.Contains(msg, "tunnel") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host")
}
