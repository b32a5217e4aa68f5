package rettiwt

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// GenerateCT0 generates a random 32-byte hex string for use as a ct0 CSRF token.
func GenerateCT0() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "0000000000000000000000000000000000000000000000000000000000000000"
	}
	return hex.EncodeToString(b)
}

// session is the cookie state derived from one credential.
type session struct {
	cookie string
	ct0    string
	// generated is set when ct0 was made up locally and may be rotated freely.
	generated bool
}

// parseCredential accepts a base64 encoded cookie string, a plain cookie string, or a
// bare auth_token value.
func parseCredential(apiKey string) *session {
	raw := strings.TrimSpace(apiKey)
	if dec, err := base64.StdEncoding.DecodeString(raw); err == nil && strings.Contains(string(dec), "auth_token=") {
		raw = strings.TrimSpace(string(dec))
	}
	if !strings.Contains(raw, "=") {
		raw = "auth_token=" + raw
	}
	s := &session{cookie: strings.TrimRight(raw, "; "), ct0: cookieValue(raw, "ct0")}
	if s.ct0 == "" {
		s.rotate()
	}
	return s
}

// rotate replaces ct0 with a fresh local value.
func (s *session) rotate() {
	s.setCT0(GenerateCT0())
	s.generated = true
}

func (s *session) setCT0(ct0 string) {
	s.ct0 = ct0
	s.cookie = setCookieValue(s.cookie, "ct0", ct0)
}

// cookieValue returns the value of name in a "k=v; k=v" cookie string.
func cookieValue(cookie, name string) string {
	for _, part := range strings.Split(cookie, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && k == name {
			return v
		}
	}
	return ""
}

func setCookieValue(cookie, name, value string) string {
	var parts []string
	found := false
	for _, part := range strings.Split(cookie, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if k, _, _ := strings.Cut(part, "="); k == name {
			part = name + "=" + value
			found = true
		}
		parts = append(parts, part)
	}
	if !found {
		parts = append(parts, name+"="+value)
	}
	return strings.Join(parts, "; ")
}

// extractCT0FromHeaders parses ct0 value from a set-cookie response header.
func extractCT0FromHeaders(headers map[string]string) string {
	cookie := headers["set-cookie"]
	if cookie == "" {
		return ""
	}
	for _, part := range strings.Split(cookie, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "ct0=") {
			val := strings.TrimPrefix(part, "ct0=")
			if val != "" {
				return val
			}
		}
	}
	return ""
}
