package rettiwt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeTransport records every request and answers with respond.
type fakeTransport struct {
	mu      sync.Mutex
	reqs    []*Request
	respond func(n int, req *Request) (*Response, error)
}

func (f *fakeTransport) Do(_ context.Context, req *Request) (*Response, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	n := len(f.reqs)
	f.mu.Unlock()
	if f.respond == nil {
		return ok(`{}`), nil
	}
	return f.respond(n, req)
}

func (f *fakeTransport) calls() []*Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Request(nil), f.reqs...)
}

func ok(body string) *Response {
	return &Response{Status: http.StatusOK, Body: []byte(body)}
}

// always answers every request with the same body.
func always(body string) func(int, *Request) (*Response, error) {
	return func(int, *Request) (*Response, error) { return ok(body), nil }
}

func newTestClient(t *testing.T, apiKey string, respond func(int, *Request) (*Response, error)) (*Client, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{respond: respond}
	c, err := New(Config{APIKey: apiKey, Transport: ft, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, ft
}

// requestVars decodes the GraphQL variables of a GET request or mutation body.
func requestVars(t *testing.T, req *Request) map[string]any {
	t.Helper()
	var vars map[string]any
	if req.Method == http.MethodGet {
		u, err := url.Parse(req.URL)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(u.Query().Get("variables")), &vars))
		return vars
	}
	var payload struct {
		Variables map[string]any `json:"variables"`
	}
	require.NoError(t, json.Unmarshal(req.Body, &payload))
	return payload.Variables
}

func tweetEntry(id string, created time.Time) string {
	return fmt.Sprintf(`{"entryId":"tweet-%[1]s","sortIndex":"1","content":{"entryType":"TimelineTimelineItem","__typename":"TimelineTimelineItem",
		"itemContent":{"itemType":"TimelineTweet","__typename":"TimelineTweet","tweet_results":{"result":{"__typename":"Tweet","rest_id":"%[1]s",
		"legacy":{"full_text":"tweet %[1]s","created_at":"%[2]s","user_id_str":"u1"}}}}}}`, id, created.UTC().Format(createdAtLayout))
}

func userEntry(id, name string) string {
	return fmt.Sprintf(`{"entryId":"user-%[1]s","content":{"entryType":"TimelineTimelineItem","__typename":"TimelineTimelineItem",
		"itemContent":{"itemType":"TimelineUser","__typename":"TimelineUser","user_results":{"result":{"__typename":"User","rest_id":"%[1]s",
		"legacy":{"screen_name":"%[2]s","name":"%[2]s"}}}}}}`, id, name)
}

func cursorEntry(cursorType, value string) string {
	return fmt.Sprintf(`{"entryId":"cursor-%[1]s-0","content":{"entryType":"TimelineTimelineCursor","__typename":"TimelineTimelineCursor",
		"value":"%[2]s","cursorType":"%[3]s"}}`, strings.ToLower(cursorType), value, cursorType)
}

func instructions(entries ...string) string {
	return `{"instructions":[{"type":"TimelineAddEntries","entries":[` + strings.Join(entries, ",") + `]}]}`
}

func searchBody(entries ...string) string {
	return `{"data":{"search_by_raw_query":{"search_timeline":{"timeline":` + instructions(entries...) + `}}}}`
}

func userListBody(entries ...string) string {
	return `{"data":{"user":{"result":{"__typename":"User","timeline":{"timeline":` + instructions(entries...) + `}}}}}`
}

func userTimelineBody(entries ...string) string {
	return `{"data":{"user":{"result":{"__typename":"User","timeline_v2":{"timeline":` + instructions(entries...) + `}}}}}`
}
