package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go-rettiwt"
)

type stubTransport struct {
	body string
	err  error
	reqs []*rettiwt.Request
}

func (s *stubTransport) Do(_ context.Context, req *rettiwt.Request) (*rettiwt.Response, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return &rettiwt.Response{Status: http.StatusOK, Body: []byte(s.body)}, nil
}

func newRouter(t *testing.T, apiKey string, tr *stubTransport) http.Handler {
	t.Helper()
	client, err := rettiwt.New(rettiwt.Config{
		APIKey:    apiKey,
		Transport: tr,
		Logger:    slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return SetupRouter(client, slog.New(slog.DiscardHandler), "test")
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(newRouter(t, "", &stubTransport{}), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","authenticated":false}`, w.Body.String())
}

func TestTweetDetails(t *testing.T) {
	tr := &stubTransport{body: `{"data":{"tweetResult":{"result":{"__typename":"Tweet","rest_id":"42","legacy":{"full_text":"hi"}}}}}`}
	w := get(newRouter(t, "", tr), "/api/v1/tweets/42")
	require.Equal(t, http.StatusOK, w.Code)

	var got rettiwt.Tweet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, "hi", got.Text)
	require.Len(t, tr.reqs, 1)
	assert.Equal(t, rettiwt.TweetDetails, tr.reqs[0].Resource)
}

func TestTweetDetailsNotFound(t *testing.T) {
	tr := &stubTransport{body: `{"data":{"tweetResult":{}}}`}
	w := get(newRouter(t, "", tr), "/api/v1/tweets/42")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserDetailsByUsername(t *testing.T) {
	tr := &stubTransport{body: `{"data":{"user":{"result":{"__typename":"User","rest_id":"7","legacy":{"screen_name":"alice"}}}}}`}
	w := get(newRouter(t, "", tr), "/api/v1/users/alice")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, tr.reqs, 1)
	assert.Equal(t, rettiwt.UserDetailsByUsername, tr.reqs[0].Resource)
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		tr     *stubTransport
		path   string
		want   int
	}{
		{"missing query", "key", &stubTransport{}, "/api/v1/search", http.StatusBadRequest},
		{"guest cannot search", "", &stubTransport{}, "/api/v1/search?q=go", http.StatusUnauthorized},
		{"transport failure", "key", &stubTransport{err: errors.New("boom")}, "/api/v1/search?q=go", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newRouter(t, tt.apiKey, tt.tr), tt.path)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSearchReturnsPage(t *testing.T) {
	tr := &stubTransport{body: `{"data":{"search_by_raw_query":{"search_timeline":{"timeline":{"instructions":[{"type":"TimelineAddEntries","entries":[
		{"entryId":"tweet-1","content":{"entryType":"TimelineTimelineItem","itemContent":{"__typename":"TimelineTweet","tweet_results":{"result":{"__typename":"Tweet","rest_id":"1","legacy":{"full_text":"go"}}}}}},
		{"entryId":"cursor-bottom-1","content":{"entryType":"TimelineTimelineCursor","value":"NEXT","cursorType":"Bottom"}}
	]}]}}}}}`}
	w := get(newRouter(t, "key", tr), "/api/v1/search?q=go&from=u1")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Tweets []rettiwt.Tweet
		Next   string `json:"next"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Tweets, 1)
	assert.Equal(t, "1", body.Tweets[0].ID)
	assert.Equal(t, "NEXT", body.Next)
}
