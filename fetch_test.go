package rettiwt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRejectsBeforeTransport(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		r      Resource
		p      Params
		kind   error
	}{
		{"unknown resource", "k", Resource(999), Params{}, ErrInvalidArgument},
		{"zero resource", "k", Resource(0), Params{}, ErrInvalidArgument},
		{"missing id", "", TweetDetails, Params{}, ErrInvalidArgument},
		{"empty id", "", TweetDetails, Params{ParamID: ""}, ErrInvalidArgument},
		{"missing filter", "k", TweetSearch, Params{}, ErrInvalidArgument},
		{"missing media", "k", MediaUploadAppend, Params{ParamMediaID: "1"}, ErrInvalidArgument},
		{"wrong count type", "", UserTimeline, Params{ParamID: "1", ParamCount: "10"}, ErrInvalidArgument},
		{"negative count", "k", UserFollowers, Params{ParamID: "1", ParamCount: -1}, ErrInvalidArgument},
		{"unknown param", "", TweetDetails, Params{ParamID: "1", "bogus": true}, ErrInvalidArgument},
		{"guest like", "", TweetLike, Params{ParamID: "1"}, ErrAuthenticationRequired},
		{"guest search", "", TweetSearch, Params{ParamFilter: TweetFilter{}}, ErrAuthenticationRequired},
		{"guest upload", "", MediaUploadInitialize, Params{ParamSize: 10}, ErrAuthenticationRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ft := newTestClient(t, tt.apiKey, nil)
			_, err := c.Fetch(context.Background(), tt.r, tt.p)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Empty(t, ft.calls())
		})
	}
}

func TestFetchIssuesExactlyOneCall(t *testing.T) {
	for _, r := range Resources() {
		desc, err := Describe(r)
		require.NoError(t, err)

		t.Run(r.String(), func(t *testing.T) {
			c, ft := newTestClient(t, "credential", always(`{"data":{}}`))
			p := Params{}
			for _, name := range desc.Required {
				switch name {
				case ParamFilter:
					p[name] = TweetFilter{FromUsers: []string{"u1"}}
				case ParamSize:
					p[name] = 3
				case ParamMedia:
					p[name] = []byte("abc")
				default:
					p[name] = "123"
				}
			}
			_, err := c.Fetch(context.Background(), r, p)
			require.NoError(t, err)

			calls := ft.calls()
			require.Len(t, calls, 1)
			assert.Equal(t, r, calls[0].Resource)
			assert.Equal(t, desc.Method, calls[0].Method)
			assert.True(t, strings.HasPrefix(calls[0].URL, desc.URL()))
		})
	}
}

func TestFetchForwardsCredentialVerbatim(t *testing.T) {
	const key = "YXV0aF90b2tlbj1hYmM7IGN0MD14eXo="
	c, ft := newTestClient(t, key, always(`{"data":{"favorite_tweet":"Done"}}`))

	liked, err := c.Tweet.Like(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, liked)

	calls := ft.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, key, calls[0].Credential)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "application/json", calls[0].ContentType)

	var payload struct {
		QueryID   string         `json:"queryId"`
		Variables map[string]any `json:"variables"`
	}
	require.NoError(t, json.Unmarshal(calls[0].Body, &payload))
	assert.Equal(t, registry[TweetLike].QueryID, payload.QueryID)
	assert.Equal(t, "42", payload.Variables["tweet_id"])
}

func TestFetchGuestHasNoCredential(t *testing.T) {
	c, ft := newTestClient(t, "", nil)
	_, err := c.Fetch(context.Background(), UserDetailsByUsername, Params{ParamID: "jack"})
	require.NoError(t, err)
	require.Len(t, ft.calls(), 1)
	assert.Empty(t, ft.calls()[0].Credential)
}

func TestFetchTransportFailures(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name   string
		resp   *Response
		err    error
		status int
		code   int
		class  ErrorClass
	}{
		{name: "network", err: boom},
		{
			name:   "http status with upstream code",
			resp:   &Response{Status: 403, Body: []byte(`{"errors":[{"code":353,"message":"This request requires a matching csrf cookie and header."}]}`)},
			status: 403, code: 353, class: ClassCSRF,
		},
		{
			name:   "rate limited",
			resp:   &Response{Status: 429, Body: []byte(`Rate limit exceeded`)},
			status: 429,
		},
		{
			name:   "invalid json",
			resp:   ok(`<html>nope</html>`),
			status: 200,
		},
		{
			name:   "errors without data",
			resp:   ok(`{"errors":[{"code":34,"message":"Sorry, that page does not exist."}]}`),
			status: 200, code: 34, class: ClassNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, "", func(int, *Request) (*Response, error) { return tt.resp, tt.err })
			_, err := c.Fetch(context.Background(), TweetDetails, Params{ParamID: "1"})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTransport)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, TweetDetails, e.Resource)
			assert.Equal(t, tt.status, e.Status)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.class, e.Class())
		})
	}
}

func TestFetchAcceptsErrorsAlongsideData(t *testing.T) {
	body := `{"data":{"user":{"result":{"__typename":"User","rest_id":"1"}}},"errors":[{"code":131,"message":"internal"}]}`
	c, _ := newTestClient(t, "", always(body))
	got, err := c.Fetch(context.Background(), UserDetailsByID, Params{ParamID: "1"})
	require.NoError(t, err)
	assert.JSONEq(t, body, string(got))
}

func TestFetchCountCapsAndCursorQuirk(t *testing.T) {
	tests := []struct {
		name      string
		r         Resource
		p         Params
		wantCount any
	}{
		{"search clamped", TweetSearch, Params{ParamFilter: TweetFilter{}, ParamCount: 50}, float64(20)},
		{"followers clamped", UserFollowers, Params{ParamID: "1", ParamCount: 500}, float64(100)},
		{"followers honored", UserFollowers, Params{ParamID: "1", ParamCount: 40}, float64(40)},
		{"timeline first page ignores count", UserTimeline, Params{ParamID: "1", ParamCount: 10}, nil},
		{"timeline later page honors count", UserTimeline, Params{ParamID: "1", ParamCount: 10, ParamCursor: "C1"}, float64(10)},
		{"media first page ignores count", UserMedia, Params{ParamID: "1", ParamCount: 10}, nil},
		{"zero count omitted", ListMembers, Params{ParamID: "1", ParamCount: 0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ft := newTestClient(t, "k", nil)
			_, err := c.Fetch(context.Background(), tt.r, tt.p)
			require.NoError(t, err)

			vars := requestVars(t, ft.calls()[0])
			if tt.wantCount == nil {
				assert.NotContains(t, vars, "count")
			} else {
				assert.Equal(t, tt.wantCount, vars["count"])
			}
		})
	}
}

func TestFetchSearchVariables(t *testing.T) {
	c, ft := newTestClient(t, "k", nil)
	f := TweetFilter{FromUsers: []string{"u1"}, Top: true}
	_, err := c.Fetch(context.Background(), TweetSearch, Params{ParamFilter: &f, ParamCursor: "C2"})
	require.NoError(t, err)

	req := ft.calls()[0]
	vars := requestVars(t, req)
	assert.Equal(t, "from:u1 -filter:replies", vars["rawQuery"])
	assert.Equal(t, "Top", vars["product"])
	assert.Equal(t, "C2", vars["cursor"])

	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.NotEmpty(t, u.Query().Get("features"))
}

func TestFetchPostVariables(t *testing.T) {
	c, ft := newTestClient(t, "k", always(`{"data":{"create_tweet":{"tweet_results":{"result":{"rest_id":"900"}}}}}`))
	id, err := c.Tweet.Post(context.Background(), NewTweet{Text: "hello", ReplyTo: "5", Quote: "6", MediaIDs: []string{"m1"}})
	require.NoError(t, err)
	assert.Equal(t, "900", id)

	vars := requestVars(t, ft.calls()[0])
	assert.Equal(t, "hello", vars["tweet_text"])
	assert.Equal(t, "https://x.com/i/status/6", vars["attachment_url"])
	reply := vars["reply"].(map[string]any)
	assert.Equal(t, "5", reply["in_reply_to_tweet_id"])
	media := vars["media"].(map[string]any)["media_entities"].([]any)
	require.Len(t, media, 1)
	assert.Equal(t, "m1", media[0].(map[string]any)["media_id"])
}

func TestFetchFollowIsFormEncoded(t *testing.T) {
	c, ft := newTestClient(t, "k", always(`{"id_str":"42","screen_name":"x"}`))
	followed, err := c.User.Follow(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, followed)

	req := ft.calls()[0]
	assert.Equal(t, "https://x.com/i/api/1.1/friendships/create.json", req.URL)
	assert.Equal(t, "application/x-www-form-urlencoded", req.ContentType)
	assert.Equal(t, "user_id=42", string(req.Body))
}

func TestFetchUploadRequests(t *testing.T) {
	c, ft := newTestClient(t, "k", nil)
	ctx := context.Background()

	_, err := c.Fetch(ctx, MediaUploadInitialize, Params{ParamSize: 5})
	require.NoError(t, err)
	_, err = c.Fetch(ctx, MediaUploadAppend, Params{ParamMediaID: "77", ParamMedia: []byte("hello")})
	require.NoError(t, err)
	_, err = c.Fetch(ctx, MediaUploadFinalize, Params{ParamMediaID: "77"})
	require.NoError(t, err)

	calls := ft.calls()
	require.Len(t, calls, 3)

	q := func(req *Request) url.Values {
		u, err := url.Parse(req.URL)
		require.NoError(t, err)
		return u.Query()
	}
	assert.Equal(t, "INIT", q(calls[0]).Get("command"))
	assert.Equal(t, "5", q(calls[0]).Get("total_bytes"))

	assert.Equal(t, "APPEND", q(calls[1]).Get("command"))
	assert.Equal(t, "77", q(calls[1]).Get("media_id"))
	assert.True(t, strings.HasPrefix(calls[1].ContentType, "multipart/form-data"))
	assert.Contains(t, string(calls[1].Body), "hello")

	assert.Equal(t, "FINALIZE", q(calls[2]).Get("command"))
	assert.Empty(t, calls[2].Body)
}
