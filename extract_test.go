package rettiwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSortsSearchAndListTweets(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []string{
		tweetEntry("t1", now.Add(-1*time.Minute)),
		tweetEntry("t3", now.Add(-3*time.Minute)),
		tweetEntry("t2", now.Add(-2*time.Minute)),
	}

	bodies := map[Resource]string{
		TweetSearch: searchBody(entries...),
		ListTweets:  `{"data":{"list":{"tweets_timeline":{"timeline":` + instructions(entries...) + `}}}}`,
	}
	for r, body := range bodies {
		t.Run(r.String(), func(t *testing.T) {
			res, err := Extract(r, []byte(body))
			require.NoError(t, err)
			require.Equal(t, KindTweets, res.Kind)
			assert.Equal(t, []string{"t1", "t2", "t3"}, tweetIDs(res.Tweets.List))
		})
	}
}

func TestExtractKeepsUpstreamOrderElsewhere(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	body := userTimelineBody(
		tweetEntry("t3", now.Add(-3*time.Minute)),
		tweetEntry("t1", now.Add(-1*time.Minute)),
	)
	res, err := Extract(UserTimeline, []byte(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"t3", "t1"}, tweetIDs(res.Tweets.List))
}

func TestExtractBoolMarker(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"done string", `{"data":{"favorite_tweet":"Done"}}`, true},
		{"empty string", `{"data":{"favorite_tweet":""}}`, false},
		{"empty object", `{"data":{"favorite_tweet":{}}}`, false},
		{"null", `{"data":{"favorite_tweet":null}}`, false},
		{"absent", `{"data":{}}`, false},
		{"no data", `{}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractBool(TweetLike, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("retweet result object", func(t *testing.T) {
		got, err := extractBool(TweetRetweet, []byte(`{"data":{"create_retweet":{"retweet_results":{"result":{"rest_id":"9","legacy":{}}}}}}`))
		require.NoError(t, err)
		assert.True(t, got)

		got, err = extractBool(TweetRetweet, []byte(`{"data":{"create_retweet":{"retweet_results":{"result":{}}}}}`))
		require.NoError(t, err)
		assert.False(t, got)
	})
}

func TestExtractMalformedEnvelope(t *testing.T) {
	for _, body := range []string{``, `[]`, `"Done"`, `{"data":`, `<html></html>`} {
		_, err := Extract(TweetLike, []byte(body))
		assert.ErrorIs(t, err, ErrMalformedResponse, "body %q", body)
	}
}

func TestExtractNoneAllowsEmptyBody(t *testing.T) {
	res, err := Extract(MediaUploadAppend, nil)
	require.NoError(t, err)
	assert.Equal(t, KindNone, res.Kind)

	_, err = Extract(MediaUploadFinalize, []byte(`{"media_id_string":"1","processing_info":{"state":"succeeded"}}`))
	require.NoError(t, err)

	_, err = Extract(MediaUploadFinalize, []byte(`oops`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestExtractRejectsMismatchedKind(t *testing.T) {
	_, err := extractTweets(UserFollowers, []byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestExtractIDAbsent(t *testing.T) {
	res, err := Extract(MediaUploadInitialize, []byte(`{"media_id_string":"710511363345354753","expires_after_secs":86400}`))
	require.NoError(t, err)
	assert.Equal(t, "710511363345354753", res.ID)

	res, err = Extract(TweetPost, []byte(`{"data":{"create_tweet":{"tweet_results":{}}}}`))
	require.NoError(t, err)
	assert.Empty(t, res.ID)
}

func TestExtractAbsentEntities(t *testing.T) {
	res, err := Extract(TweetDetails, []byte(`{"data":{"tweetResult":{}}}`))
	require.NoError(t, err)
	assert.Nil(t, res.Tweet)

	res, err = Extract(TweetDetails, []byte(`{"data":{"tweetResult":{"result":{"__typename":"TweetTombstone"}}}}`))
	require.NoError(t, err)
	assert.Nil(t, res.Tweet)

	res, err = Extract(UserDetailsByUsername, []byte(`{"data":{"user":{"result":{"__typename":"UserUnavailable","rest_id":""}}}}`))
	require.NoError(t, err)
	assert.Nil(t, res.User)
}

func TestExtractCursor(t *testing.T) {
	t.Run("bottom cursor kept", func(t *testing.T) {
		body := userListBody(userEntry("1", "a"), userEntry("2", "b"), cursorEntry("Top", "TOP"), cursorEntry("Bottom", "NEXT"))
		res, err := Extract(UserFollowers, []byte(body))
		require.NoError(t, err)
		assert.Len(t, res.Users.List, 2)
		require.NotNil(t, res.Users.Next)
		assert.Equal(t, Cursor{Value: "NEXT", Type: CursorBottom}, *res.Users.Next)
		assert.True(t, res.Users.HasMore())
	})

	t.Run("empty page ends pagination", func(t *testing.T) {
		body := userListBody(cursorEntry("Bottom", "NEXT"))
		res, err := Extract(UserFollowers, []byte(body))
		require.NoError(t, err)
		assert.Empty(t, res.Users.List)
		assert.Nil(t, res.Users.Next)
		assert.False(t, res.Users.HasMore())
	})

	t.Run("no timeline", func(t *testing.T) {
		res, err := Extract(UserFollowers, []byte(`{"data":{"user":{}}}`))
		require.NoError(t, err)
		assert.Empty(t, res.Users.List)
		assert.Nil(t, res.Users.Next)
	})
}

func TestExtractDeterministic(t *testing.T) {
	body := []byte(`{"data":{"tweetResult":{"result":{"__typename":"Tweet","rest_id":"1","legacy":{"full_text":"x","created_at":"Wed Oct 10 20:19:24 +0000 2018"}}}}}`)
	a, err := Extract(TweetDetails, body)
	require.NoError(t, err)
	b, err := Extract(TweetDetails, body)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func tweetIDs(tweets []*Tweet) []string {
	ids := make([]string, 0, len(tweets))
	for _, t := range tweets {
		ids = append(ids, t.ID)
	}
	return ids
}
