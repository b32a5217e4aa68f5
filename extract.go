package rettiwt

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/tidwall/gjson"
)

// Result is the extracted value of a response. Exactly the field selected by Kind is
// set; a nil Tweet or User, or an empty ID, means the entity is absent.
type Result struct {
	Kind   Kind
	Bool   bool
	ID     string
	Tweet  *Tweet
	User   *User
	Tweets *CursoredData[*Tweet]
	Users  *CursoredData[*User]
}

// Extract converts a raw response of r into its typed result. It performs no I/O.
func Extract(r Resource, body []byte) (Result, error) {
	desc, err := Describe(r)
	if err != nil {
		return Result{}, err
	}
	res := Result{Kind: desc.Kind}
	switch desc.Kind {
	case KindNone:
		_, err = extractNone(r, body)
	case KindBool:
		res.Bool, err = extractBool(r, body)
	case KindID:
		res.ID, err = extractID(r, body)
	case KindTweet:
		res.Tweet, err = extractTweet(r, body)
	case KindUser:
		res.User, err = extractUser(r, body)
	case KindTweets:
		res.Tweets, err = extractTweets(r, body)
	case KindUsers:
		res.Users, err = extractUsers(r, body)
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// envelope checks that body is a JSON object and describes r with the wanted kind.
func envelope(r Resource, want Kind, body []byte) (Descriptor, gjson.Result, error) {
	desc, err := Describe(r)
	if err != nil {
		return desc, gjson.Result{}, err
	}
	if desc.Kind != want {
		return desc, gjson.Result{}, invalidArgument(r, "resource yields %s, not %s", desc.Kind, want)
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || !gjson.ValidBytes(trimmed) {
		return desc, gjson.Result{}, &Error{Kind: ErrMalformedResponse, Resource: r, Msg: "expected a JSON object: " + truncateBytes(trimmed, 100)}
	}
	return desc, gjson.ParseBytes(trimmed), nil
}

func extractNone(r Resource, body []byte) (struct{}, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return struct{}{}, nil
	}
	_, _, err := envelope(r, KindNone, body)
	return struct{}{}, err
}

func extractBool(r Resource, body []byte) (bool, error) {
	desc, env, err := envelope(r, KindBool, body)
	if err != nil {
		return false, err
	}
	return nonEmpty(env.Get(desc.markerPath)), nil
}

// nonEmpty reports whether a success marker carries a value.
func nonEmpty(m gjson.Result) bool {
	switch m.Type {
	case gjson.String:
		return m.Str != ""
	case gjson.True, gjson.Number:
		return true
	case gjson.JSON:
		if m.IsArray() {
			return len(m.Array()) > 0
		}
		return len(m.Map()) > 0
	}
	return false
}

func extractID(r Resource, body []byte) (string, error) {
	desc, env, err := envelope(r, KindID, body)
	if err != nil {
		return "", err
	}
	return env.Get(desc.idPath).String(), nil
}

func extractTweet(r Resource, body []byte) (*Tweet, error) {
	desc, env, err := envelope(r, KindTweet, body)
	if err != nil {
		return nil, err
	}
	raw := env.Get(desc.entityPath)
	if !raw.IsObject() {
		return nil, nil
	}
	var tr tweetResult
	if err := json.Unmarshal([]byte(raw.Raw), &tr); err != nil {
		return nil, nil
	}
	t, err := parseTweetResult(&tr)
	if err != nil {
		return nil, nil
	}
	return t, nil
}

func extractUser(r Resource, body []byte) (*User, error) {
	desc, env, err := envelope(r, KindUser, body)
	if err != nil {
		return nil, err
	}
	raw := env.Get(desc.entityPath)
	if !raw.IsObject() {
		return nil, nil
	}
	var ur userResult
	if err := json.Unmarshal([]byte(raw.Raw), &ur); err != nil {
		return nil, nil
	}
	u, err := parseUserResult(ur)
	if err != nil {
		return nil, nil
	}
	return u, nil
}

func extractTweets(r Resource, body []byte) (*CursoredData[*Tweet], error) {
	desc, env, err := envelope(r, KindTweets, body)
	if err != nil {
		return nil, err
	}
	tweets, cursor := extractTweetsFromTimeline(locateTimeline(env, desc.timelinePath))
	if desc.SortByDate {
		slices.SortStableFunc(tweets, func(a, b *Tweet) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return &CursoredData[*Tweet]{List: tweets, Next: nextCursor(cursor, len(tweets))}, nil
}

func extractUsers(r Resource, body []byte) (*CursoredData[*User], error) {
	desc, env, err := envelope(r, KindUsers, body)
	if err != nil {
		return nil, err
	}
	users, cursor := extractUsersFromTimeline(locateTimeline(env, desc.timelinePath))
	return &CursoredData[*User]{List: users, Next: nextCursor(cursor, len(users))}, nil
}

// locateTimeline decodes the first candidate path holding timeline instructions.
func locateTimeline(env gjson.Result, paths []string) timelineObj {
	for _, path := range paths {
		raw := env.Get(path)
		if !raw.Get("instructions").IsArray() {
			continue
		}
		var tl timelineObj
		if json.Unmarshal([]byte(raw.Raw), &tl) == nil {
			return tl
		}
	}
	return timelineObj{}
}

// nextCursor ends pagination on an empty page even when upstream still sends a cursor.
func nextCursor(value string, n int) *Cursor {
	if value == "" || n == 0 {
		return nil
	}
	return &Cursor{Value: value, Type: CursorBottom}
}
