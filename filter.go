package rettiwt

import (
	"strconv"
	"strings"
	"time"
)

const searchDateLayout = "2006-01-02_15:04:05_UTC"

// TweetFilter describes a tweet search.
type TweetFilter struct {
	FromUsers     []string
	ToUsers       []string
	Mentions      []string
	Hashtags      []string
	IncludeWords  []string
	IncludePhrase string
	OptionalWords []string
	ExcludeWords  []string
	Language      string
	QuotedTweetID string
	StartDate     time.Time
	EndDate       time.Time
	SinceID       string
	MaxID         string
	MinLikes      int
	MinRetweets   int
	MinReplies    int
	OnlyLinks     bool
	// Replies includes replies; they are filtered out by default.
	Replies bool
	// Top searches the "Top" tab instead of "Latest".
	Top bool
}

// Query renders the filter as an upstream search query.
func (f TweetFilter) Query() string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	add(strings.Join(f.IncludeWords, " "))
	if f.IncludePhrase != "" {
		add(`"` + f.IncludePhrase + `"`)
	}
	add(group(f.OptionalWords, ""))
	for _, w := range f.ExcludeWords {
		add("-" + w)
	}
	add(group(f.Hashtags, "#"))
	add(group(f.FromUsers, "from:"))
	add(group(f.ToUsers, "to:"))
	add(group(f.Mentions, "@"))
	if f.Language != "" {
		add("lang:" + f.Language)
	}
	if f.QuotedTweetID != "" {
		add("quoted_tweet_id:" + f.QuotedTweetID)
	}
	if f.MinLikes > 0 {
		add("min_faves:" + strconv.Itoa(f.MinLikes))
	}
	if f.MinRetweets > 0 {
		add("min_retweets:" + strconv.Itoa(f.MinRetweets))
	}
	if f.MinReplies > 0 {
		add("min_replies:" + strconv.Itoa(f.MinReplies))
	}
	if f.OnlyLinks {
		add("filter:links")
	}
	if !f.Replies {
		add("-filter:replies")
	}
	if !f.StartDate.IsZero() {
		add("since:" + f.StartDate.UTC().Format(searchDateLayout))
	}
	if !f.EndDate.IsZero() {
		add("until:" + f.EndDate.UTC().Format(searchDateLayout))
	}
	if f.SinceID != "" {
		add("since_id:" + f.SinceID)
	}
	if f.MaxID != "" {
		add("max_id:" + f.MaxID)
	}
	return strings.Join(parts, " ")
}

// group joins values with OR, prefixing each, and parenthesizes multiple values.
func group(values []string, prefix string) string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimPrefix(strings.TrimSpace(v), prefix)
		if v != "" {
			cleaned = append(cleaned, prefix+v)
		}
	}
	switch len(cleaned) {
	case 0:
		return ""
	case 1:
		return cleaned[0]
	}
	return "(" + strings.Join(cleaned, " OR ") + ")"
}

// filterParam returns the filter stored in p, which has already been validated.
func filterParam(p Params) TweetFilter {
	switch f := p[ParamFilter].(type) {
	case TweetFilter:
		return f
	case *TweetFilter:
		return *f
	}
	return TweetFilter{}
}
