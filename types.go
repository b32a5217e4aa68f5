package rettiwt

import (
	"context"
	"time"
)

// User represents an X account profile.
type User struct {
	ID              string
	UserName        string
	FullName        string
	Description     string
	Location        string
	CreatedAt       time.Time
	FollowersCount  int
	FollowingsCount int
	StatusesCount   int
	LikeCount       int
	MediaCount      int
	IsVerified      bool
	ProfileImage    string
	ProfileBanner   string
	PinnedTweet     string
}

// MediaType is the kind of media attached to a tweet.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
	MediaGIF   MediaType = "animated_gif"
)

// Media is a single media attachment. URL points at the best available variant.
type Media struct {
	Type MediaType
	URL  string
}

// Tweet represents a single tweet.
type Tweet struct {
	ID          string
	AuthorID    string
	Author      *User
	Text        string
	Lang        string
	CreatedAt   time.Time
	ReplyTo     string
	QuotedID    string
	RetweetedID string
	Hashtags    []string
	Cashtags    []string
	Mentions    []string
	URLs        []string
	Media       []Media
	Views       int
	Likes       int
	Retweets    int
	Quotes      int
	Replies     int
	Bookmarks   int
}

// CursorType classifies a pagination cursor.
type CursorType string

const (
	CursorBottom CursorType = "Bottom"
	CursorTop    CursorType = "Top"
)

// Cursor is an opaque pagination token. It is only meaningful for the resource
// and filter that produced it.
type Cursor struct {
	Value string
	Type  CursorType
}

// CursoredData is one page of a list resource. Next is nil on the last page.
type CursoredData[T any] struct {
	List []T
	Next *Cursor
}

// HasMore reports whether another page can be requested.
func (d *CursoredData[T]) HasMore() bool {
	return d != nil && d.Next != nil && d.Next.Value != ""
}

// Collect gathers up to limit items by following Next cursors from the first page.
// It stops early when pagination ends. Items gathered before an error are returned
// along with it.
func Collect[T any](ctx context.Context, limit int, page func(ctx context.Context, cursor string) (*CursoredData[T], error)) ([]T, error) {
	var items []T
	var cursor string

	for len(items) < limit {
		select {
		case <-ctx.Done():
			return items, ctx.Err()
		default:
		}

		batch, err := page(ctx, cursor)
		if err != nil {
			return items, err
		}
		items = append(items, batch.List...)

		if !batch.HasMore() {
			break
		}
		cursor = batch.Next.Value
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
