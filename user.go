package rettiwt

import (
	"context"
	"strings"
)

// UserService groups user resources.
type UserService struct {
	c *Client
}

// Details returns a user by numeric id or by username, or nil if the account does not
// exist or is unavailable.
func (s *UserService) Details(ctx context.Context, idOrUsername string) (*User, error) {
	key := strings.TrimPrefix(strings.TrimSpace(idOrUsername), "@")
	if isNumericID(key) {
		return details(ctx, s.c, UserDetailsByID, key, extractUser)
	}
	return details(ctx, s.c, UserDetailsByUsername, key, extractUser)
}

// Follow follows the user with the given id.
func (s *UserService) Follow(ctx context.Context, id string) (bool, error) {
	return query(ctx, s.c, UserFollow, Params{ParamID: id}, extractBool)
}

// Unfollow unfollows the user with the given id.
func (s *UserService) Unfollow(ctx context.Context, id string) (bool, error) {
	return query(ctx, s.c, UserUnfollow, Params{ParamID: id}, extractBool)
}

// Followers returns a page of a user's followers.
func (s *UserService) Followers(ctx context.Context, id string, count int, cursor string) (*CursoredData[*User], error) {
	return query(ctx, s.c, UserFollowers, pageArgs(id, count, cursor), extractUsers)
}

// Following returns a page of the accounts a user follows.
func (s *UserService) Following(ctx context.Context, id string, count int, cursor string) (*CursoredData[*User], error) {
	return query(ctx, s.c, UserFollowing, pageArgs(id, count, cursor), extractUsers)
}

// Subscriptions returns a page of the creators a user subscribes to.
func (s *UserService) Subscriptions(ctx context.Context, id string, count int, cursor string) (*CursoredData[*User], error) {
	return query(ctx, s.c, UserSubscriptions, pageArgs(id, count, cursor), extractUsers)
}

// Highlights returns a page of a user's highlighted tweets.
func (s *UserService) Highlights(ctx context.Context, id string, count int, cursor string) (*CursoredData[*Tweet], error) {
	return query(ctx, s.c, UserHighlights, pageArgs(id, count, cursor), extractTweets)
}

// Likes returns a page of tweets liked by a user.
func (s *UserService) Likes(ctx context.Context, id string, count int, cursor string) (*CursoredData[*Tweet], error) {
	return query(ctx, s.c, UserLikes, pageArgs(id, count, cursor), extractTweets)
}

// Media returns a page of a user's media tweets. count is ignored on the first page.
func (s *UserService) Media(ctx context.Context, id string, count int, cursor string) (*CursoredData[*Tweet], error) {
	return query(ctx, s.c, UserMedia, pageArgs(id, count, cursor), extractTweets)
}

// Timeline returns a page of a user's tweets. count is ignored on the first page.
func (s *UserService) Timeline(ctx context.Context, id string, count int, cursor string) (*CursoredData[*Tweet], error) {
	return query(ctx, s.c, UserTimeline, pageArgs(id, count, cursor), extractTweets)
}

// Replies returns a page of a user's tweets and replies. count is ignored on the first page.
func (s *UserService) Replies(ctx context.Context, id string, count int, cursor string) (*CursoredData[*Tweet], error) {
	return query(ctx, s.c, UserTimelineAndReplies, pageArgs(id, count, cursor), extractTweets)
}

func isNumericID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
