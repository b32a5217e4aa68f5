package rettiwt

import "context"

// ListService groups list resources.
type ListService struct {
	c *Client
}

// Members returns a page of a list's members.
func (s *ListService) Members(ctx context.Context, id string, count int, cursor string) (*CursoredData[*User], error) {
	return query(ctx, s.c, ListMembers, pageArgs(id, count, cursor), extractUsers)
}

// Tweets returns a page of a list's tweets, most recent first.
func (s *ListService) Tweets(ctx context.Context, id string, count int, cursor string) (*CursoredData[*Tweet], error) {
	return query(ctx, s.c, ListTweets, pageArgs(id, count, cursor), extractTweets)
}
