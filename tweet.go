package rettiwt

import "context"

// TweetService groups tweet resources.
type TweetService struct {
	c *Client
}

// NewTweet is the content of a post.
type NewTweet struct {
	Text string
	// ReplyTo is the id of the tweet being replied to.
	ReplyTo string
	// Quote is the id of the tweet being quoted.
	Quote string
	// MediaIDs are ids returned by Client.Upload.
	MediaIDs []string
}

// Details returns the tweet with the given id, or nil if it does not exist.
func (s *TweetService) Details(ctx context.Context, id string) (*Tweet, error) {
	return details(ctx, s.c, TweetDetails, id, extractTweet)
}

// Like likes a tweet. It reports whether upstream acknowledged the like.
func (s *TweetService) Like(ctx context.Context, id string) (bool, error) {
	return query(ctx, s.c, TweetLike, Params{ParamID: id}, extractBool)
}

// Unlike removes a like.
func (s *TweetService) Unlike(ctx context.Context, id string) (bool, error) {
	return query(ctx, s.c, TweetUnlike, Params{ParamID: id}, extractBool)
}

// Retweet retweets a tweet.
func (s *TweetService) Retweet(ctx context.Context, id string) (bool, error) {
	return query(ctx, s.c, TweetRetweet, Params{ParamID: id}, extractBool)
}

// Unretweet removes a retweet.
func (s *TweetService) Unretweet(ctx context.Context, id string) (bool, error) {
	return query(ctx, s.c, TweetUnretweet, Params{ParamID: id}, extractBool)
}

// Post creates a tweet and returns its id.
func (s *TweetService) Post(ctx context.Context, t NewTweet) (string, error) {
	p := Params{ParamText: t.Text}
	if t.ReplyTo != "" {
		p[ParamReplyTo] = t.ReplyTo
	}
	if t.Quote != "" {
		p[ParamQuote] = t.Quote
	}
	if len(t.MediaIDs) > 0 {
		p[ParamMediaIDs] = t.MediaIDs
	}
	return query(ctx, s.c, TweetPost, p, extractID)
}

// Unpost deletes one of the user's tweets.
func (s *TweetService) Unpost(ctx context.Context, id string) (bool, error) {
	return query(ctx, s.c, TweetUnpost, Params{ParamID: id}, extractBool)
}

// Likers returns a page of users who liked a tweet.
func (s *TweetService) Likers(ctx context.Context, id string, count int, cursor string) (*CursoredData[*User], error) {
	return query(ctx, s.c, TweetLikers, pageArgs(id, count, cursor), extractUsers)
}

// Retweeters returns a page of users who retweeted a tweet.
func (s *TweetService) Retweeters(ctx context.Context, id string, count int, cursor string) (*CursoredData[*User], error) {
	return query(ctx, s.c, TweetRetweeters, pageArgs(id, count, cursor), extractUsers)
}

// Search returns a page of tweets matching filter, most recent first.
func (s *TweetService) Search(ctx context.Context, filter TweetFilter, count int, cursor string) (*CursoredData[*Tweet], error) {
	p := pageArgs("", count, cursor)
	delete(p, ParamID)
	p[ParamFilter] = filter
	return query(ctx, s.c, TweetSearch, p, extractTweets)
}
