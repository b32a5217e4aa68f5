package rettiwt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-rettiwt/cache"
	"github.com/anatolykoptev/go-rettiwt/logging"
)

// Cache stores raw responses of detail lookups.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Client is the top-level entry point. It is safe for concurrent use.
type Client struct {
	cfg       Config
	transport Transport
	cache     Cache
	log       *slog.Logger
	closers   []io.Closer

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	Tweet *TweetService
	User  *UserService
	List  *ListService
}

// New creates a fully-wired client.
func New(cfg Config) (*Client, error) {
	cfg.defaults()

	c := &Client{
		cfg:   cfg,
		log:   cfg.Logger,
		cache: cfg.Cache,
		now:   time.Now,
		sleep: sleepContext,
	}

	if c.log == nil {
		logger, closer, err := logging.New(cfg.logConfig())
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		c.log = logger
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}

	c.transport = cfg.Transport
	if c.transport == nil {
		st, err := NewStealthTransport(StealthConfig{
			Proxy:     cfg.Proxy,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			Logger:    c.log,
		})
		if err != nil {
			return nil, fmt.Errorf("transport: %w", err)
		}
		c.transport = st
	}

	if cfg.UseCache && c.cache == nil {
		backend, err := cache.New(cache.Config{URL: cfg.CacheDBURL, TTL: cfg.CacheTTL})
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		c.cache = backend
		c.closers = append(c.closers, backend)
	}

	c.Tweet = &TweetService{c: c}
	c.User = &UserService{c: c}
	c.List = &ListService{c: c}
	return c, nil
}

// Authenticated reports whether the client carries a user credential.
func (c *Client) Authenticated() bool {
	return c.cfg.APIKey != ""
}

// Close releases the cache connection and log file, if any.
func (c *Client) Close() error {
	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// query fetches r and narrows the response with a typed extractor.
func query[T any](ctx context.Context, c *Client, r Resource, p Params, extract func(Resource, []byte) (T, error)) (T, error) {
	body, err := c.Fetch(ctx, r, p)
	if err != nil {
		var zero T
		return zero, err
	}
	return extract(r, body)
}

// details is query for single-entity lookups, served from the cache when enabled.
func details[T any](ctx context.Context, c *Client, r Resource, id string, extract func(Resource, []byte) (T, error)) (T, error) {
	if c.cache == nil || id == "" {
		return query(ctx, c, r, Params{ParamID: id}, extract)
	}

	key := r.String() + ":" + id
	if body, ok, err := c.cache.Get(ctx, key); err != nil {
		c.log.Warn("cache get failed", slog.String("key", key), slog.Any("error", err))
	} else if ok {
		if v, err := extract(r, body); err == nil {
			return v, nil
		}
	}

	body, err := c.Fetch(ctx, r, Params{ParamID: id})
	if err != nil {
		var zero T
		return zero, err
	}
	v, err := extract(r, body)
	if err != nil {
		return v, err
	}
	if err := c.cache.Set(ctx, key, body); err != nil {
		c.log.Warn("cache set failed", slog.String("key", key), slog.Any("error", err))
	}
	return v, nil
}

// pageArgs builds Params for a paginated call.
func pageArgs(id string, count int, cursor string) Params {
	p := Params{ParamID: id}
	if count > 0 {
		p[ParamCount] = count
	}
	if cursor != "" {
		p[ParamCursor] = cursor
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
