package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-rettiwt"
	"github.com/anatolykoptev/go-rettiwt/archive"
)

func newTweetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tweet",
		Short: "Read, search and act on tweets",
	}
	cmd.AddCommand(
		newTweetDetailsCommand(),
		newTweetSearchCommand(),
		newTweetStreamCommand(),
		newTweetPostCommand(),
		newTweetActionCommand("like", "Like a tweet", func(s *rettiwt.TweetService) func(context.Context, string) (bool, error) { return s.Like }),
		newTweetActionCommand("unlike", "Remove a like", func(s *rettiwt.TweetService) func(context.Context, string) (bool, error) { return s.Unlike }),
		newTweetActionCommand("retweet", "Retweet a tweet", func(s *rettiwt.TweetService) func(context.Context, string) (bool, error) { return s.Retweet }),
		newTweetActionCommand("unretweet", "Remove a retweet", func(s *rettiwt.TweetService) func(context.Context, string) (bool, error) { return s.Unretweet }),
		newTweetActionCommand("unpost", "Delete a tweet", func(s *rettiwt.TweetService) func(context.Context, string) (bool, error) { return s.Unpost }),
		newTweetUsersCommand("likers", "List users who liked a tweet", func(s *rettiwt.TweetService) pageFunc[*rettiwt.User] { return s.Likers }),
		newTweetUsersCommand("retweeters", "List users who retweeted a tweet", func(s *rettiwt.TweetService) pageFunc[*rettiwt.User] { return s.Retweeters }),
	)
	return cmd
}

func newTweetDetailsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "details <id>",
		Short: "Show a tweet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			t, err := client.Tweet.Details(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if t == nil {
				return fmt.Errorf("tweet %s not found", args[0])
			}
			return printJSON(t)
		},
	}
}

func addFilterFlags(cmd *cobra.Command, f *rettiwt.TweetFilter) {
	fl := cmd.Flags()
	fl.StringSliceVar(&f.FromUsers, "from", nil, "authors")
	fl.StringSliceVar(&f.ToUsers, "to", nil, "reply targets")
	fl.StringSliceVar(&f.Mentions, "mention", nil, "mentioned users")
	fl.StringSliceVar(&f.Hashtags, "hashtag", nil, "hashtags")
	fl.StringSliceVar(&f.ExcludeWords, "exclude", nil, "excluded words")
	fl.StringVar(&f.IncludePhrase, "phrase", "", "exact phrase")
	fl.StringVar(&f.Language, "lang", "", "language code")
	fl.IntVar(&f.MinLikes, "min-likes", 0, "minimum likes")
	fl.BoolVar(&f.Replies, "replies", false, "include replies")
	fl.BoolVar(&f.OnlyLinks, "links", false, "only tweets with links")
	fl.BoolVar(&f.Top, "top", false, "search the Top tab instead of Latest")
}

func newTweetSearchCommand() *cobra.Command {
	var (
		filter rettiwt.TweetFilter
		count  int
		cursor string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "search [words...]",
		Short: "Search tweets",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.IncludeWords = args
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			if limit > 0 {
				tweets, err := rettiwt.Collect(cmd.Context(), limit, func(ctx context.Context, c string) (*rettiwt.CursoredData[*rettiwt.Tweet], error) {
					return client.Tweet.Search(ctx, filter, count, c)
				})
				if err != nil {
					return err
				}
				return printJSON(tweets)
			}
			page, err := client.Tweet.Search(cmd.Context(), filter, count, cursor)
			if err != nil {
				return err
			}
			return printJSON(page)
		},
	}
	addFilterFlags(cmd, &filter)
	cmd.Flags().IntVar(&count, "count", 20, "page size")
	cmd.Flags().StringVar(&cursor, "cursor", "", "page cursor")
	cmd.Flags().IntVar(&limit, "limit", 0, "follow cursors until this many tweets are collected")
	return cmd
}

func newTweetStreamCommand() *cobra.Command {
	var (
		filter   rettiwt.TweetFilter
		interval time.Duration
		save     bool
	)
	cmd := &cobra.Command{
		Use:   "stream [words...]",
		Short: "Poll for new tweets matching a filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.IncludeWords = args
			cfg := loadConfig()
			client, err := rettiwt.New(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			var store *archive.Store
			if save {
				store, err = archive.Open(cfg.DataDBURL)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			for t, err := range client.Tweet.Stream(ctx, filter, interval) {
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				if store != nil {
					if err := store.Save(ctx, t); err != nil {
						return fmt.Errorf("archive: %w", err)
					}
				}
				if err := printJSON(t); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addFilterFlags(cmd, &filter)
	cmd.Flags().DurationVar(&interval, "interval", rettiwt.DefaultPollingInterval, "polling interval")
	cmd.Flags().BoolVar(&save, "archive", false, "archive streamed tweets into --data-db")
	return cmd
}

func newTweetPostCommand() *cobra.Command {
	var (
		t     rettiwt.NewTweet
		media []string
	)
	cmd := &cobra.Command{
		Use:   "post <text>",
		Short: "Post a tweet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			for _, path := range media {
				id, err := client.UploadFile(cmd.Context(), path)
				if err != nil {
					return err
				}
				t.MediaIDs = append(t.MediaIDs, id)
			}
			t.Text = args[0]
			id, err := client.Tweet.Post(cmd.Context(), t)
			if err != nil {
				return err
			}
			return printJSON(map[string]string{"id": id})
		},
	}
	cmd.Flags().StringVar(&t.ReplyTo, "reply-to", "", "tweet id to reply to")
	cmd.Flags().StringVar(&t.Quote, "quote", "", "tweet id to quote")
	cmd.Flags().StringSliceVar(&media, "media", nil, "media files to attach")
	return cmd
}

func newTweetActionCommand(use, short string, action func(*rettiwt.TweetService) func(context.Context, string) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			ok, err := action(client.Tweet)(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(map[string]bool{"ok": ok})
		},
	}
}

func newTweetUsersCommand(use, short string, list func(*rettiwt.TweetService) pageFunc[*rettiwt.User]) *cobra.Command {
	return newPageCommand(use+" <id>", short, func(c *rettiwt.Client) pageFunc[*rettiwt.User] { return list(c.Tweet) })
}
