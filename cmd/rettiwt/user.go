package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-rettiwt"
)

// pageFunc is the shape shared by every paginated service method.
type pageFunc[T any] func(ctx context.Context, id string, count int, cursor string) (*rettiwt.CursoredData[T], error)

// newPageCommand builds a command printing one page, or --limit items across pages.
func newPageCommand[T any](use, short string, pick func(*rettiwt.Client) pageFunc[T]) *cobra.Command {
	var (
		count  int
		cursor string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			list := pick(client)
			if limit > 0 {
				items, err := rettiwt.Collect(cmd.Context(), limit, func(ctx context.Context, c string) (*rettiwt.CursoredData[T], error) {
					return list(ctx, args[0], count, c)
				})
				if err != nil {
					return err
				}
				return printJSON(items)
			}
			page, err := list(cmd.Context(), args[0], count, cursor)
			if err != nil {
				return err
			}
			return printJSON(page)
		},
	}
	cmd.Flags().IntVar(&count, "count", 20, "page size")
	cmd.Flags().StringVar(&cursor, "cursor", "", "page cursor")
	cmd.Flags().IntVar(&limit, "limit", 0, "follow cursors until this many items are collected")
	return cmd
}

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Read and act on users",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "details <id|username>",
			Short: "Show a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := newClient()
				if err != nil {
					return err
				}
				defer client.Close()

				u, err := client.User.Details(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if u == nil {
					return fmt.Errorf("user %s not found", args[0])
				}
				return printJSON(u)
			},
		},
		newUserActionCommand("follow", "Follow a user", func(s *rettiwt.UserService) func(context.Context, string) (bool, error) { return s.Follow }),
		newUserActionCommand("unfollow", "Unfollow a user", func(s *rettiwt.UserService) func(context.Context, string) (bool, error) { return s.Unfollow }),
		newPageCommand("followers <id>", "List followers", func(c *rettiwt.Client) pageFunc[*rettiwt.User] { return c.User.Followers }),
		newPageCommand("following <id>", "List followed accounts", func(c *rettiwt.Client) pageFunc[*rettiwt.User] { return c.User.Following }),
		newPageCommand("subscriptions <id>", "List subscriptions", func(c *rettiwt.Client) pageFunc[*rettiwt.User] { return c.User.Subscriptions }),
		newPageCommand("highlights <id>", "List highlighted tweets", func(c *rettiwt.Client) pageFunc[*rettiwt.Tweet] { return c.User.Highlights }),
		newPageCommand("likes <id>", "List liked tweets", func(c *rettiwt.Client) pageFunc[*rettiwt.Tweet] { return c.User.Likes }),
		newPageCommand("media <id>", "List media tweets", func(c *rettiwt.Client) pageFunc[*rettiwt.Tweet] { return c.User.Media }),
		newPageCommand("timeline <id>", "List tweets", func(c *rettiwt.Client) pageFunc[*rettiwt.Tweet] { return c.User.Timeline }),
		newPageCommand("replies <id>", "List tweets and replies", func(c *rettiwt.Client) pageFunc[*rettiwt.Tweet] { return c.User.Replies }),
	)
	return cmd
}

func newUserActionCommand(use, short string, action func(*rettiwt.UserService) func(context.Context, string) (bool, error)) *cobra.Command {
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

			ok, err := action(client.User)(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(map[string]bool{"ok": ok})
		},
	}
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Read lists",
	}
	cmd.AddCommand(
		newPageCommand("members <id>", "List members", func(c *rettiwt.Client) pageFunc[*rettiwt.User] { return c.List.Members }),
		newPageCommand("tweets <id>", "List tweets", func(c *rettiwt.Client) pageFunc[*rettiwt.Tweet] { return c.List.Tweets }),
	)
	return cmd
}

func newUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload media and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			id, err := client.UploadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(map[string]string{"id": id})
		},
	}
}
