package rettiwt

import (
	"context"
	"iter"
	"log/slog"
	"time"
)

// streamState is owned by a single Stream sequence.
type streamState struct {
	cursor      string
	sinceID     string
	nextSinceID string
}

// Stream polls the search resource every interval and yields tweets matching filter
// that were created after Stream was called, each at most once per stream.
//
// The sequence is infinite and pull-driven: nothing is fetched while the consumer is
// not ranging. A fetch error or context cancellation is yielded once as (nil, err) and
// ends the sequence. A sequence cannot be restarted; ranging over it a second time
// starts from fresh state with the original start date.
func (s *TweetService) Stream(ctx context.Context, filter TweetFilter, interval time.Duration) iter.Seq2[*Tweet, error] {
	if interval <= 0 {
		interval = DefaultPollingInterval
	}
	c := s.c
	startDate := c.now()

	return func(yield func(*Tweet, error) bool) {
		var st streamState
		for {
			if err := c.sleep(ctx, interval); err != nil {
				yield(nil, err)
				return
			}

			for {
				f := filter
				f.StartDate = startDate
				f.SinceID = st.sinceID

				page, err := s.Search(ctx, f, 0, st.cursor)
				if err != nil {
					yield(nil, err)
					return
				}
				c.log.Debug("stream poll",
					slog.Int("tweets", len(page.List)),
					slog.String("since_id", st.sinceID),
					slog.Bool("continuation", st.cursor != ""))

				for _, t := range page.List {
					if !yield(t, nil) {
						return
					}
				}

				if st.cursor == "" && len(page.List) > 0 {
					st.nextSinceID = page.List[0].ID
				}
				if len(page.List) == 0 || page.Next == nil {
					break
				}
				st.cursor = page.Next.Value
			}

			st.sinceID = st.nextSinceID
			st.cursor = ""
		}
	}
}
