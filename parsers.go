package rettiwt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const createdAtLayout = "Mon Jan 02 15:04:05 +0000 2006"

// --- Timeline types ---

type timelineObj struct {
	Instructions []timelineInstruction `json:"instructions"`
}

type timelineInstruction struct {
	Type    string          `json:"type"`
	Entries []timelineEntry `json:"entries"`
	Entry   *timelineEntry  `json:"entry"`
}

type timelineEntry struct {
	EntryID   string          `json:"entryId"`
	SortIndex string          `json:"sortIndex"`
	Content   timelineContent `json:"content"`
}

type timelineContent struct {
	EntryType   string          `json:"entryType"`
	TypeName    string          `json:"__typename"`
	ItemContent json.RawMessage `json:"itemContent"`
	Items       []struct {
		Item struct {
			ItemContent json.RawMessage `json:"itemContent"`
		} `json:"item"`
	} `json:"items"`
	Value      string `json:"value"`
	CursorType string `json:"cursorType"`
	Operation  struct {
		Cursor struct {
			Value      string `json:"value"`
			CursorType string `json:"cursorType"`
		} `json:"cursor"`
	} `json:"operation"`
}

type userResult struct {
	TypeName string `json:"__typename"`
	ID       string `json:"id"`
	RestID   string `json:"rest_id"`
	Core     struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
		CreatedAt  string `json:"created_at"`
	} `json:"core"`
	Avatar struct {
		ImageURL string `json:"image_url"`
	} `json:"avatar"`
	Location struct {
		Location string `json:"location"`
	} `json:"location"`
	Legacy struct {
		Name             string   `json:"name"`
		ScreenName       string   `json:"screen_name"`
		FollowersCount   int      `json:"followers_count"`
		FriendsCount     int      `json:"friends_count"`
		StatusesCount    int      `json:"statuses_count"`
		FavouritesCount  int      `json:"favourites_count"`
		MediaCount       int      `json:"media_count"`
		CreatedAt        string   `json:"created_at"`
		Verified         bool     `json:"verified"`
		Description      string   `json:"description"`
		Location         string   `json:"location"`
		ProfileImageURL  string   `json:"profile_image_url_https"`
		ProfileBannerURL string   `json:"profile_banner_url"`
		PinnedTweetIDs   []string `json:"pinned_tweet_ids_str"`
	} `json:"legacy"`
	IsBlueVerified bool `json:"is_blue_verified"`
}

type mediaEntity struct {
	Type          string `json:"type"`
	MediaURLHTTPS string `json:"media_url_https"`
	VideoInfo     struct {
		Variants []struct {
			Bitrate     int    `json:"bitrate"`
			ContentType string `json:"content_type"`
			URL         string `json:"url"`
		} `json:"variants"`
	} `json:"video_info"`
}

type tweetResult struct {
	TypeName string `json:"__typename"`
	RestID   string `json:"rest_id"`
	// Tweet is set on TweetWithVisibilityResults wrappers.
	Tweet *tweetResult `json:"tweet"`
	Core  struct {
		UserResults struct {
			Result userResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	Legacy struct {
		FullText             string `json:"full_text"`
		CreatedAt            string `json:"created_at"`
		Lang                 string `json:"lang"`
		FavoriteCount        int    `json:"favorite_count"`
		RetweetCount         int    `json:"retweet_count"`
		QuoteCount           int    `json:"quote_count"`
		ReplyCount           int    `json:"reply_count"`
		BookmarkCount        int    `json:"bookmark_count"`
		UserIDStr            string `json:"user_id_str"`
		InReplyToStatusIDStr string `json:"in_reply_to_status_id_str"`
		QuotedStatusIDStr    string `json:"quoted_status_id_str"`
		Entities             struct {
			Hashtags []struct {
				Text string `json:"text"`
			} `json:"hashtags"`
			Symbols []struct {
				Text string `json:"text"`
			} `json:"symbols"`
			UserMentions []struct {
				ScreenName string `json:"screen_name"`
			} `json:"user_mentions"`
			URLs []struct {
				ExpandedURL string `json:"expanded_url"`
			} `json:"urls"`
		} `json:"entities"`
		ExtendedEntities struct {
			Media []mediaEntity `json:"media"`
		} `json:"extended_entities"`
		RetweetedStatusResult struct {
			Result *tweetResult `json:"result"`
		} `json:"retweeted_status_result"`
	} `json:"legacy"`
	NoteTweet struct {
		NoteTweetResults struct {
			Result struct {
				Text string `json:"text"`
			} `json:"result"`
		} `json:"note_tweet_results"`
	} `json:"note_tweet"`
	Views struct {
		Count string `json:"count"`
	} `json:"views"`
}

// --- Extraction helpers ---

// timelineEntries flattens added, pinned and replaced entries in instruction order.
func timelineEntries(tl timelineObj) []timelineEntry {
	var entries []timelineEntry
	for _, instruction := range tl.Instructions {
		entries = append(entries, instruction.Entries...)
		if instruction.Entry != nil {
			entries = append(entries, *instruction.Entry)
		}
	}
	return entries
}

// bottomCursor returns the cursor value if entry is a bottom cursor.
func bottomCursor(entry timelineEntry) (string, bool) {
	c := entry.Content
	if c.EntryType == "TimelineTimelineCursor" || c.TypeName == "TimelineTimelineCursor" {
		if c.CursorType == "Bottom" || strings.Contains(entry.EntryID, "cursor-bottom") {
			return c.Value, true
		}
		return "", false
	}
	if c.Operation.Cursor.CursorType == "Bottom" {
		return c.Operation.Cursor.Value, true
	}
	return "", false
}

// itemContents returns the item payloads of a single entry or a module entry.
func itemContents(entry timelineEntry) []json.RawMessage {
	if strings.HasPrefix(entry.EntryID, "promoted-") {
		return nil
	}
	var out []json.RawMessage
	if entry.Content.ItemContent != nil {
		out = append(out, entry.Content.ItemContent)
	}
	for _, it := range entry.Content.Items {
		if it.Item.ItemContent != nil {
			out = append(out, it.Item.ItemContent)
		}
	}
	return out
}

func extractUsersFromTimeline(tl timelineObj) ([]*User, string) {
	var users []*User
	var next string

	for _, entry := range timelineEntries(tl) {
		if v, ok := bottomCursor(entry); ok {
			next = v
			continue
		}
		for _, raw := range itemContents(entry) {
			var item struct {
				TypeName    string `json:"__typename"`
				UserResults struct {
					Result userResult `json:"result"`
				} `json:"user_results"`
			}
			if err := json.Unmarshal(raw, &item); err != nil {
				continue
			}
			if item.TypeName != "TimelineUser" {
				continue
			}
			u, err := parseUserResult(item.UserResults.Result)
			if err != nil {
				continue
			}
			users = append(users, u)
		}
	}
	return users, next
}

func extractTweetsFromTimeline(tl timelineObj) ([]*Tweet, string) {
	var tweets []*Tweet
	var next string

	for _, entry := range timelineEntries(tl) {
		if v, ok := bottomCursor(entry); ok {
			next = v
			continue
		}
		for _, raw := range itemContents(entry) {
			var item struct {
				TypeName     string `json:"__typename"`
				TweetResults struct {
					Result tweetResult `json:"result"`
				} `json:"tweet_results"`
			}
			if err := json.Unmarshal(raw, &item); err != nil {
				continue
			}
			if item.TypeName != "TimelineTweet" {
				continue
			}
			t, err := parseTweetResult(&item.TweetResults.Result)
			if err != nil {
				continue
			}
			tweets = append(tweets, t)
		}
	}
	return tweets, next
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(createdAtLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseUserResult(r userResult) (*User, error) {
	if r.TypeName == "UserUnavailable" {
		return nil, fmt.Errorf("user unavailable (suspended or restricted)")
	}
	if r.RestID == "" {
		return nil, fmt.Errorf("empty user rest_id (typename=%s)", r.TypeName)
	}
	u := &User{
		ID:              r.RestID,
		UserName:        firstNonEmpty(r.Core.ScreenName, r.Legacy.ScreenName),
		FullName:        firstNonEmpty(r.Core.Name, r.Legacy.Name),
		Description:     strings.TrimSpace(r.Legacy.Description),
		Location:        firstNonEmpty(r.Location.Location, r.Legacy.Location),
		CreatedAt:       parseTime(firstNonEmpty(r.Core.CreatedAt, r.Legacy.CreatedAt)),
		FollowersCount:  r.Legacy.FollowersCount,
		FollowingsCount: r.Legacy.FriendsCount,
		StatusesCount:   r.Legacy.StatusesCount,
		LikeCount:       r.Legacy.FavouritesCount,
		MediaCount:      r.Legacy.MediaCount,
		IsVerified:      r.Legacy.Verified || r.IsBlueVerified,
		ProfileImage:    firstNonEmpty(r.Avatar.ImageURL, r.Legacy.ProfileImageURL),
		ProfileBanner:   r.Legacy.ProfileBannerURL,
	}
	if len(r.Legacy.PinnedTweetIDs) > 0 {
		u.PinnedTweet = r.Legacy.PinnedTweetIDs[0]
	}
	return u, nil
}

func parseTweetResult(r *tweetResult) (*Tweet, error) {
	if r.TypeName == "TweetWithVisibilityResults" && r.Tweet != nil {
		r = r.Tweet
	}
	if r.TypeName == "TweetTombstone" || r.TypeName == "TweetUnavailable" {
		return nil, fmt.Errorf("tweet unavailable (%s)", r.TypeName)
	}
	if r.RestID == "" {
		return nil, fmt.Errorf("empty tweet rest_id")
	}

	views := 0
	if r.Views.Count != "" {
		views, _ = strconv.Atoi(r.Views.Count)
	}

	t := &Tweet{
		ID:        r.RestID,
		AuthorID:  r.Legacy.UserIDStr,
		Text:      firstNonEmpty(r.NoteTweet.NoteTweetResults.Result.Text, r.Legacy.FullText),
		Lang:      r.Legacy.Lang,
		CreatedAt: parseTime(r.Legacy.CreatedAt),
		ReplyTo:   r.Legacy.InReplyToStatusIDStr,
		QuotedID:  r.Legacy.QuotedStatusIDStr,
		Views:     views,
		Likes:     r.Legacy.FavoriteCount,
		Retweets:  r.Legacy.RetweetCount,
		Quotes:    r.Legacy.QuoteCount,
		Replies:   r.Legacy.ReplyCount,
		Bookmarks: r.Legacy.BookmarkCount,
		Media:     parseMedia(r.Legacy.ExtendedEntities.Media),
	}
	if author, err := parseUserResult(r.Core.UserResults.Result); err == nil {
		t.Author = author
		if t.AuthorID == "" {
			t.AuthorID = author.ID
		}
	}
	if rt := r.Legacy.RetweetedStatusResult.Result; rt != nil {
		if inner, err := parseTweetResult(rt); err == nil {
			t.RetweetedID = inner.ID
		}
	}

	e := r.Legacy.Entities
	for _, h := range e.Hashtags {
		t.Hashtags = append(t.Hashtags, h.Text)
	}
	for _, s := range e.Symbols {
		t.Cashtags = append(t.Cashtags, s.Text)
	}
	for _, m := range e.UserMentions {
		t.Mentions = append(t.Mentions, m.ScreenName)
	}
	for _, u := range e.URLs {
		if u.ExpandedURL != "" {
			t.URLs = append(t.URLs, u.ExpandedURL)
		}
	}
	return t, nil
}

// parseMedia picks the photo URL, or the highest bitrate mp4 variant for videos and gifs.
func parseMedia(entities []mediaEntity) []Media {
	var out []Media
	for _, m := range entities {
		item := Media{Type: MediaType(m.Type), URL: m.MediaURLHTTPS}
		if m.Type == string(MediaVideo) || m.Type == string(MediaGIF) {
			best := -1
			for _, v := range m.VideoInfo.Variants {
				if v.ContentType != "video/mp4" || v.Bitrate < best {
					continue
				}
				best = v.Bitrate
				item.URL = v.URL
			}
		}
		out = append(out, item)
	}
	return out
}
