package rettiwt

import (
	"fmt"
	"net/http"
)

const (
	graphqlBase = "https://x.com/i/api/graphql"
	restBase    = "https://x.com/i/api/1.1"
	uploadURL   = "https://upload.x.com/i/media/upload.json"
)

// Resource identifies one upstream operation.
type Resource int

const (
	TweetDetails Resource = iota + 1
	TweetLike
	TweetLikers
	TweetPost
	TweetRetweet
	TweetRetweeters
	TweetSearch
	TweetUnlike
	TweetUnpost
	TweetUnretweet
	UserDetailsByUsername
	UserDetailsByID
	UserFollow
	UserUnfollow
	UserFollowers
	UserFollowing
	UserHighlights
	UserLikes
	UserMedia
	UserSubscriptions
	UserTimeline
	UserTimelineAndReplies
	ListMembers
	ListTweets
	MediaUploadInitialize
	MediaUploadAppend
	MediaUploadFinalize
	resourceEnd
)

var resourceNames = map[Resource]string{
	TweetDetails:           "TweetDetails",
	TweetLike:              "TweetLike",
	TweetLikers:            "TweetLikers",
	TweetPost:              "TweetPost",
	TweetRetweet:           "TweetRetweet",
	TweetRetweeters:        "TweetRetweeters",
	TweetSearch:            "TweetSearch",
	TweetUnlike:            "TweetUnlike",
	TweetUnpost:            "TweetUnpost",
	TweetUnretweet:         "TweetUnretweet",
	UserDetailsByUsername:  "UserDetailsByUsername",
	UserDetailsByID:        "UserDetailsByID",
	UserFollow:             "UserFollow",
	UserUnfollow:           "UserUnfollow",
	UserFollowers:          "UserFollowers",
	UserFollowing:          "UserFollowing",
	UserHighlights:         "UserHighlights",
	UserLikes:              "UserLikes",
	UserMedia:              "UserMedia",
	UserSubscriptions:      "UserSubscriptions",
	UserTimeline:           "UserTimeline",
	UserTimelineAndReplies: "UserTimelineAndReplies",
	ListMembers:            "ListMembers",
	ListTweets:             "ListTweets",
	MediaUploadInitialize:  "MediaUploadInitialize",
	MediaUploadAppend:      "MediaUploadAppend",
	MediaUploadFinalize:    "MediaUploadFinalize",
}

func (r Resource) String() string {
	if name, ok := resourceNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Resource(%d)", int(r))
}

// Resources returns every known resource in declaration order.
func Resources() []Resource {
	out := make([]Resource, 0, int(resourceEnd)-1)
	for r := TweetDetails; r < resourceEnd; r++ {
		out = append(out, r)
	}
	return out
}

// Kind is the shape of an extracted result.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindID
	KindTweet
	KindUser
	KindTweets
	KindUsers
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindID:
		return "id"
	case KindTweet:
		return "tweet"
	case KindUser:
		return "user"
	case KindTweets:
		return "tweets"
	case KindUsers:
		return "users"
	}
	return "none"
}

type endpointType int

const (
	gqlQuery endpointType = iota
	gqlMutation
	restForm
	mediaUpload
)

// Descriptor is the static request and response shape of a resource.
type Descriptor struct {
	Resource  Resource
	Operation string
	QueryID   string
	Method    string
	Required  []string
	Optional  []string
	Auth      bool
	Kind      Kind

	// MaxCount caps the requested page size; 0 means the resource takes no count.
	MaxCount int
	// CountNeedsCursor marks resources whose upstream ignores count on the first page.
	CountNeedsCursor bool
	// SortByDate re-sorts extracted tweets newest first.
	SortByDate bool

	endpoint endpointType
	features bool

	// gjson paths into the response
	entityPath   string
	timelinePath []string
	markerPath   string
	idPath       string

	vars func(p Params) map[string]any
}

// URL returns the endpoint URL without query parameters.
func (d Descriptor) URL() string {
	switch d.endpoint {
	case gqlQuery, gqlMutation:
		return fmt.Sprintf("%s/%s/%s", graphqlBase, d.QueryID, d.Operation)
	case mediaUpload:
		return uploadURL
	}
	return restBase + "/" + d.Operation
}

// Describe returns the descriptor of r. It fails only for identifiers outside the
// enumeration.
func Describe(r Resource) (Descriptor, error) {
	d, ok := registry[r]
	if !ok {
		return Descriptor{}, invalidArgument(r, "unknown resource")
	}
	return d, nil
}

// Parameter names accepted in Params.
const (
	ParamID       = "id"
	ParamCount    = "count"
	ParamCursor   = "cursor"
	ParamFilter   = "filter"
	ParamText     = "text"
	ParamReplyTo  = "replyTo"
	ParamQuote    = "quote"
	ParamMediaIDs = "mediaIds"
	ParamSize     = "size"
	ParamMedia    = "media"
	ParamMediaID  = "mediaId"
)

var (
	listParams   = []string{ParamCount, ParamCursor}
	detailParams = []string{ParamID}
)

func withPaging(base map[string]any, p Params) map[string]any {
	if c, ok := p[ParamCursor].(string); ok && c != "" {
		base["cursor"] = c
	}
	if n, ok := p[ParamCount].(int); ok && n > 0 {
		base["count"] = n
	}
	return base
}

var registry = map[Resource]Descriptor{
	TweetDetails: {
		Operation: "TweetResultByRestId", QueryID: "sCU6ckfHY0CyJ4HFjPhjtg",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindTweet,
		Required: detailParams, entityPath: "data.tweetResult.result",
		vars: func(p Params) map[string]any {
			return map[string]any{
				"tweetId":                p[ParamID],
				"withCommunity":          false,
				"includePromotedContent": false,
				"withVoice":              false,
			}
		},
	},
	TweetLike: {
		Operation: "FavoriteTweet", QueryID: "lI07N6Otwv1PhnEgXILM7A",
		Method: http.MethodPost, endpoint: gqlMutation, Kind: KindBool, Auth: true,
		Required: detailParams, markerPath: "data.favorite_tweet",
		vars: func(p Params) map[string]any {
			return map[string]any{"tweet_id": p[ParamID]}
		},
	},
	TweetUnlike: {
		Operation: "UnfavoriteTweet", QueryID: "ZYKSe-w7KEslx3JhSIk5LA",
		Method: http.MethodPost, endpoint: gqlMutation, Kind: KindBool, Auth: true,
		Required: detailParams, markerPath: "data.unfavorite_tweet",
		vars: func(p Params) map[string]any {
			return map[string]any{"tweet_id": p[ParamID]}
		},
	},
	TweetLikers: {
		Operation: "Favoriters", QueryID: "LLkw5EcVutJL6y-2gkz22A",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindUsers, Auth: true,
		Required: detailParams, Optional: listParams, MaxCount: 100,
		timelinePath: []string{"data.favoriters_timeline.timeline"},
		vars: func(p Params) map[string]any {
			return withPaging(map[string]any{
				"tweetId":                p[ParamID],
				"includePromotedContent": false,
			}, p)
		},
	},
	TweetRetweeters: {
		Operation: "Retweeters", QueryID: "i-CI8t2pJD15euZJErEDrg",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindUsers, Auth: true,
		Required: detailParams, Optional: listParams, MaxCount: 100,
		timelinePath: []string{"data.retweeters_timeline.timeline"},
		vars: func(p Params) map[string]any {
			return withPaging(map[string]any{
				"tweetId":                p[ParamID],
				"includePromotedContent": true,
			}, p)
		},
	},
	TweetPost: {
		Operation: "CreateTweet", QueryID: "oB-5XsHNAbjvARJEc8CZFw",
		Method: http.MethodPost, endpoint: gqlMutation, Kind: KindID, Auth: true, features: true,
		Required: []string{ParamText}, Optional: []string{ParamReplyTo, ParamQuote, ParamMediaIDs},
		idPath: "data.create_tweet.tweet_results.result.rest_id",
		vars:   createTweetVars,
	},
	TweetUnpost: {
		Operation: "DeleteTweet", QueryID: "VaenaVgh5q5ih7kvyVjgtg",
		Method: http.MethodPost, endpoint: gqlMutation, Kind: KindBool, Auth: true,
		Required: detailParams, markerPath: "data.delete_tweet",
		vars: func(p Params) map[string]any {
			return map[string]any{"tweet_id": p[ParamID], "dark_request": false}
		},
	},
	TweetRetweet: {
		Operation: "CreateRetweet", QueryID: "ojPdsZsimiJrUGLR1sjUtA",
		Method: http.MethodPost, endpoint: gqlMutation, Kind: KindBool, Auth: true,
		Required: detailParams, markerPath: "data.create_retweet.retweet_results.result",
		vars: func(p Params) map[string]any {
			return map[string]any{"tweet_id": p[ParamID], "dark_request": false}
		},
	},
	TweetUnretweet: {
		Operation: "DeleteRetweet", QueryID: "iQtK4dl5hBmXewYZuEOKVw",
		Method: http.MethodPost, endpoint: gqlMutation, Kind: KindBool, Auth: true,
		Required: detailParams, markerPath: "data.unretweet.source_tweet_results.result",
		vars: func(p Params) map[string]any {
			return map[string]any{"source_tweet_id": p[ParamID], "dark_request": false}
		},
	},
	TweetSearch: {
		Operation: "SearchTimeline", QueryID: "AIdc203rPpK_k_2KWSdm7g",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindTweets, Auth: true,
		Required: []string{ParamFilter}, Optional: listParams, MaxCount: 20, SortByDate: true,
		timelinePath: []string{"data.search_by_raw_query.search_timeline.timeline"},
		vars: func(p Params) map[string]any {
			f := filterParam(p)
			product := "Latest"
			if f.Top {
				product = "Top"
			}
			return withPaging(map[string]any{
				"rawQuery":    f.Query(),
				"querySource": "typed_query",
				"product":     product,
			}, p)
		},
	},
	UserDetailsByUsername: {
		Operation: "UserByScreenName", QueryID: "1VOOyvKkiI3FMmkeDNxM9A",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindUser,
		Required: detailParams, entityPath: "data.user.result",
		vars: func(p Params) map[string]any {
			return map[string]any{"screen_name": p[ParamID], "withSafetyModeUserFields": true}
		},
	},
	UserDetailsByID: {
		Operation: "UserByRestId", QueryID: "WJ7rCtezBVT6nk6VM5R8Bw",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindUser,
		Required: detailParams, entityPath: "data.user.result",
		vars: func(p Params) map[string]any {
			return map[string]any{"userId": p[ParamID], "withSafetyModeUserFields": true}
		},
	},
	UserFollow: {
		Operation: "friendships/create.json",
		Method:    http.MethodPost, endpoint: restForm, Kind: KindBool, Auth: true,
		Required: detailParams, markerPath: "id_str",
		vars: func(p Params) map[string]any {
			return map[string]any{"user_id": p[ParamID]}
		},
	},
	UserUnfollow: {
		Operation: "friendships/destroy.json",
		Method:    http.MethodPost, endpoint: restForm, Kind: KindBool, Auth: true,
		Required: detailParams, markerPath: "id_str",
		vars: func(p Params) map[string]any {
			return map[string]any{"user_id": p[ParamID]}
		},
	},
	UserFollowers: {
		Operation: "Followers", QueryID: "Elc_-qTARceHpztqhI9PQA",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindUsers, Auth: true,
		Required: detailParams, Optional: listParams, MaxCount: 100,
		timelinePath: []string{"data.user.result.timeline.timeline"},
		vars:         userListVars,
	},
	UserFollowing: {
		Operation: "Following", QueryID: "C1qZ6bs-L3oc_TKSZyxkXQ",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindUsers, Auth: true,
		Required: detailParams, Optional: listParams, MaxCount: 100,
		timelinePath: []string{"data.user.result.timeline.timeline"},
		vars:         userListVars,
	},
	UserSubscriptions: {
		Operation: "UserCreatorSubscriptions", QueryID: "7qcGrVKpcooih_VvJLA1ng",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindUsers, Auth: true,
		Required: detailParams, Optional: listParams, MaxCount: 100,
		timelinePath: []string{"data.user.result.timeline.timeline"},
		vars:         userListVars,
	},
	UserHighlights: {
		Operation: "UserHighlightsTweets", QueryID: "tHFm_XZc_NNi-CfUThwbNw",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindTweets, Auth: true,
		Required: detailParams, Optional: listParams, MaxCount: 100,
		timelinePath: userTimelinePaths,
		vars:         userTimelineVars,
	},
	UserLikes: {
		Operation: "Likes", QueryID: "IohM3gxQHfvWePH5E3KuNA",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindTweets, Auth: true,
		Required: detailParams, Optional: listParams, MaxCount: 100,
		timelinePath: userTimelinePaths,
		vars:         userTimelineVars,
	},
	UserMedia: {
		Operation: "UserMedia", QueryID: "BGmkmGDG0kZPM-aoQtNTTw",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindTweets, Auth: true,
		Required: detailParams, Optional: listParams, MaxCount: 100, CountNeedsCursor: true,
		timelinePath: userTimelinePaths,
		vars:         userTimelineVars,
	},
	UserTimeline: {
		Operation: "UserTweets", QueryID: "HeWHY26ItCfUmm1e6ITjeA",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindTweets,
		Required: detailParams, Optional: listParams, MaxCount: 20, CountNeedsCursor: true,
		timelinePath: userTimelinePaths,
		vars:         userTimelineVars,
	},
	UserTimelineAndReplies: {
		Operation: "UserTweetsAndReplies", QueryID: "OAx9yEcW3JA9bPo63pcYlA",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindTweets, Auth: true,
		Required: detailParams, Optional: listParams, MaxCount: 20, CountNeedsCursor: true,
		timelinePath: userTimelinePaths,
		vars:         userTimelineVars,
	},
	ListMembers: {
		Operation: "ListMembers", QueryID: "BQp2IEYkgxuSxqbTAr1e1g",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindUsers, Auth: true,
		Required: detailParams, Optional: listParams, MaxCount: 100,
		timelinePath: []string{"data.list.members_timeline.timeline"},
		vars:         listVars,
	},
	ListTweets: {
		Operation: "ListLatestTweetsTimeline", QueryID: "BkauSnPUDQTeeJsxq17opA",
		Method: http.MethodGet, endpoint: gqlQuery, Kind: KindTweets, Auth: true,
		Required: detailParams, Optional: listParams, MaxCount: 100, SortByDate: true,
		timelinePath: []string{"data.list.tweets_timeline.timeline"},
		vars:         listVars,
	},
	MediaUploadInitialize: {
		Operation: "INIT", Method: http.MethodPost, endpoint: mediaUpload, Kind: KindID, Auth: true,
		Required: []string{ParamSize}, idPath: "media_id_string",
	},
	MediaUploadAppend: {
		Operation: "APPEND", Method: http.MethodPost, endpoint: mediaUpload, Kind: KindNone, Auth: true,
		Required: []string{ParamMediaID, ParamMedia},
	},
	MediaUploadFinalize: {
		Operation: "FINALIZE", Method: http.MethodPost, endpoint: mediaUpload, Kind: KindNone, Auth: true,
		Required: []string{ParamMediaID},
	},
}

func init() {
	for r, d := range registry {
		d.Resource = r
		registry[r] = d
	}
}

var userTimelinePaths = []string{
	"data.user.result.timeline_v2.timeline",
	"data.user.result.timeline.timeline",
}

func userListVars(p Params) map[string]any {
	return withPaging(map[string]any{
		"userId":                 p[ParamID],
		"includePromotedContent": false,
	}, p)
}

func userTimelineVars(p Params) map[string]any {
	return withPaging(map[string]any{
		"userId":                                 p[ParamID],
		"includePromotedContent":                 false,
		"withQuickPromoteEligibilityTweetFields": true,
		"withVoice":                              true,
		"withV2Timeline":                         true,
	}, p)
}

func listVars(p Params) map[string]any {
	return withPaging(map[string]any{"listId": p[ParamID]}, p)
}

func createTweetVars(p Params) map[string]any {
	vars := map[string]any{
		"tweet_text":              p[ParamText],
		"dark_request":            false,
		"semantic_annotation_ids": []any{},
		"media": map[string]any{
			"media_entities":     []any{},
			"possibly_sensitive": false,
		},
	}
	if ids, ok := p[ParamMediaIDs].([]string); ok && len(ids) > 0 {
		entities := make([]any, 0, len(ids))
		for _, id := range ids {
			entities = append(entities, map[string]any{"media_id": id, "tagged_users": []any{}})
		}
		vars["media"] = map[string]any{"media_entities": entities, "possibly_sensitive": false}
	}
	if reply, ok := p[ParamReplyTo].(string); ok && reply != "" {
		vars["reply"] = map[string]any{
			"in_reply_to_tweet_id":   reply,
			"exclude_reply_user_ids": []any{},
		}
	}
	if quote, ok := p[ParamQuote].(string); ok && quote != "" {
		vars["attachment_url"] = "https://x.com/i/status/" + quote
	}
	return vars
}

// gqlFeatures returns the GraphQL feature flags sent with every query.
func gqlFeatures() map[string]any {
	return map[string]any{
		"articles_preview_enabled":                                                true,
		"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
		"communities_web_enable_tweet_community_results_fetch":                    true,
		"creator_subscriptions_quote_tweet_preview_enabled":                       false,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"longform_notetweets_consumption_enabled":                                 true,
		"longform_notetweets_inline_media_enabled":                                true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"premium_content_api_read_enabled":                                        false,
		"profile_label_improvements_pcf_label_in_post_enabled":                    true,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"responsive_web_enhance_cards_enabled":                                    false,
		"responsive_web_graphql_exclude_directive_enabled":                        true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
		"responsive_web_grok_analyze_post_followups_enabled":                      false,
		"responsive_web_grok_share_attachment_enabled":                            false,
		"responsive_web_twitter_article_tweet_consumption_enabled":                true,
		"rweb_tipjar_consumption_enabled":                                         true,
		"rweb_video_timestamps_enabled":                                           true,
		"standardized_nudges_misinfo":                                             true,
		"tweet_awards_web_tipping_enabled":                                        false,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"verified_phone_label_enabled":                                            false,
		"view_counts_everywhere_api_enabled":                                      true,
	}
}
