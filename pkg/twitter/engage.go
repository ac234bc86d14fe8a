package twitter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dukex/flywheel/pkg/otelhelper"
	gotwitter "github.com/g8rswimmer/go-twitter/v2"
	"go.opentelemetry.io/otel/attribute"
)

type Action string

const (
	ActionLike    Action = "like"
	ActionRetweet Action = "retweet"
	ActionReply   Action = "reply"
)

const (
	DefaultEngagementLimit = 5
	MaxEngagementLimit     = 10

	// recent search rejects max_results below 10.
	searchPageSize = 10
)

// EngagementRequest targets an explicit tweet, the results of a recent
// search, or both.
type EngagementRequest struct {
	TweetID     string
	SearchQuery string
	Limit       int
	Action      Action
	Message     string
}

type EngagementResult struct {
	Action  Action          `json:"action"`
	TweetID string          `json:"tweetId"`
	Query   string          `json:"query,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Engage applies each request's action to its targets in order. Requests
// are checked before any call is made, so a reply without a message fails
// the whole batch up front.
func (c *Client) Engage(ctx context.Context, requests []EngagementRequest) ([]EngagementResult, error) {
	results := []EngagementResult{}
	if len(requests) == 0 {
		return results, nil
	}

	for _, req := range requests {
		if req.Action == ActionReply && req.Message == "" {
			return nil, ErrReplyMessageRequired
		}
	}

	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "twitter.Engage")
	defer span.End()

	userID, err := c.currentUserID(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	for _, req := range requests {
		targets, err := c.targets(ctx, req)
		if err != nil {
			otelhelper.SetError(span, err, attribute.String(otelhelper.ActionKey, string(req.Action)))

			return nil, err
		}

		for _, tweetID := range targets {
			data, err := c.apply(ctx, userID, tweetID, req)
			if err != nil {
				otelhelper.SetError(span, err, attribute.String(otelhelper.ActionKey, string(req.Action)))

				return nil, fmt.Errorf("%s on tweet %s failed: %w", req.Action, tweetID, err)
			}

			results = append(results, EngagementResult{
				Action:  req.Action,
				TweetID: tweetID,
				Query:   req.SearchQuery,
				Data:    data,
			})
		}
	}

	return results, nil
}

func (c *Client) targets(ctx context.Context, req EngagementRequest) ([]string, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultEngagementLimit
	}

	targets := []string{}
	if req.TweetID != "" {
		targets = append(targets, req.TweetID)
	}

	if req.SearchQuery == "" || len(targets) >= limit {
		return targets, nil
	}

	found, err := c.api.TweetRecentSearch(ctx, req.SearchQuery, gotwitter.TweetRecentSearchOpts{
		MaxResults:  searchPageSize,
		TweetFields: []gotwitter.TweetField{gotwitter.TweetFieldAuthorID},
	})
	if err != nil {
		return nil, fmt.Errorf("search %q failed: %w", req.SearchQuery, apiError(err))
	}

	if found == nil || found.Raw == nil {
		return targets, nil
	}

	for _, tweet := range found.Raw.Tweets {
		if tweet != nil && tweet.ID != "" {
			targets = append(targets, tweet.ID)
		}

		if len(targets) >= limit {
			break
		}
	}

	return targets, nil
}

func (c *Client) apply(ctx context.Context, userID, tweetID string, req EngagementRequest) (json.RawMessage, error) {
	var data any

	switch req.Action {
	case ActionLike:
		liked, err := c.api.UserLikes(ctx, userID, tweetID)
		if err != nil {
			return nil, apiError(err)
		}

		data = liked.Data
	case ActionRetweet:
		retweeted, err := c.api.UserRetweet(ctx, userID, tweetID)
		if err != nil {
			return nil, apiError(err)
		}

		data = retweeted.Data
	case ActionReply:
		reply, err := c.createTweet(ctx, replyRequest(req.Message, tweetID))
		if err != nil {
			return nil, err
		}

		data = reply
	default:
		return nil, fmt.Errorf("unsupported engagement action %q", req.Action)
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	if string(encoded) == "null" {
		return nil, nil
	}

	return encoded, nil
}
