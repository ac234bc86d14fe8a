package twitter

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dukex/flywheel/pkg/otelhelper"
	gotwitter "github.com/g8rswimmer/go-twitter/v2"
	"go.opentelemetry.io/otel/attribute"
)

type PublishRequest struct {
	Tweet       string
	AltText     string
	ImageBase64 string
	Thread      []string
}

// Tweet is a created tweet as returned by the v2 API.
type Tweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type PublishResult struct {
	Tweet   Tweet   `json:"tweet"`
	MediaID string  `json:"mediaId,omitempty"`
	Thread  []Tweet `json:"thread,omitempty"`
}

// Publish posts a tweet, attaching the image when one is given, then posts
// each thread entry as a reply to the previous tweet.
func (c *Client) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "twitter.Publish")
	defer span.End()

	result := &PublishResult{}

	if req.ImageBase64 != "" {
		mediaID, err := c.uploadMedia(ctx, req.ImageBase64, req.AltText)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, err
		}

		result.MediaID = mediaID
	}

	first := gotwitter.CreateTweetRequest{Text: req.Tweet}
	if result.MediaID != "" {
		first.Media = &gotwitter.CreateTweetMedia{IDs: []string{result.MediaID}}
	}

	tweet, err := c.createTweet(ctx, first)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	result.Tweet = tweet
	span.SetAttributes(attribute.String(otelhelper.TweetIDKey, tweet.ID))

	replyTo := tweet.ID
	for _, text := range req.Thread {
		reply, err := c.createTweet(ctx, replyRequest(text, replyTo))
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, fmt.Errorf("failed to publish thread after %d of %d replies: %w", len(result.Thread), len(req.Thread), err)
		}

		result.Thread = append(result.Thread, reply)
		replyTo = reply.ID
	}

	return result, nil
}

func (c *Client) uploadMedia(ctx context.Context, imageBase64, altText string) (string, error) {
	uploaded, err := c.postForm(ctx, c.uploadURL("/1.1/media/upload.json"), url.Values{
		"media_data":     {imageBase64},
		"media_category": {"tweet_image"},
	})
	if err != nil {
		return "", fmt.Errorf("media upload failed: %w", err)
	}

	mediaID := uploaded.Get("media_id_string").String()
	if mediaID == "" {
		return "", fmt.Errorf("%w: media upload returned no media id", ErrUnexpectedResponse)
	}

	if altText != "" {
		_, err := c.postJSON(ctx, c.uploadURL("/1.1/media/metadata/create.json"), map[string]any{
			"media_id": mediaID,
			"alt_text": map[string]string{"text": altText},
		})
		if err != nil {
			return "", fmt.Errorf("media alt text failed: %w", err)
		}
	}

	return mediaID, nil
}

func replyRequest(text, inReplyTo string) gotwitter.CreateTweetRequest {
	return gotwitter.CreateTweetRequest{
		Text:  text,
		Reply: &gotwitter.CreateTweetReply{InReplyToTweetID: inReplyTo},
	}
}

func (c *Client) createTweet(ctx context.Context, req gotwitter.CreateTweetRequest) (Tweet, error) {
	created, err := c.api.CreateTweet(ctx, req)
	if err != nil {
		return Tweet{}, apiError(err)
	}

	if created == nil || created.Tweet == nil || created.Tweet.ID == "" {
		return Tweet{}, fmt.Errorf("%w: tweet created without id", ErrUnexpectedResponse)
	}

	return Tweet{ID: created.Tweet.ID, Text: created.Tweet.Text}, nil
}
