package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukex/flywheel/pkg/eventbus"
	"github.com/dukex/flywheel/pkg/events"
	"github.com/dukex/flywheel/pkg/twitter"
)

// Twitter is implemented by *twitter.Client.
type Twitter interface {
	Publish(ctx context.Context, req twitter.PublishRequest) (*twitter.PublishResult, error)
	Engage(ctx context.Context, requests []twitter.EngagementRequest) ([]twitter.EngagementResult, error)
	SendDirectMessage(ctx context.Context, req twitter.DirectMessageRequest) (*twitter.DirectMessageResult, error)
}

const twitterNotConfigured = "Twitter credentials are missing. Set TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN, and TWITTER_ACCESS_SECRET."

// Recipient is a direct message target, named by handle or user id.
type Recipient struct {
	Handle string
	ID     string
}

type Social struct {
	client    Twitter
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

// NewSocial creates the Twitter-facing service. A nil client leaves the
// service unconfigured.
func NewSocial(client Twitter, publisher eventbus.EventPublisher, logger *slog.Logger) *Social {
	return &Social{
		client:    client,
		publisher: publisher,
		logger:    logger.With("service", "social"),
	}
}

func (s *Social) Publish(ctx context.Context, req twitter.PublishRequest) (*twitter.PublishResult, error) {
	if s.client == nil {
		return nil, notConfigured("publish", twitterNotConfigured)
	}

	if strings.TrimSpace(req.Tweet) == "" {
		return nil, NewValidationError("publish", "validation_error", "tweet text is required", ErrInvalidRequest)
	}

	result, err := s.client.Publish(ctx, req)
	if err != nil {
		return nil, vendorError("publish", err)
	}

	threadIDs := make([]string, 0, len(result.Thread))
	for _, reply := range result.Thread {
		threadIDs = append(threadIDs, reply.ID)
	}

	publishEvent(ctx, s.publisher, s.logger, result.Tweet.ID, &events.TweetPublished{
		BaseEvent: events.NewBaseEvent(events.TweetPublishedEvent),
		TweetID:   result.Tweet.ID,
		Text:      result.Tweet.Text,
		MediaID:   result.MediaID,
		ThreadIDs: threadIDs,
	})

	return result, nil
}

func (s *Social) Engage(ctx context.Context, requests []twitter.EngagementRequest) ([]twitter.EngagementResult, error) {
	if s.client == nil {
		return nil, notConfigured("engage", twitterNotConfigured)
	}

	if len(requests) == 0 {
		return nil, NewValidationError("engage", "validation_error", "at least one engagement is required", ErrInvalidRequest)
	}

	results, err := s.client.Engage(ctx, requests)
	if err != nil {
		return nil, vendorError("engage", err)
	}

	actions := make([]events.EngagementAction, 0, len(results))
	for _, result := range results {
		actions = append(actions, events.EngagementAction{
			Action:  string(result.Action),
			TweetID: result.TweetID,
			Query:   result.Query,
		})
	}

	publishEvent(ctx, s.publisher, s.logger, "engage", &events.EngagementPerformed{
		BaseEvent: events.NewBaseEvent(events.EngagementPerformedEvent),
		Actions:   actions,
	})

	return results, nil
}

// SendDirectMessages sends message to each recipient in order and stops at
// the first failure. Messages already sent are still recorded.
func (s *Social) SendDirectMessages(ctx context.Context, message string, recipients []Recipient) ([]*twitter.DirectMessageResult, error) {
	if s.client == nil {
		return nil, notConfigured("dm", twitterNotConfigured)
	}

	if strings.TrimSpace(message) == "" {
		return nil, NewValidationError("dm", "validation_error", "message is required", ErrInvalidRequest)
	}

	if len(recipients) == 0 {
		return nil, NewValidationError("dm", "validation_error", "at least one recipient is required", ErrInvalidRequest)
	}

	outcomes := make([]*twitter.DirectMessageResult, 0, len(recipients))

	var sendErr error

	for _, recipient := range recipients {
		outcome, err := s.client.SendDirectMessage(ctx, twitter.DirectMessageRequest{
			RecipientHandle: recipient.Handle,
			RecipientID:     recipient.ID,
			Message:         message,
		})
		if err != nil {
			sendErr = vendorError("dm", err)

			break
		}

		outcomes = append(outcomes, outcome)
	}

	if len(outcomes) > 0 {
		recipientIDs := make([]string, 0, len(outcomes))
		for _, outcome := range outcomes {
			recipientIDs = append(recipientIDs, outcome.RecipientID)
		}

		publishEvent(ctx, s.publisher, s.logger, "dm", &events.DirectMessageSent{
			BaseEvent:    events.NewBaseEvent(events.DirectMessageSentEvent),
			RecipientIDs: recipientIDs,
		})
	}

	if sendErr != nil {
		return nil, sendErr
	}

	return outcomes, nil
}
